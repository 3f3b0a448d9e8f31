package main

import (
	"context"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until the context is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.ServerAddr()
	}

	srv := server.NewServer(s.editor, r.catalogService(), r.logger)
	return server.ListenAndServe(ctx, addr, srv.Router(server.RequestLogger(r.logger)), r.logger)
}
