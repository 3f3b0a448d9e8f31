package main

import (
	"context"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/urfave/cli/v3"
)

// PlaylistShow prints the most recent stored playlist.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	snapshot := s.editor.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}
	return formatter.Write(r.output, snapshot, formatter.FormatText)
}

// PlaylistExport writes the most recent stored playlist in the requested format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	s, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	snapshot := s.editor.Snapshot()
	path := cmd.String("output")
	if path == "" {
		return formatter.Write(r.output, snapshot, format)
	}

	written, err := formatter.WriteFile(snapshot, format, path)
	if err != nil {
		return err
	}
	r.logger.Info("exported playlist", "path", written, "format", format, "tracks", len(snapshot.Tracks))
	return r.writePlain("✓ Exported %d tracks to %s\n", len(snapshot.Tracks), written)
}
