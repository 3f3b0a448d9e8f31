package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistImport adds the first catalog match for each line of the file argument.
func (r *Runner) PlaylistImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file is required", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	queries, err := tasks.ReadQueries(f)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return r.writePlain("No queries in %s\n", path)
	}

	s, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	progress := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	importer := tasks.NewImporter(r.catalogService(), s.editor, r.logger)
	result, err := importer.Import(ctx, queries, progress, tasks.ImportOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-printed
	if err != nil {
		return err
	}

	snapshot := s.editor.Snapshot()
	r.writePlainln("Imported %d of %d (%d not found, %d did not fit, %d failed)",
		result.Added, result.Total, result.NotFound, result.Rejected, result.Failed)
	return r.writePlain("Length: %s / %s\n", shared.FormatDuration(snapshot.Total), shared.FormatDuration(snapshot.Capacity))
}
