package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// CatalogSearch prints catalog matches for the query argument.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	catalog := r.catalogService()

	tracks, err := catalog.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	title := fmt.Sprintf("%s results for %q", catalog.Name(), query)
	if query == "" {
		title = fmt.Sprintf("%s recommendations", catalog.Name())
	}
	r.writePlainHeader(title)
	if len(tracks) == 0 {
		return r.writePlain("No tracks found\n")
	}
	for i, t := range tracks {
		if err := r.writePlain("%2d. %s - %s [%s] %s\n", i+1, t.Artist, t.Title, shared.FormatDuration(t.DurationSeconds), t.Service); err != nil {
			return err
		}
	}
	return nil
}
