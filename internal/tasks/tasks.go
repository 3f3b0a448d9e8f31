package tasks

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// ImportStatus is the outcome for one query.
type ImportStatus int

const (
	StatusAdded ImportStatus = iota
	StatusNotFound
	StatusRejected // did not fit the remaining capacity
	StatusFailed
)

func (s ImportStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusNotFound:
		return "not_found"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return ""
	}
}

// TrackImportResult describes what happened to one query.
type TrackImportResult struct {
	Line   int // 1-based position in the input
	Query  string
	Track  *models.Track // the entry added, or the match that was rejected
	Status ImportStatus
	Error  error
}

// ImportResult summarizes an import.
type ImportResult struct {
	Total    int
	Added    int
	NotFound int
	Rejected int
	Failed   int
	Results  []TrackImportResult // in input order
}

// ImportOpts configures an import.
type ImportOpts struct {
	NumWorkers int     // Concurrent searches (default: 4, max: 10)
	RateLimit  float64 // Searches per second (default: 5)
}

// Adder adds a copy of a track to a playlist. [editor.Editor] implements it.
type Adder interface {
	AddTrack(ctx context.Context, template *models.Track) (*models.Track, error)
}

// Importer resolves queries against a catalog and adds the matches to a playlist.
type Importer struct {
	catalog services.Catalog
	adder   Adder
	logger  *log.Logger
}

// NewImporter creates an Importer.
func NewImporter(catalog services.Catalog, adder Adder, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{catalog: catalog, adder: adder, logger: shared.WithLogger(logger, "component", "import")}
}

type searchJob struct {
	index int
	query string
}

// Import searches every query and adds the first match of each in input order.
//
// Search failures and misses are recorded per query and do not stop the import. Cancelling ctx
// stops both phases; tracks already added stay on the playlist.
func (i *Importer) Import(ctx context.Context, queries []string, prog chan<- ProgressUpdate, opts ImportOpts) (*ImportResult, error) {
	if i.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	result := &ImportResult{
		Total:   len(queries),
		Results: make([]TrackImportResult, len(queries)),
	}

	if err := i.search(ctx, queries, prog, opts, result.Results); err != nil {
		return result, err
	}

	step := 0
	for idx := range result.Results {
		res := &result.Results[idx]
		if res.Track == nil {
			if res.Error != nil {
				result.Failed++
			} else {
				result.NotFound++
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import canceled: %w", err)
		}

		step++
		added, err := i.adder.AddTrack(ctx, res.Track)
		switch {
		case errors.Is(err, shared.ErrCapacityExceeded):
			res.Status = StatusRejected
			res.Error = err
			result.Rejected++
			sendProgress(prog, rejectedUpdate(step, len(queries), res.Track, err))
		case err != nil:
			res.Status = StatusFailed
			res.Error = err
			result.Failed++
			sendProgress(prog, rejectedUpdate(step, len(queries), res.Track, err))
		default:
			res.Track = added
			res.Status = StatusAdded
			result.Added++
			sendProgress(prog, addedUpdate(step, len(queries), added))
		}
	}

	i.logger.Info("import finished",
		"total", result.Total,
		"added", result.Added,
		"not_found", result.NotFound,
		"rejected", result.Rejected,
		"failed", result.Failed,
	)
	return result, nil
}

// search fills results with the first catalog match of each query using a rate-limited worker pool.
func (i *Importer) search(ctx context.Context, queries []string, prog chan<- ProgressUpdate, opts ImportOpts, results []TrackImportResult) error {
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan searchJob, len(queries))
	done := make(chan TrackImportResult, len(queries))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go i.searchWorker(ctx, &wg, jobs, done)
	}

	go func() {
		defer close(jobs)
		sendProgress(prog, searchStartedUpdate(len(queries)))
		for idx, query := range queries {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- searchJob{index: idx, query: query}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for res := range done {
		completed++
		results[res.Line-1] = res
		sendProgress(prog, searchCompletedUpdate(completed, len(queries), res))
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import canceled: %w", err)
	}
	return nil
}

// searchWorker is a worker goroutine that resolves queries from the jobs channel.
func (i *Importer) searchWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan searchJob, done chan<- TrackImportResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := TrackImportResult{Line: job.index + 1, Query: job.query, Status: StatusNotFound}
		tracks, err := i.catalog.Search(ctx, job.query)
		switch {
		case err != nil:
			i.logger.Warn("search failed", "query", job.query, "error", err)
			res.Status = StatusFailed
			res.Error = err
		case len(tracks) > 0:
			res.Track = tracks[0]
		}
		done <- res
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ReadQueries reads one query per line, skipping blank lines and lines starting with '#'.
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}
