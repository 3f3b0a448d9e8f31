package tasks

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// mockCatalog answers from a fixed map and counts concurrent searches.
type mockCatalog struct {
	results map[string][]*models.Track
	errs    map[string]error
	delay   time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (m *mockCatalog) Name() string { return "Mock" }

func (m *mockCatalog) Search(ctx context.Context, query string) ([]*models.Track, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.errs[query]; err != nil {
		return nil, err
	}
	return m.results[query], nil
}

func newEditor(capacity int) *editor.Editor {
	return editor.New(editor.Options{
		Title:    "Imported",
		Mode:     models.ModeCD,
		Capacity: capacity,
		Logger:   shared.NewLogger(io.Discard),
	})
}

func track(title string, secs int) *models.Track {
	return models.NewTrack(title, "Artist", secs, models.ServiceMock)
}

func fastOpts() ImportOpts {
	return ImportOpts{NumWorkers: 3, RateLimit: 1000}
}

func TestImport(t *testing.T) {
	catalog := &mockCatalog{
		results: map[string][]*models.Track{
			"one":   {track("One", 100), track("One (Live)", 400)},
			"two":   {track("Two", 200)},
			"three": {track("Three", 300)},
			"long":  {track("Long", 4000)},
		},
		errs: map[string]error{"broken": errors.New("catalog unavailable")},
	}

	tests := []struct {
		name       string
		capacity   int
		queries    []string
		wantTitles []string
		wantStatus []ImportStatus
	}{
		{
			name:       "adds first match of each query in input order",
			capacity:   0,
			queries:    []string{"three", "one", "two"},
			wantTitles: []string{"Three", "One", "Two"},
			wantStatus: []ImportStatus{StatusAdded, StatusAdded, StatusAdded},
		},
		{
			name:       "misses and failures are reported per query",
			capacity:   0,
			queries:    []string{"one", "nothing", "broken", "two"},
			wantTitles: []string{"One", "Two"},
			wantStatus: []ImportStatus{StatusAdded, StatusNotFound, StatusFailed, StatusAdded},
		},
		{
			name:       "tracks that do not fit are rejected and later ones still fit",
			capacity:   350,
			queries:    []string{"two", "three", "one"},
			wantTitles: []string{"Two", "One"},
			wantStatus: []ImportStatus{StatusAdded, StatusRejected, StatusAdded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(tt.capacity)
			importer := NewImporter(catalog, e, shared.NewLogger(io.Discard))

			result, err := importer.Import(context.Background(), tt.queries, nil, fastOpts())
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}

			snapshot := e.Snapshot()
			if len(snapshot.Tracks) != len(tt.wantTitles) {
				t.Fatalf("got %d tracks, want %d", len(snapshot.Tracks), len(tt.wantTitles))
			}
			for i, want := range tt.wantTitles {
				if got := snapshot.Tracks[i].Title; got != want {
					t.Errorf("track %d = %q, want %q", i, got, want)
				}
			}
			if tt.capacity > 0 && snapshot.Total > tt.capacity {
				t.Errorf("total %d exceeds capacity %d", snapshot.Total, tt.capacity)
			}

			if result.Total != len(tt.queries) {
				t.Errorf("Total = %d, want %d", result.Total, len(tt.queries))
			}
			for i, want := range tt.wantStatus {
				res := result.Results[i]
				if res.Status != want {
					t.Errorf("result %d (%s) status = %s, want %s", i, res.Query, res.Status, want)
				}
				if res.Line != i+1 || res.Query != tt.queries[i] {
					t.Errorf("result %d = line %d query %q", i, res.Line, res.Query)
				}
			}
			if result.Added != len(tt.wantTitles) {
				t.Errorf("Added = %d, want %d", result.Added, len(tt.wantTitles))
			}
		})
	}
}

func TestImport_EachTrackIsUndoable(t *testing.T) {
	catalog := &mockCatalog{results: map[string][]*models.Track{
		"one": {track("One", 100)},
		"two": {track("Two", 200)},
	}}
	e := newEditor(0)

	if _, err := NewImporter(catalog, e, nil).Import(context.Background(), []string{"one", "two"}, nil, fastOpts()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	e.Undo(context.Background())
	snapshot := e.Snapshot()
	if len(snapshot.Tracks) != 1 || snapshot.Tracks[0].Title != "One" {
		t.Fatalf("expected undo to remove only the last import, got %v", snapshot.Tracks)
	}
	if snapshot.Total != 100 {
		t.Errorf("Total = %d, want 100", snapshot.Total)
	}
}

func TestImport_AddsCopies(t *testing.T) {
	result := track("Same", 60)
	catalog := &mockCatalog{results: map[string][]*models.Track{"same": {result}}}
	e := newEditor(0)

	if _, err := NewImporter(catalog, e, nil).Import(context.Background(), []string{"same", "same"}, nil, fastOpts()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	snapshot := e.Snapshot()
	if len(snapshot.Tracks) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snapshot.Tracks))
	}
	if snapshot.Total != 120 {
		t.Errorf("Total = %d, want 120", snapshot.Total)
	}
}

func TestImport_WorkerPoolLimits(t *testing.T) {
	queries := make([]string, 12)
	for i := range queries {
		queries[i] = "q"
	}
	catalog := &mockCatalog{delay: 20 * time.Millisecond}

	tests := []struct {
		name     string
		workers  int
		wantPeak int32
	}{
		{name: "single worker", workers: 1, wantPeak: 1},
		{name: "capped at max", workers: 50, wantPeak: maxWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog.peak.Store(0)
			_, err := NewImporter(catalog, newEditor(0), nil).Import(
				context.Background(), queries, nil, ImportOpts{NumWorkers: tt.workers, RateLimit: 1000})
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if peak := catalog.peak.Load(); peak > tt.wantPeak {
				t.Errorf("peak concurrency = %d, want <= %d", peak, tt.wantPeak)
			}
		})
	}
}

func TestImport_ContextCancellation(t *testing.T) {
	catalog := &mockCatalog{delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		_, err = NewImporter(catalog, newEditor(0), nil).Import(ctx, []string{"a", "b", "c"}, nil, fastOpts())
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestImport_NilCatalog(t *testing.T) {
	_, err := NewImporter(nil, newEditor(0), nil).Import(context.Background(), []string{"x"}, nil, ImportOpts{})
	if !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestImport_ProgressUpdates(t *testing.T) {
	catalog := &mockCatalog{results: map[string][]*models.Track{"one": {track("One", 100)}}}
	progressCh := make(chan ProgressUpdate, 100)

	_, err := NewImporter(catalog, newEditor(0), nil).Import(context.Background(), []string{"one", "none"}, progressCh, fastOpts())
	close(progressCh)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	phases := make(map[Phase]int)
	var messages []string
	for update := range progressCh {
		phases[update.Phase]++
		messages = append(messages, update.Message)
	}

	if phases[SearchTracks] != 3 {
		t.Errorf("expected 3 search updates (start + 2 results), got %d", phases[SearchTracks])
	}
	if phases[AddTracks] != 1 {
		t.Errorf("expected 1 add update, got %d", phases[AddTracks])
	}
	if !strings.Contains(strings.Join(messages, "\n"), "✓ Artist - One [1:40]") {
		t.Errorf("expected added message, got %v", messages)
	}
}

func TestImport_WithMockCatalog(t *testing.T) {
	e := newEditor(0)
	result, err := NewImporter(services.NewMockCatalog(), e, nil).Import(
		context.Background(), []string{"get lucky", "no such song anywhere"}, nil, fastOpts())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if result.Added != 1 || result.NotFound != 1 {
		t.Errorf("Added = %d, NotFound = %d, want 1 and 1", result.Added, result.NotFound)
	}
	if got := e.Snapshot().Tracks[0].Artist; got != "Daft Punk" {
		t.Errorf("artist = %q, want Daft Punk", got)
	}
}

func TestReadQueries(t *testing.T) {
	input := `# road trip
Daft Punk - Get Lucky

  Lorde - Royals
#skipped
Burial - Archangel
`
	queries, err := ReadQueries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadQueries() error = %v", err)
	}

	want := []string{"Daft Punk - Get Lucky", "Lorde - Royals", "Burial - Archangel"}
	if len(queries) != len(want) {
		t.Fatalf("got %v, want %v", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestStrings(t *testing.T) {
	tt := []struct {
		got  string
		want string
	}{
		{SearchTracks.String(), "search_tracks"},
		{AddTracks.String(), "add_tracks"},
		{StatusAdded.String(), "added"},
		{StatusNotFound.String(), "not_found"},
		{StatusRejected.String(), "rejected"},
		{StatusFailed.String(), "failed"},
	}
	for _, tc := range tt {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
