package history

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/playlist"
	"github.com/desertthunder/mixtape/internal/shared"
	tu "github.com/desertthunder/mixtape/internal/testing"
)

func newState() *playlist.State {
	return playlist.New("My Summer Mix", models.ModeCD, 0)
}

func newMirror(store Store, opts ...MirrorOption) *Mirror {
	return NewMirror(store, shared.NewLogger(io.Discard), opts...)
}

func track(title string, seconds int) *models.Track {
	return models.NewTrack(title, "Artist", seconds, models.ServiceMock)
}

func assertTotal(t *testing.T, s *playlist.State) {
	t.Helper()
	if s.Total() != s.Sum() {
		t.Fatalf("total %d does not match sum of durations %d", s.Total(), s.Sum())
	}
}

func TestAddTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("forward persists then appends", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state := newState()
		tr := track("Blinding Lights", 200)

		NewAddTrack(state, newMirror(store), tr).Forward(ctx)

		if state.Len() != 1 || state.At(0) != tr {
			t.Fatalf("expected track appended, got %d tracks", state.Len())
		}
		assertTotal(t, state)

		want := []string{tu.OpCreatePlaylist, tu.OpCreate}
		if got := store.Ops(); !slices.Equal(got, want) {
			t.Errorf("expected ops %v, got %v", want, got)
		}
		if id, ok := tr.PersistedID(); !ok || id != "track-1" {
			t.Errorf("expected persisted id track-1, got %q (%v)", id, ok)
		}
		if id, ok := state.PlaylistID(); !ok || id != "playlist-1" {
			t.Errorf("expected playlist id playlist-1, got %q (%v)", id, ok)
		}
		if call := store.Calls()[1]; call.Arg != "playlist-1" || call.Position != 0 {
			t.Errorf("unexpected create call: %+v", call)
		}
	})

	t.Run("existing playlist id is reused", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state := newState()
		state.SetPlaylistID("p-9")
		mirror := newMirror(store)

		NewAddTrack(state, mirror, track("One", 10)).Forward(ctx)
		NewAddTrack(state, mirror, track("Two", 10)).Forward(ctx)

		calls := store.Calls()
		if len(calls) != 2 {
			t.Fatalf("expected 2 calls, got %v", store.Ops())
		}
		if calls[1].Arg != "p-9" || calls[1].Position != 1 {
			t.Errorf("unexpected second create: %+v", calls[1])
		}
	})

	t.Run("reverse removes by identity and soft deletes", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state := newState()
		mirror := newMirror(store)
		same := track("Same", 100)
		twin := track("Same", 100)

		NewAddTrack(state, mirror, twin).Forward(ctx)
		cmd := NewAddTrack(state, mirror, same)
		cmd.Forward(ctx)
		cmd.Reverse(ctx)

		if state.Len() != 1 || state.At(0) != twin {
			t.Fatal("expected the identical-looking twin to survive")
		}
		assertTotal(t, state)

		calls := store.Calls()
		last := calls[len(calls)-1]
		if last.Op != tu.OpSoftDelete || last.Arg != "track-2" {
			t.Errorf("expected soft_delete track-2, got %+v", last)
		}
	})

	t.Run("redo restores instead of creating", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state := newState()
		cmd := NewAddTrack(state, newMirror(store), track("Levitating", 203))

		cmd.Forward(ctx)
		cmd.Reverse(ctx)
		cmd.Forward(ctx)

		if n := store.Count(tu.OpCreate); n != 1 {
			t.Errorf("expected exactly one create, got %d", n)
		}
		calls := store.Calls()
		last := calls[len(calls)-1]
		if last.Op != tu.OpRestore || last.Arg != "track-1" {
			t.Errorf("expected restore track-1, got %+v", last)
		}
		assertTotal(t, state)
	})

	t.Run("store failure still mutates locally", func(t *testing.T) {
		store := &tu.RecordingStore{Err: shared.ErrStoreUnavailable}
		var errs []error
		state := newState()
		tr := track("As It Was", 167)
		cmd := NewAddTrack(state, newMirror(store, WithErrorHook(func(err error) { errs = append(errs, err) })), tr)

		cmd.Forward(ctx)

		if state.Len() != 1 || state.Total() != 167 {
			t.Fatalf("expected local add despite store failure, got len=%d total=%d", state.Len(), state.Total())
		}
		if _, ok := tr.PersistedID(); ok {
			t.Error("track should stay unpersisted when create fails")
		}
		if len(errs) == 0 {
			t.Fatal("expected store errors to be reported")
		}
		for _, err := range errs {
			if !errors.Is(err, shared.ErrStore) || !errors.Is(err, shared.ErrStoreUnavailable) {
				t.Errorf("expected StoreError wrapping both sentinels, got %v", err)
			}
		}

		before := len(store.Calls())
		cmd.Reverse(ctx)
		if state.Len() != 0 {
			t.Error("expected local removal")
		}
		if len(store.Calls()) != before {
			t.Error("unpersisted track should not be soft deleted")
		}
	})

	t.Run("nil store skips mirroring", func(t *testing.T) {
		state := newState()
		tr := track("Offline", 60)
		cmd := NewAddTrack(state, newMirror(nil), tr)
		cmd.Forward(ctx)
		cmd.Reverse(ctx)
		cmd.Forward(ctx)

		if state.Len() != 1 {
			t.Fatalf("expected 1 track, got %d", state.Len())
		}
		if _, ok := tr.PersistedID(); ok {
			t.Error("expected no persisted id without a store")
		}
		if _, ok := state.PlaylistID(); ok {
			t.Error("expected no playlist id without a store")
		}
	})

	t.Run("reverse of absent track panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		NewAddTrack(newState(), newMirror(nil), track("Ghost", 1)).Reverse(ctx)
	})
}

func TestDeleteTrack(t *testing.T) {
	ctx := context.Background()

	setup := func(store Store) (*playlist.State, *Mirror, []*models.Track) {
		state := newState()
		mirror := newMirror(store)
		tracks := []*models.Track{track("A", 100), track("B", 200), track("C", 300)}
		for _, tr := range tracks {
			NewAddTrack(state, mirror, tr).Forward(ctx)
		}
		return state, mirror, tracks
	}

	t.Run("round trip restores position", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state, mirror, tracks := setup(store)

		cmd := NewDeleteTrack(state, mirror, tracks[1])
		if cmd.Index() != 1 {
			t.Fatalf("expected captured index 1, got %d", cmd.Index())
		}

		cmd.Forward(ctx)
		if got := state.Tracks(); !slices.Equal(got, []*models.Track{tracks[0], tracks[2]}) {
			t.Fatalf("unexpected tracks after delete: %v", got)
		}
		if state.Total() != 400 {
			t.Errorf("expected total 400, got %d", state.Total())
		}

		cmd.Reverse(ctx)
		if got := state.Tracks(); !slices.Equal(got, tracks) {
			t.Fatalf("expected original order after undo, got %v", got)
		}
		assertTotal(t, state)

		calls := store.Calls()
		n := len(calls)
		if calls[n-2].Op != tu.OpSoftDelete || calls[n-1].Op != tu.OpRestore || calls[n-1].Arg != "track-2" {
			t.Errorf("unexpected store calls: %v", calls[n-2:])
		}
	})

	t.Run("reinsert clamps past the end", func(t *testing.T) {
		state, mirror, tracks := setup(nil)
		cmd := NewDeleteTrack(state, mirror, tracks[2])
		cmd.Forward(ctx)
		state.ApplyRemoveAt(0)

		cmd.Reverse(ctx)
		if state.At(state.Len()-1) != tracks[2] {
			t.Error("expected track appended when index is past the end")
		}
		assertTotal(t, state)
	})

	t.Run("construction for absent track panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		NewDeleteTrack(newState(), newMirror(nil), track("Ghost", 1))
	})

	t.Run("stale forward panics", func(t *testing.T) {
		state, mirror, tracks := setup(nil)
		cmd := NewDeleteTrack(state, mirror, tracks[2])
		state.ApplyRemoveAt(0)

		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		cmd.Forward(ctx)
	})
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip restores snapshot verbatim", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state := newState()
		mirror := newMirror(store)
		for _, tr := range []*models.Track{track("A", 100), track("B", 200)} {
			NewAddTrack(state, mirror, tr).Forward(ctx)
		}
		before := state.Tracks()

		cmd := NewClearAll(state, mirror)
		cmd.Forward(ctx)
		if state.Len() != 0 || state.Total() != 0 {
			t.Fatalf("expected empty playlist, got len=%d total=%d", state.Len(), state.Total())
		}

		cmd.Reverse(ctx)
		if !slices.Equal(state.Tracks(), before) {
			t.Error("expected identical track pointers after undo")
		}
		if state.Total() != 300 {
			t.Errorf("expected total 300, got %d", state.Total())
		}

		calls := store.Calls()
		n := len(calls)
		if calls[n-2].Op != tu.OpSoftDeleteAll || calls[n-1].Op != tu.OpRestoreAll || calls[n-1].Arg != "playlist-1" {
			t.Errorf("unexpected store calls: %v", calls[n-2:])
		}
	})

	t.Run("without playlist id makes no store calls", func(t *testing.T) {
		store := &tu.RecordingStore{}
		state := newState()
		state.ApplyAdd(track("Local", 10))

		cmd := NewClearAll(state, newMirror(store))
		cmd.Forward(ctx)
		cmd.Reverse(ctx)

		if len(store.Calls()) != 0 {
			t.Errorf("expected no store calls, got %v", store.Ops())
		}
		if state.Len() != 1 {
			t.Error("expected track restored")
		}
	})

	t.Run("snapshot is not aliased by later edits", func(t *testing.T) {
		state := newState()
		a, b := track("A", 1), track("B", 2)
		state.ApplyAdd(a)
		state.ApplyAdd(b)

		cmd := NewClearAll(state, newMirror(nil))
		cmd.Forward(ctx)
		state.ApplyAdd(track("C", 3))
		state.ReplaceAll(nil, 0)
		cmd.Reverse(ctx)

		if !slices.Equal(state.Tracks(), []*models.Track{a, b}) {
			t.Errorf("expected [A B], got %v", state.Tracks())
		}
		assertTotal(t, state)
	})
}

func TestMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("timeout is reported as a store error", func(t *testing.T) {
		store := &tu.RecordingStore{Gate: make(chan struct{})}
		var got error
		m := newMirror(store, WithStoreTimeout(20*time.Millisecond), WithErrorHook(func(err error) { got = err }))

		m.SoftDelete(ctx, "track-1")

		if !errors.Is(got, shared.ErrTimeout) || !errors.Is(got, shared.ErrStore) {
			t.Fatalf("expected timeout store error, got %v", got)
		}
		var se *StoreError
		if !errors.As(got, &se) || se.Op != "soft_delete" || se.ID != "track-1" {
			t.Errorf("unexpected StoreError: %#v", got)
		}
	})

	t.Run("caller cancellation does not abort store calls", func(t *testing.T) {
		store := &tu.RecordingStore{Gate: make(chan struct{}), Entered: make(chan string, 1)}
		m := newMirror(store)
		cctx, cancel := context.WithCancel(ctx)

		done := make(chan bool)
		go func() {
			_, ok := m.Create(cctx, "p", track("T", 1), 0)
			done <- ok
		}()

		<-store.Entered
		cancel()
		close(store.Gate)

		if ok := <-done; !ok {
			t.Error("expected create to complete after caller cancellation")
		}
	})

	t.Run("create playlist unsupported", func(t *testing.T) {
		m := newMirror(storeOnly{})
		if _, ok := m.CreatePlaylist(ctx, "x", models.ModeCD); ok {
			t.Error("expected CreatePlaylist to be skipped for stores without PlaylistCreator")
		}
	})

	t.Run("create playlist without an id", func(t *testing.T) {
		m := newMirror(blankCreator{})
		if _, ok := m.CreatePlaylist(ctx, "x", models.ModeCD); ok {
			t.Error("expected an empty playlist id to be reported as not created")
		}

		state := newState()
		cmd := NewAddTrack(state, m, track("T", 10))
		cmd.Forward(ctx)
		if id, ok := state.PlaylistID(); ok {
			t.Errorf("expected playlist id to stay unset, got %q", id)
		}
		if state.Len() != 1 {
			t.Errorf("expected the track to be added locally, got %d tracks", state.Len())
		}
	})

	t.Run("store error message", func(t *testing.T) {
		err := &StoreError{Op: "restore", ID: "abc", Err: errors.New("boom")}
		if err.Error() != "store restore abc: boom" {
			t.Errorf("unexpected message %q", err.Error())
		}
		err = &StoreError{Op: "create", Err: errors.New("boom")}
		if err.Error() != "store create: boom" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

// storeOnly implements Store without the optional interfaces.
type storeOnly struct{}

func (storeOnly) Create(context.Context, string, *models.Track, int) (string, error) { return "x", nil }
func (storeOnly) SoftDelete(context.Context, string) error                          { return nil }
func (storeOnly) Restore(context.Context, string) error                             { return nil }
func (storeOnly) SoftDeleteAll(context.Context, string) error                       { return nil }
func (storeOnly) RestoreAll(context.Context, string) error                          { return nil }

// blankCreator creates playlists without returning an id.
type blankCreator struct{ storeOnly }

func (blankCreator) CreatePlaylist(context.Context, string, models.Mode) (string, error) {
	return "", nil
}
