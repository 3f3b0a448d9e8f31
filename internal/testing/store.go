package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
)

// Store operation names recorded by [RecordingStore].
const (
	OpCreatePlaylist = "create_playlist"
	OpCreate         = "create"
	OpSoftDelete     = "soft_delete"
	OpRestore        = "restore"
	OpSoftDeleteAll  = "soft_delete_all"
	OpRestoreAll     = "restore_all"
)

// StoreCall is one call observed by [RecordingStore]. Arg is the track id or playlist id.
type StoreCall struct {
	Op       string
	Arg      string
	Title    string
	Position int
}

// RecordingStore is a test double for history.Store and history.PlaylistCreator
// that records every call and hands out sequential ids ("track-1", "playlist-1", ...).
//
// Err fails every call; FailOps fails individual operations.
// When Gate is non-nil each call blocks until Gate yields or the context ends.
// When Entered is non-nil each call sends its op there before blocking.
type RecordingStore struct {
	Err     error
	FailOps map[string]error
	Gate    chan struct{}
	Entered chan string

	mu        sync.Mutex
	calls     []StoreCall
	tracks    int
	playlists int
}

func (s *RecordingStore) CreatePlaylist(ctx context.Context, title string, mode models.Mode) (string, error) {
	if err := s.enter(ctx, StoreCall{Op: OpCreatePlaylist, Title: title}); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists++
	return fmt.Sprintf("playlist-%d", s.playlists), nil
}

func (s *RecordingStore) Create(ctx context.Context, playlistID string, track *models.Track, position int) (string, error) {
	if err := s.enter(ctx, StoreCall{Op: OpCreate, Arg: playlistID, Title: track.Title, Position: position}); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks++
	return fmt.Sprintf("track-%d", s.tracks), nil
}

func (s *RecordingStore) SoftDelete(ctx context.Context, id string) error {
	return s.enter(ctx, StoreCall{Op: OpSoftDelete, Arg: id})
}

func (s *RecordingStore) Restore(ctx context.Context, id string) error {
	return s.enter(ctx, StoreCall{Op: OpRestore, Arg: id})
}

func (s *RecordingStore) SoftDeleteAll(ctx context.Context, playlistID string) error {
	return s.enter(ctx, StoreCall{Op: OpSoftDeleteAll, Arg: playlistID})
}

func (s *RecordingStore) RestoreAll(ctx context.Context, playlistID string) error {
	return s.enter(ctx, StoreCall{Op: OpRestoreAll, Arg: playlistID})
}

// Calls returns a copy of the recorded calls in order.
func (s *RecordingStore) Calls() []StoreCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StoreCall(nil), s.calls...)
}

// Ops returns the recorded operation names in order.
func (s *RecordingStore) Ops() []string {
	calls := s.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (s *RecordingStore) Count(op string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (s *RecordingStore) enter(ctx context.Context, call StoreCall) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	if s.Entered != nil {
		s.Entered <- call.Op
	}
	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.Err != nil {
		return s.Err
	}
	if err, ok := s.FailOps[call.Op]; ok {
		return err
	}
	return nil
}
