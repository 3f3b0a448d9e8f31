package history

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

type memoryTrack struct {
	seq        int
	playlistID string
	track      models.Track
	position   int
	deleted    bool
	generation int
}

// MemoryStore is an in-process [Store], [PlaylistCreator] and [Loader].
//
// It backs the "memory" store driver and tests. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	seq       int
	playlists map[string]*models.Playlist
	order     []string
	tracks    map[string]*memoryTrack
	gens      map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playlists: make(map[string]*models.Playlist),
		tracks:    make(map[string]*memoryTrack),
		gens:      make(map[string]int),
	}
}

func (s *MemoryStore) CreatePlaylist(ctx context.Context, title string, mode models.Mode) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := &models.Playlist{ID: shared.GenerateID(), Title: title, Mode: mode, CreatedAt: now, UpdatedAt: now}
	s.playlists[p.ID] = p
	s.order = append(s.order, p.ID)
	return p.ID, nil
}

func (s *MemoryStore) Create(ctx context.Context, playlistID string, track *models.Track, position int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := shared.GenerateID()
	row := &memoryTrack{seq: s.seq, playlistID: playlistID, track: *track.Clone(), position: position}
	s.tracks[id] = row
	s.touch(playlistID)
	return id, nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tracks[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	row.deleted, row.generation = true, 0
	s.touch(row.playlistID)
	return nil
}

func (s *MemoryStore) Restore(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tracks[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	row.deleted, row.generation = false, 0
	s.touch(row.playlistID)
	return nil
}

// SoftDeleteAll hides the playlist's visible tracks as one generation, so RestoreAll
// brings back exactly this batch and not tracks deleted individually before it.
// A generation is recorded even when nothing was visible.
func (s *MemoryStore) SoftDeleteAll(ctx context.Context, playlistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[playlistID]++
	gen := s.gens[playlistID]
	for _, row := range s.tracks {
		if row.playlistID == playlistID && !row.deleted {
			row.deleted, row.generation = true, gen
		}
	}
	s.touch(playlistID)
	return nil
}

// RestoreAll restores the batch hidden by the most recent SoftDeleteAll and forgets
// that generation, so the next call reaches the batch before it.
func (s *MemoryStore) RestoreAll(ctx context.Context, playlistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.gens[playlistID]
	if gen == 0 {
		return nil
	}
	for _, row := range s.tracks {
		if row.playlistID == playlistID && row.deleted && row.generation == gen {
			row.deleted, row.generation = false, 0
		}
	}
	s.gens[playlistID] = gen - 1
	s.touch(playlistID)
	return nil
}

func (s *MemoryStore) LatestPlaylist(ctx context.Context) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == 0 {
		return nil, shared.ErrPlaylistNotFound
	}
	p := *s.playlists[s.order[len(s.order)-1]]
	p.TotalDuration = s.total(p.ID)
	return &p, nil
}

func (s *MemoryStore) Tracks(ctx context.Context, playlistID string) ([]*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		id  string
		row *memoryTrack
	}
	var visible []entry
	for id, row := range s.tracks {
		if row.playlistID == playlistID && !row.deleted {
			visible = append(visible, entry{id, row})
		}
	}
	slices.SortFunc(visible, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.row.position, b.row.position), cmp.Compare(a.row.seq, b.row.seq))
	})

	out := make([]*models.Track, 0, len(visible))
	for _, e := range visible {
		t := e.row.track.Clone()
		t.SetPersistedID(e.id)
		out = append(out, t)
	}
	return out, nil
}

func (s *MemoryStore) total(playlistID string) int {
	sum := 0
	for _, row := range s.tracks {
		if row.playlistID == playlistID && !row.deleted {
			sum += row.track.DurationSeconds
		}
	}
	return sum
}

func (s *MemoryStore) touch(playlistID string) {
	if p, ok := s.playlists[playlistID]; ok {
		p.UpdatedAt = time.Now().UTC()
	}
}
