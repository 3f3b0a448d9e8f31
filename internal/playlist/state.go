// package playlist holds the mutable playlist aggregate and its duration budget.
//
// A [State] keeps the running total equal to the sum of its tracks' durations after every mutation.
// Index violations are programming errors and panic; they are not recoverable conditions.
package playlist

import (
	"fmt"
	"slices"

	"github.com/desertthunder/mixtape/internal/models"
)

// State is the ordered track list, its running total and its capacity.
//
// State is not safe for concurrent use; once a history.Manager owns it, only commands mutate it.
type State struct {
	Title    string
	Mode     models.Mode
	tracks   []*models.Track
	total    int
	capacity int

	playlistID    string
	hasPlaylistID bool
}

// New creates an empty State with the given title, mode and capacity in seconds.
//
// A capacity <= 0 uses the mode's capacity.
func New(title string, mode models.Mode, capacity int) *State {
	if capacity <= 0 {
		capacity = mode.Capacity()
	}
	return &State{Title: title, Mode: mode, capacity: capacity}
}

// Tracks returns a copy of the ordered track list. The track pointers are shared.
func (s *State) Tracks() []*models.Track {
	return slices.Clone(s.tracks)
}

// Len returns the number of tracks.
func (s *State) Len() int { return len(s.tracks) }

// At returns the track at index i.
func (s *State) At(i int) *models.Track {
	s.checkIndex(i)
	return s.tracks[i]
}

// Total returns the running total duration in seconds.
func (s *State) Total() int { return s.total }

// Capacity returns the duration budget in seconds.
func (s *State) Capacity() int { return s.capacity }

// Remaining returns the seconds left before the budget is reached.
func (s *State) Remaining() int { return s.capacity - s.total }

// PlaylistID returns the persisted playlist id, if the store has assigned one.
func (s *State) PlaylistID() (string, bool) {
	return s.playlistID, s.hasPlaylistID
}

// SetPlaylistID records the persisted playlist id.
func (s *State) SetPlaylistID(id string) {
	s.playlistID = id
	s.hasPlaylistID = true
}

// CanAdd reports whether a track of durationSeconds fits in the remaining budget.
func (s *State) CanAdd(durationSeconds int) bool {
	return s.total+durationSeconds <= s.capacity
}

// IndexOf returns the position of t by pointer identity, or -1.
func (s *State) IndexOf(t *models.Track) int {
	return slices.Index(s.tracks, t)
}

// ApplyAdd appends t and grows the total. The caller has already checked [State.CanAdd].
func (s *State) ApplyAdd(t *models.Track) {
	s.tracks = append(s.tracks, t)
	s.total += t.DurationSeconds
}

// ApplyRemoveAt removes the track at index and returns it. It panics if index is out of range.
func (s *State) ApplyRemoveAt(index int) *models.Track {
	s.checkIndex(index)
	t := s.tracks[index]
	s.tracks = slices.Delete(s.tracks, index, index+1)
	s.total -= t.DurationSeconds
	return t
}

// ApplyInsertAt inserts t at index, appending when index is past the end.
func (s *State) ApplyInsertAt(index int, t *models.Track) {
	if index < 0 {
		panic(fmt.Sprintf("playlist: insert index %d is negative", index))
	}
	if index > len(s.tracks) {
		index = len(s.tracks)
	}
	s.tracks = slices.Insert(s.tracks, index, t)
	s.total += t.DurationSeconds
}

// ReplaceAll swaps in tracks wholesale with the given total.
//
// total must equal the sum of the tracks' durations; callers pass a total captured alongside the tracks.
func (s *State) ReplaceAll(tracks []*models.Track, total int) {
	s.tracks = slices.Clone(tracks)
	s.total = total
}

// Sum recomputes the total from the tracks. Used to verify the running total.
func (s *State) Sum() int {
	sum := 0
	for _, t := range s.tracks {
		sum += t.DurationSeconds
	}
	return sum
}

func (s *State) checkIndex(i int) {
	if i < 0 || i >= len(s.tracks) {
		panic(fmt.Sprintf("playlist: index %d out of range [0,%d)", i, len(s.tracks)))
	}
}
