package tasks

import (
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SearchTracks Phase = iota
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func searchStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching for %d tracks...", total),
	}
}

func searchCompletedUpdate(step, total int, res TrackImportResult) ProgressUpdate {
	if res.Track == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s", step, total, res.Query),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s → %s", step, total, res.Query, trackLabel(res.Track)),
		Data:    res,
	}
}

func addedUpdate(step, total int, tr *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, trackLabel(tr)),
		Data:    tr,
	}
}

func rejectedUpdate(step, total int, tr *models.Track, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, trackLabel(tr), err),
		Data:    tr,
	}
}

func trackLabel(tr *models.Track) string {
	label := fmt.Sprintf("%s [%s]", tr.Title, shared.FormatDuration(tr.DurationSeconds))
	if tr.Artist != "" {
		label = tr.Artist + " - " + label
	}
	return label
}
