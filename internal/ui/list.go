package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = resultItem{}
)

// trackItem wraps a playlist entry to implement [list.Item].
type trackItem struct {
	position int
	track    *models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.track.Title) }
func (i trackItem) Description() string { return describe(i.track) }

// resultItem wraps a catalog match to implement [list.Item].
type resultItem struct {
	track *models.Track
}

func (i resultItem) FilterValue() string { return i.track.Title }
func (i resultItem) Title() string       { return i.track.Title }
func (i resultItem) Description() string { return describe(i.track) }

func describe(t *models.Track) string {
	desc := shared.FormatDuration(t.DurationSeconds)
	if t.Artist != "" {
		desc = fmt.Sprintf("%s • %s", t.Artist, desc)
	}
	return fmt.Sprintf("%s • %s", desc, t.Service)
}

func trackItems(tracks []*models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{position: i + 1, track: t}
	}
	return items
}

func resultItems(tracks []*models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = resultItem{track: t}
	}
	return items
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	return l
}
