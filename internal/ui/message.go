package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgEditApplied MsgKind = iota
	MsgSearchTick
	MsgSearchResults
)

type editResult struct {
	action   string
	snapshot editor.Snapshot
	changed  bool
	err      error
}

type searchResult struct {
	seq    int
	query  string
	tracks []*models.Track
	err    error
}

// editAppliedMsg is the constructor for [MsgEditApplied]
func editAppliedMsg(action string, snapshot editor.Snapshot, changed bool, err error) Msg {
	return Msg{kind: MsgEditApplied, data: editResult{action, snapshot, changed, err}}
}

// searchTickMsg is the constructor for [MsgSearchTick]. seq identifies the keystroke that scheduled it.
func searchTickMsg(seq int) Msg {
	return Msg{kind: MsgSearchTick, data: seq}
}

// searchResultsMsg is the constructor for [MsgSearchResults]
func searchResultsMsg(seq int, query string, tracks []*models.Track, err error) Msg {
	return Msg{kind: MsgSearchResults, data: searchResult{seq, query, tracks, err}}
}
