package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// searchDebounce is how long the search input must be idle before the catalog is queried.
const searchDebounce = 500 * time.Millisecond

// Focus is the pane that receives key presses.
type Focus int

const (
	TracksFocus Focus = iota
	SearchFocus
	ResultsFocus
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	editor     *editor.Editor
	catalog    services.Catalog
	logger     *log.Logger
	snapshot   editor.Snapshot
	focus      Focus
	confirming bool
	width      int
	height     int
	trackList  list.Model
	resultList list.Model
	input      textinput.Model
	searchSeq  int
	query      string
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model editing e. A nil catalog falls back to the built-in mock catalog.
func NewModel(ctx context.Context, e *editor.Editor, catalog services.Catalog, logger *log.Logger) *Model {
	if catalog == nil {
		catalog = services.NewMockCatalog()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	input := textinput.New()
	input.Placeholder = "Search " + catalog.Name()
	input.Prompt = "/ "
	input.CharLimit = 120

	snapshot := e.Snapshot()
	m := &Model{
		ctx:        ctx,
		editor:     e,
		catalog:    catalog,
		logger:     shared.WithLogger(logger, "component", "ui"),
		snapshot:   snapshot,
		focus:      TracksFocus,
		trackList:  newList(playlistTitle(snapshot), trackItems(snapshot.Tracks)),
		resultList: newList("Recommended", nil),
		input:      input,
		help:       help.New(),
		keys:       newKeyMap(),
		width:      80,
		height:     24,
	}
	m.resize()
	return m
}

// Init loads catalog recommendations.
func (m *Model) Init() tea.Cmd {
	return m.runSearch(m.searchSeq, "")
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateFocused(msg)
}

// View renders the editor.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("%s · %s", playlistTitle(m.snapshot), m.snapshot.ModeLabel)))
	b.WriteString("\n")
	b.WriteString(m.renderCapacity())
	b.WriteString("\n\n")

	tracks := m.paneStyle(TracksFocus).Render(m.renderTracks())
	results := m.paneStyle(ResultsFocus).Render(m.renderResults())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tracks, " ", results))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEditApplied:
		res := msg.data.(editResult)
		m.setSnapshot(res.snapshot)
		switch {
		case editor.IsCapacityExceeded(res.err):
			m.status = "Disc full!"
			m.err = nil
		case res.err != nil:
			m.status = ""
			m.err = res.err
		case !res.changed:
			m.status = "Nothing to " + res.action
		default:
			m.status = ""
			m.err = nil
		}
		return m, nil

	case MsgSearchTick:
		seq := msg.data.(int)
		if seq != m.searchSeq {
			return m, nil
		}
		return m, m.runSearch(seq, m.input.Value())

	case MsgSearchResults:
		res := msg.data.(searchResult)
		if res.seq != m.searchSeq {
			return m, nil
		}
		if res.err != nil {
			m.logger.Warn("search failed", "query", res.query, "error", res.err)
			m.err = res.err
			return m, nil
		}
		m.query = res.query
		m.err = nil
		if res.query == "" {
			m.resultList.Title = "Recommended"
		} else {
			m.resultList.Title = fmt.Sprintf("Results for %q", res.query)
		}
		return m, m.resultList.SetItems(resultItems(res.tracks))
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		return m.handleConfirmKeys(msg)
	}
	if m.focus == SearchFocus {
		return m.handleSearchKeys(msg)
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.focus = SearchFocus
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.tab):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.random):
		return m, m.edit("add", func(ctx context.Context) (bool, error) {
			_, err := m.editor.AddRandomTrack(ctx)
			return err == nil, err
		})
	case key.Matches(msg, m.keys.add), m.focus == ResultsFocus && key.Matches(msg, m.keys.enter):
		return m, m.addSelectedResult()
	case key.Matches(msg, m.keys.del):
		return m, m.deleteSelected()
	case key.Matches(msg, m.keys.clear):
		if len(m.snapshot.Tracks) == 0 {
			m.status = "Nothing to clear"
			return m, nil
		}
		m.confirming = true
		return m, nil
	case key.Matches(msg, m.keys.undo):
		return m, m.edit("undo", func(ctx context.Context) (bool, error) {
			return m.editor.Undo(ctx), nil
		})
	case key.Matches(msg, m.keys.redo):
		return m, m.edit("redo", func(ctx context.Context) (bool, error) {
			return m.editor.Redo(ctx), nil
		})
	}

	return m.updateFocused(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirming = false
		return m, m.edit("clear", func(ctx context.Context) (bool, error) {
			return true, m.editor.ClearAll(ctx)
		})
	case key.Matches(msg, m.keys.no), msg.Type == tea.KeyCtrlC:
		m.confirming = false
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.focus = TracksFocus
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.input.Blur()
		m.focus = ResultsFocus
		m.searchSeq++
		return m, m.runSearch(m.searchSeq, m.input.Value())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.searchSeq++
	seq := m.searchSeq
	debounce := tea.Tick(searchDebounce, func(time.Time) tea.Msg { return searchTickMsg(seq) })
	return m, tea.Batch(cmd, debounce)
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case TracksFocus:
		m.trackList, cmd = m.trackList.Update(msg)
	case ResultsFocus:
		m.resultList, cmd = m.resultList.Update(msg)
	case SearchFocus:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == ResultsFocus {
		m.focus = TracksFocus
	} else {
		m.focus = ResultsFocus
	}
}

func (m *Model) addSelectedResult() tea.Cmd {
	item, ok := m.resultList.SelectedItem().(resultItem)
	if !ok {
		m.status = "No search result selected"
		return nil
	}
	template := item.track
	return m.edit("add", func(ctx context.Context) (bool, error) {
		_, err := m.editor.AddTrack(ctx, template)
		return err == nil, err
	})
}

func (m *Model) deleteSelected() tea.Cmd {
	if len(m.snapshot.Tracks) == 0 {
		m.status = "Nothing to delete"
		return nil
	}
	index := m.trackList.Index()
	return m.edit("delete", func(ctx context.Context) (bool, error) {
		err := m.editor.DeleteTrack(ctx, index)
		return err == nil, err
	})
}

// edit runs fn off the update loop and reports the resulting snapshot.
func (m *Model) edit(action string, fn func(context.Context) (bool, error)) tea.Cmd {
	return func() tea.Msg {
		changed, err := fn(m.ctx)
		if err != nil && !editor.IsCapacityExceeded(err) && !errors.Is(err, shared.ErrTrackNotFound) {
			m.logger.Error("edit failed", "action", action, "error", err)
		}
		return editAppliedMsg(action, m.editor.Snapshot(), changed, err)
	}
}

func (m *Model) runSearch(seq int, query string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.catalog.Search(m.ctx, query)
		return searchResultsMsg(seq, query, tracks, err)
	}
}

func (m *Model) setSnapshot(s editor.Snapshot) {
	m.snapshot = s
	m.trackList.Title = playlistTitle(s)
	m.trackList.SetItems(trackItems(s.Tracks))
	if n := len(s.Tracks); n > 0 && m.trackList.Index() >= n {
		m.trackList.Select(n - 1)
	}
}

func (m *Model) resize() {
	paneWidth := max(20, m.width/2-4)
	paneHeight := max(5, m.height-10)
	m.trackList.SetSize(paneWidth, paneHeight)
	m.resultList.SetSize(paneWidth, paneHeight-2)
	m.input.Width = paneWidth - 4
}

func (m *Model) paneStyle(f Focus) lipgloss.Style {
	if m.focus == f || (f == ResultsFocus && m.focus == SearchFocus) {
		return styles.focus
	}
	return styles.pane
}

func (m *Model) renderCapacity() string {
	s := m.snapshot
	width := 40
	if m.width > 0 {
		width = max(10, min(60, m.width-30))
	}
	return fmt.Sprintf("%s %s / %s (%s left)",
		capacityBar(s.Total, s.Capacity, width),
		shared.FormatDuration(s.Total),
		shared.FormatDuration(s.Capacity),
		shared.FormatDuration(s.Remaining),
	)
}

func (m *Model) renderTracks() string {
	if len(m.snapshot.Tracks) == 0 {
		return fmt.Sprintf("%s\n\n%s", styles.title.Render(m.trackList.Title), styles.help.Render("Empty. Press r for a random track or / to search."))
	}
	return m.trackList.View()
}

func (m *Model) renderResults() string {
	return fmt.Sprintf("%s\n%s", m.input.View(), m.resultList.View())
}

func (m *Model) renderStatus() string {
	switch {
	case m.confirming:
		return styles.warn.Render(fmt.Sprintf("Clear all %d tracks? (y/n)", len(m.snapshot.Tracks)))
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status == "Disc full!":
		return styles.err.Render(m.status)
	case m.status != "":
		return styles.help.Render(m.status)
	}
	return ""
}

func (m *Model) helpKeys() []key.Binding {
	switch {
	case m.confirming:
		return []key.Binding{m.keys.yes, m.keys.no}
	case m.focus == SearchFocus:
		return []key.Binding{m.keys.enter, m.keys.back}
	case m.focus == ResultsFocus:
		return []key.Binding{m.keys.add, m.keys.search, m.keys.tab, m.keys.undo, m.keys.redo, m.keys.quit}
	default:
		return []key.Binding{m.keys.random, m.keys.search, m.keys.del, m.keys.clear, m.keys.undo, m.keys.redo, m.keys.tab, m.keys.quit}
	}
}

func playlistTitle(s editor.Snapshot) string {
	if s.Title == "" {
		return "Untitled Mixtape"
	}
	return s.Title
}

// Run starts the TUI on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, e *editor.Editor, catalog services.Catalog, logger *log.Logger) error {
	p := tea.NewProgram(NewModel(ctx, e, catalog, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

var _ tea.Model = (*Model)(nil)
