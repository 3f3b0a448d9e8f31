package history

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Manager owns the undo and redo stacks and serializes every transition.
type Manager struct {
	mu sync.Mutex

	stackMu sync.RWMutex
	undo    []Command
	redo    []Command

	limit    int
	observer func()
	logger   *log.Logger
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithObserver registers the callback invoked once after each completed transition.
func WithObserver(fn func()) ManagerOption {
	return func(m *Manager) { m.observer = fn }
}

// WithLimit caps the undo stack; the oldest commands are dropped first. Zero means unbounded.
func WithLimit(n int) ManagerOption {
	return func(m *Manager) { m.limit = n }
}

// WithManagerLogger sets the logger used for transition debug output.
func WithManagerLogger(l *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager with empty stacks.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}
	m.logger = shared.WithLogger(m.logger, "component", "history")
	return m
}

// Execute runs cmd forward, pushes it onto the undo stack and clears the redo stack.
//
// Executing a command instance already on either stack panics.
func (m *Manager) Execute(ctx context.Context, cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execute(ctx, cmd)
}

// Submit builds and executes a command under the manager's lock.
//
// Checks that build makes against the playlist state cannot be invalidated by a concurrent
// transition. If build returns an error nothing is executed and the error is returned.
// A nil command with a nil error is a no-op.
func (m *Manager) Submit(ctx context.Context, build func() (Command, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd, err := build()
	if err != nil {
		return err
	}
	if cmd != nil {
		m.execute(ctx, cmd)
	}
	return nil
}

func (m *Manager) execute(ctx context.Context, cmd Command) {
	m.stackMu.RLock()
	seen := slices.Contains(m.undo, cmd) || slices.Contains(m.redo, cmd)
	m.stackMu.RUnlock()
	if seen {
		panic(fmt.Sprintf("history: %s executed twice", cmd.Name()))
	}

	cmd.Forward(ctx)

	m.stackMu.Lock()
	m.undo = append(m.undo, cmd)
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = slices.Delete(m.undo, 0, len(m.undo)-m.limit)
	}
	clear(m.redo)
	m.redo = m.redo[:0]
	m.stackMu.Unlock()

	m.logger.Debug("executed", "command", cmd.Name())
	m.notify()
}

// Undo reverses the most recent command and moves it to the redo stack.
// It reports false, without notifying, when there is nothing to undo.
func (m *Manager) Undo(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stackMu.RLock()
	n := len(m.undo)
	m.stackMu.RUnlock()
	if n == 0 {
		return false
	}

	cmd := m.undo[n-1]
	cmd.Reverse(ctx)

	m.stackMu.Lock()
	m.undo[n-1] = nil
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, cmd)
	m.stackMu.Unlock()

	m.logger.Debug("undone", "command", cmd.Name())
	m.notify()
	return true
}

// Redo re-runs the most recently undone command and moves it back to the undo stack.
// It reports false, without notifying, when there is nothing to redo.
func (m *Manager) Redo(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stackMu.RLock()
	n := len(m.redo)
	m.stackMu.RUnlock()
	if n == 0 {
		return false
	}

	cmd := m.redo[n-1]
	cmd.Forward(ctx)

	m.stackMu.Lock()
	m.redo[n-1] = nil
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, cmd)
	m.stackMu.Unlock()

	m.logger.Debug("redone", "command", cmd.Name())
	m.notify()
	return true
}

// View runs fn while holding the manager's lock, so no transition is in flight.
func (m *Manager) View(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// Reset drops both stacks and notifies the observer. fn, when non-nil, runs under the
// lock before the stacks are cleared, so callers can replace the state the commands refer to.
func (m *Manager) Reset(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fn != nil {
		fn()
	}
	m.stackMu.Lock()
	m.undo = nil
	m.redo = nil
	m.stackMu.Unlock()
	m.notify()
}

// CanUndo reports whether the undo stack is non-empty. Safe to call from the observer.
func (m *Manager) CanUndo() bool { return m.UndoLen() > 0 }

// CanRedo reports whether the redo stack is non-empty. Safe to call from the observer.
func (m *Manager) CanRedo() bool { return m.RedoLen() > 0 }

// UndoLen returns the depth of the undo stack.
func (m *Manager) UndoLen() int {
	m.stackMu.RLock()
	defer m.stackMu.RUnlock()
	return len(m.undo)
}

// RedoLen returns the depth of the redo stack.
func (m *Manager) RedoLen() int {
	m.stackMu.RLock()
	defer m.stackMu.RUnlock()
	return len(m.redo)
}

func (m *Manager) notify() {
	if m.observer != nil {
		m.observer()
	}
}
