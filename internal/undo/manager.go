package undo

import "github.com/frudas24/bboxedit/internal/bbox"

// Target is the rectangle sequence an inverse is applied to.
type Target interface {
	Snapshot() []bbox.Rect
	Reset(rects []bbox.Rect) []bbox.Rect
}

// Manager owns the action log. The log only grows through Push and only shrinks through Undo.
type Manager struct {
	log    Log
	onMiss func(Action)
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// OnMiss registers a hook called when an undone action finds no target.
func (m *Manager) OnMiss(fn func(Action)) {
	m.onMiss = fn
}

// Push appends an action.
func (m *Manager) Push(a Action) {
	m.log = m.log.Push(a)
}

// Undo pops the latest action and applies its inverse to t.
// It returns false when the log was empty. A popped action whose target is
// gone is consumed without changing t and reported through the miss hook.
func (m *Manager) Undo(t Target) (Action, bool) {
	a, rest, ok := m.log.Pop()
	if !ok {
		return Action{}, false
	}
	m.log = rest
	next, applied := Invert(a, t.Snapshot())
	if !applied {
		if m.onMiss != nil {
			m.onMiss(a)
		}
		return a, true
	}
	t.Reset(next)
	return a, true
}

// Len returns the number of undoable actions.
func (m *Manager) Len() int {
	return m.log.Len()
}

// Log returns the current log value.
func (m *Manager) Log() Log {
	return m.log
}
