// Package session guards the editor behind authentication and one serialized dispatch path.
package session

import (
	"sync"

	"github.com/frudas24/bboxedit/internal/editor"
)

// Snapshot is a read-only picture of the session.
type Snapshot struct {
	Authenticated bool
	RequiresAuth  bool
	Revision      uint64
	View          editor.View
	Output        []editor.Record
}

// Session owns the editor. Every event goes through Dispatch, so the editor
// only ever sees one caller at a time, in arrival order.
type Session struct {
	mu            sync.RWMutex
	password      string
	authenticated bool
	ed            *editor.Editor
	revision      uint64
	listeners     []func(rev uint64, v editor.View)
}

// New wraps ed. An empty password disables authentication.
func New(password string, ed *editor.Editor) *Session {
	return &Session{password: password, ed: ed}
}

// RequiresAuth reports whether a password is configured.
func (s *Session) RequiresAuth() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password != ""
}

// Authenticate validates the password and marks the session as authenticated.
func (s *Session) Authenticate(pass string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password == "" || (pass != "" && pass == s.password) {
		s.authenticated = true
		return true
	}
	s.authenticated = false
	return false
}

// Logout clears authentication state.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

// IsAuthenticated reports whether requests may touch the editor.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password == "" || s.authenticated
}

// OnChange registers a listener called after every dispatch, under the dispatch lock.
// Listeners must be quick and must not call back into the session.
func (s *Session) OnChange(fn func(rev uint64, v editor.View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Dispatch runs fn against the editor and returns the resulting view.
// The view is returned even when fn fails so callers can resync clients.
func (s *Session) Dispatch(fn func(*editor.Editor) error) (editor.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.ed)
	s.revision++
	v := s.ed.View()
	for _, l := range s.listeners {
		l(s.revision, v)
	}
	return v, err
}

// View returns the current editor view.
func (s *Session) View() editor.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ed.View()
}

// Output returns the records a commit would emit now.
func (s *Session) Output() []editor.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ed.Output()
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: s.password == "" || s.authenticated,
		RequiresAuth:  s.password != "",
		Revision:      s.revision,
		View:          s.ed.View(),
		Output:        s.ed.Output(),
	}
}
