// Package testutil provides deterministic fakes shared by package tests.
package testutil

import (
	"fmt"
	"sync"
)

// SeqIDs returns an id generator yielding prefix-1, prefix-2, ...
func SeqIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Sink records every value passed to Put.
type Sink[T any] struct {
	mu    sync.Mutex
	items []T
}

// Put records v.
func (s *Sink[T]) Put(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, v)
}

// Items returns a copy of the recorded values.
func (s *Sink[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

// Len returns the number of recorded values.
func (s *Sink[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Last returns the most recent value.
func (s *Sink[T]) Last() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Logf records formatted log lines and can stand in for log.Printf.
type Logf struct {
	Sink[string]
}

// Printf records a formatted line.
func (l *Logf) Printf(format string, args ...any) {
	l.Put(fmt.Sprintf(format, args...))
}
