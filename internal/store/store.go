// Package store holds the ordered rectangle sequence as copy-on-write snapshots.
package store

import (
	"fmt"

	"github.com/frudas24/bboxedit/internal/bbox"
)

// Repairer fixes a freshly mutated snapshot before it becomes current.
type Repairer interface {
	Repair(rects []bbox.Rect) []bbox.Rect
}

// Store owns the authoritative rectangle sequence. Position in the sequence is
// the z-order; the last element renders topmost.
//
// Every mutation builds a new slice, so snapshots handed out earlier are never
// modified. Callers must treat returned snapshots as read-only.
type Store struct {
	rects    []bbox.Rect
	repair   Repairer
	onChange func(snapshot []bbox.Rect)
}

// New returns a store seeded with initial rectangles, repaired once.
func New(initial []bbox.Rect, repair Repairer) *Store {
	s := &Store{repair: repair}
	s.commit(append([]bbox.Rect(nil), initial...))
	return s
}

// OnChange registers a callback invoked with every new snapshot.
func (s *Store) OnChange(fn func(snapshot []bbox.Rect)) {
	s.onChange = fn
}

// Snapshot returns the current sequence.
func (s *Store) Snapshot() []bbox.Rect {
	return s.rects
}

// Len returns the number of rectangles.
func (s *Store) Len() int {
	return len(s.rects)
}

// At returns the rectangle at index i.
func (s *Store) At(i int) (bbox.Rect, bool) {
	if i < 0 || i >= len(s.rects) {
		return bbox.Rect{}, false
	}
	return s.rects[i], true
}

// IndexOf returns the position of the rectangle with the given id, or -1.
func (s *Store) IndexOf(id string) int {
	return indexOf(s.rects, id)
}

// Get returns the rectangle with the given id.
func (s *Store) Get(id string) (bbox.Rect, bool) {
	return s.At(s.IndexOf(id))
}

// Add appends a rectangle at the top of the z-order.
func (s *Store) Add(r bbox.Rect) []bbox.Rect {
	next := make([]bbox.Rect, 0, len(s.rects)+1)
	next = append(next, s.rects...)
	next = append(next, r)
	return s.commit(next)
}

// ReplaceAt replaces the rectangle at index i.
func (s *Store) ReplaceAt(i int, r bbox.Rect) ([]bbox.Rect, error) {
	if i < 0 || i >= len(s.rects) {
		return s.rects, fmt.Errorf("replace index %d out of range [0,%d)", i, len(s.rects))
	}
	next := s.clone()
	next[i] = r
	return s.commit(next), nil
}

// RemoveByID deletes the rectangle with the given id. Missing ids leave the store untouched.
func (s *Store) RemoveByID(id string) ([]bbox.Rect, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return s.rects, false
	}
	next := make([]bbox.Rect, 0, len(s.rects)-1)
	next = append(next, s.rects[:i]...)
	next = append(next, s.rects[i+1:]...)
	return s.commit(next), true
}

// Swap exchanges the slots of two rectangles.
func (s *Store) Swap(i, j int) ([]bbox.Rect, error) {
	if i < 0 || i >= len(s.rects) || j < 0 || j >= len(s.rects) {
		return s.rects, fmt.Errorf("swap indices (%d,%d) out of range [0,%d)", i, j, len(s.rects))
	}
	if i == j {
		return s.rects, nil
	}
	next := s.clone()
	next[i], next[j] = next[j], next[i]
	return s.commit(next), nil
}

// Reset replaces the whole sequence, as undo does when applying an inverse.
func (s *Store) Reset(rects []bbox.Rect) []bbox.Rect {
	return s.commit(append([]bbox.Rect(nil), rects...))
}

// clone copies the current sequence.
func (s *Store) clone() []bbox.Rect {
	return append([]bbox.Rect(nil), s.rects...)
}

// commit runs the repair hook, publishes the snapshot and notifies the listener.
func (s *Store) commit(next []bbox.Rect) []bbox.Rect {
	if s.repair != nil {
		next = s.repair.Repair(next)
	}
	s.rects = next
	if s.onChange != nil {
		s.onChange(next)
	}
	return next
}

// indexOf finds the position of id in rects.
func indexOf(rects []bbox.Rect, id string) int {
	for i, r := range rects {
		if r.ID == id {
			return i
		}
	}
	return -1
}
