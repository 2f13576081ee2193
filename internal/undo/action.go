// Package undo records rectangle edits and applies their inverses.
package undo

import "github.com/frudas24/bboxedit/internal/bbox"

// Kind identifies the type of an undoable action.
type Kind string

const (
	// KindAdd records a newly committed rectangle.
	KindAdd Kind = "add"
	// KindDelete records a removed rectangle.
	KindDelete Kind = "delete"
	// KindMove records a geometry or label change of an existing rectangle.
	KindMove Kind = "move"
)

// Action is a single logged edit. Add and Delete use Rect; Move uses Old and New.
type Action struct {
	Kind Kind      `json:"kind"`
	Rect bbox.Rect `json:"rect"`
	Old  bbox.Rect `json:"oldRect"`
	New  bbox.Rect `json:"newRect"`
}

// Add returns an Add action for r.
func Add(r bbox.Rect) Action {
	return Action{Kind: KindAdd, Rect: r}
}

// Delete returns a Delete action for r.
func Delete(r bbox.Rect) Action {
	return Action{Kind: KindDelete, Rect: r}
}

// Move returns a Move action from old to updated.
func Move(old, updated bbox.Rect) Action {
	return Action{Kind: KindMove, Old: old, New: updated}
}

// TargetID returns the id of the rectangle the action refers to.
func (a Action) TargetID() string {
	if a.Kind == KindMove {
		return a.New.ID
	}
	return a.Rect.ID
}

// Invert applies the inverse of a to snap and returns the resulting sequence.
// ok is false when the action's target is absent; snap is then returned as is.
func Invert(a Action, snap []bbox.Rect) (out []bbox.Rect, ok bool) {
	switch a.Kind {
	case KindAdd:
		out = make([]bbox.Rect, 0, len(snap))
		for _, r := range snap {
			if r.ID == a.Rect.ID {
				ok = true
				continue
			}
			out = append(out, r)
		}
		if !ok {
			return snap, false
		}
		return out, true
	case KindDelete:
		out = make([]bbox.Rect, 0, len(snap)+1)
		out = append(out, snap...)
		return append(out, a.Rect), true
	case KindMove:
		for i, r := range snap {
			if r.ID != a.New.ID {
				continue
			}
			out = append([]bbox.Rect(nil), snap...)
			out[i] = a.Old
			return out, true
		}
		return snap, false
	default:
		return snap, false
	}
}
