package editor

import (
	"fmt"
	"slices"

	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/undo"
)

// SetMode switches between Add and Modify. A pending draw is cancelled; the selection is kept.
func (e *Editor) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	if e.g.State == StateDrawing {
		e.g = idle()
	}
	e.mode = m
	return nil
}

// ApplyMove consumes a completed drag/resize of one rectangle, given in image space.
// The result replaces the rectangle in place and a Move action is logged.
func (e *Editor) ApplyMove(id string, x, y, w, h float64) (bbox.Rect, error) {
	idx := e.store.IndexOf(id)
	if idx < 0 {
		return bbox.Rect{}, fmt.Errorf("%w: %s", ErrUnknownRect, id)
	}
	old, _ := e.store.At(idx)
	snap, err := e.store.ReplaceAt(idx, old.WithGeometry(x, y, w, h))
	if err != nil {
		return bbox.Rect{}, err
	}
	updated := snap[idx]
	if bbox.SameGeometry(old, updated) {
		return updated, nil
	}
	e.history.Push(undo.Move(old, updated))
	return updated, nil
}

// SetLabel changes the active label. When a rectangle is selected it is
// relabeled and recolored, and the change is logged as a Move so undo restores it.
func (e *Editor) SetLabel(label string) error {
	if !slices.Contains(e.labels, label) {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	e.label = label
	if e.g.Selected == "" {
		return nil
	}
	idx := e.store.IndexOf(e.g.Selected)
	if idx < 0 {
		return nil
	}
	old, _ := e.store.At(idx)
	if old.Label == label {
		return nil
	}
	updated := old
	updated.Label = label
	updated.Stroke = e.ColorFor(label)
	snap, err := e.store.ReplaceAt(idx, updated)
	if err != nil {
		return err
	}
	e.history.Push(undo.Move(old, snap[idx]))
	return nil
}

// Delete removes the selected rectangle and logs it. Without a selection it does nothing.
func (e *Editor) Delete() bool {
	id := e.g.Selected
	if id == "" {
		return false
	}
	r, ok := e.store.Get(id)
	if !ok {
		e.g = idle()
		return false
	}
	e.history.Push(undo.Delete(r))
	e.store.RemoveByID(id)
	e.g = idle()
	return true
}

// Undo reverts the most recent logged action. It reports false on an empty log.
func (e *Editor) Undo() bool {
	if _, ok := e.history.Undo(e.store); !ok {
		return false
	}
	if e.g.Selected != "" && e.store.IndexOf(e.g.Selected) < 0 {
		e.g = idle()
	}
	return true
}
