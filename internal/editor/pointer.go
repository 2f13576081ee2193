package editor

import (
	"fmt"

	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/undo"
)

// PointerDown handles a pointer press on the canvas background at a rendered-space point.
func (e *Editor) PointerDown(x, y float64) {
	switch e.mode {
	case ModeAdd:
		e.g = drawing(Point{X: x, Y: y})
	case ModeModify:
		e.selectAt(x, y)
	}
}

// PointerMove updates the rubber band while drawing. A point outside the
// rendered canvas means the pointer left it, so the draw is cancelled.
func (e *Editor) PointerMove(x, y float64) {
	if e.g.State != StateDrawing {
		return
	}
	if !e.onCanvas(x, y) {
		e.PointerLeave()
		return
	}
	e.g.Current = Point{X: x, Y: y}
}

// PointerUp finishes a draw: the rubber band is converted to image space,
// committed under a fresh id with the active label, logged and selected.
// It returns the committed rectangle after repair.
func (e *Editor) PointerUp(x, y float64) (bbox.Rect, bool) {
	if e.g.State != StateDrawing {
		return bbox.Rect{}, false
	}
	if !e.onCanvas(x, y) {
		e.PointerLeave()
		return bbox.Rect{}, false
	}
	a := e.g.Anchor
	r := bbox.FromCorners(a.X, a.Y, x, y, e.scale)
	r.ID = e.newID()
	r.Label = e.label
	r.Stroke = e.ColorFor(e.label)

	snap := e.store.Add(r)
	stored := snap[len(snap)-1]
	e.history.Push(undo.Add(stored))
	e.g = selected(stored.ID)
	return stored, true
}

// PointerLeave cancels a pending draw without committing anything.
func (e *Editor) PointerLeave() bool {
	if e.g.State != StateDrawing {
		return false
	}
	e.g = idle()
	return true
}

// onCanvas reports whether a rendered-space point lies on the canvas, edges included.
func (e *Editor) onCanvas(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= e.size.W*e.scale && y <= e.size.H*e.scale
}

// ClickShape handles a click delivered by a rectangle's own shape. It replays
// the hit test at the shape's center so overlapping shapes resolve exactly
// like a background click.
func (e *Editor) ClickShape(id string) error {
	r, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRect, id)
	}
	if e.mode != ModeModify || e.g.Selected == id {
		return nil
	}
	cx, cy := r.Center()
	e.selectAt(bbox.ToRendered(cx, e.scale), bbox.ToRendered(cy, e.scale))
	return nil
}

// selectAt runs the hit test and applies selection with z-order promotion.
func (e *Editor) selectAt(x, y float64) {
	snap := e.store.Snapshot()
	idx, ok := bbox.HitTest(snap, e.scale, x, y)
	if !ok {
		e.g = idle()
		return
	}
	hit := snap[idx]
	if e.g.Selected == hit.ID {
		return
	}
	e.g = selected(hit.ID)
	if last := len(snap) - 1; idx != last {
		if _, err := e.store.Swap(idx, last); err != nil {
			e.logf("editor: promote %s: %v", hit.ID, err)
		}
	}
	e.adoptLabel(hit.Label)
}

// adoptLabel makes label active and notifies the label picker.
func (e *Editor) adoptLabel(label string) {
	e.label = label
	if e.onLabel != nil {
		e.onLabel(label)
	}
}
