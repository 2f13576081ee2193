// Package editor implements the rectangle interaction controller: the Add/Modify
// state machine, selection with z-order promotion, undo and output records.
//
// An Editor is not safe for concurrent use. All events must arrive on one
// dispatch path (see session.Session).
package editor

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/store"
	"github.com/frudas24/bboxedit/internal/undo"
	"github.com/google/uuid"
)

// viewportFill is the share of the viewport width the canvas may occupy.
const viewportFill = 0.8

var (
	// ErrUnknownRect is returned when an event names a rectangle id that is not in the store.
	ErrUnknownRect = errors.New("unknown rectangle")
	// ErrUnknownLabel is returned when a label is not in the configured label list.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrUnknownMode is returned for mode names other than Add and Modify.
	ErrUnknownMode = errors.New("unknown mode")
)

// Config is the host-supplied initialization input.
type Config struct {
	ImageSize   bbox.Size
	Labels      []string
	Colors      map[string]string
	Initial     []bbox.Rect
	StrokeWidth float64
	UseSpace    bool
	// Scale is the initial rendered/image ratio. Zero means 1.
	Scale float64
	// HostScale multiplies emitted bboxes, mapping the editor's image space
	// back to the host's original image. Zero means 1.
	HostScale float64
	// Mode is the starting mode. Empty means Modify.
	Mode  Mode
	NewID func() string
	Logf  func(format string, args ...any)
}

// Editor owns the rectangle store, the undo log and the controller state.
type Editor struct {
	size        bbox.Size
	labels      []string
	colors      map[string]string
	strokeWidth float64
	useSpace    bool
	hostScale   float64

	store   *store.Store
	history *undo.Manager

	mode  Mode
	g     Gesture
	label string
	scale float64

	newID    func() string
	logf     func(format string, args ...any)
	onLabel  func(label string)
	onCommit func(records []Record)
}

// New validates cfg and returns an editor seeded with the initial rectangles.
func New(cfg Config) (*Editor, error) {
	if cfg.ImageSize.W <= 0 || cfg.ImageSize.H <= 0 {
		return nil, fmt.Errorf("image size %vx%v must be positive", cfg.ImageSize.W, cfg.ImageSize.H)
	}
	if len(cfg.Labels) == 0 {
		return nil, errors.New("label list is empty")
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeModify
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	e := &Editor{
		size:        cfg.ImageSize,
		labels:      append([]string(nil), cfg.Labels...),
		colors:      make(map[string]string, len(cfg.Colors)),
		strokeWidth: cfg.StrokeWidth,
		useSpace:    cfg.UseSpace,
		hostScale:   positiveOr(cfg.HostScale, 1),
		history:     undo.NewManager(),
		mode:        mode,
		g:           idle(),
		label:       cfg.Labels[0],
		scale:       positiveOr(cfg.Scale, 1),
		newID:       cfg.NewID,
		logf:        cfg.Logf,
	}
	for k, v := range cfg.Colors {
		e.colors[k] = v
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.logf == nil {
		e.logf = log.Printf
	}
	e.history.OnMiss(func(a undo.Action) {
		e.logf("undo: %s target %s missing, skipped", a.Kind, a.TargetID())
	})

	initial := make([]bbox.Rect, len(cfg.Initial))
	for i, r := range cfg.Initial {
		if r.ID == "" {
			r.ID = fmt.Sprintf("bbox-%d", i)
		}
		if r.Stroke == "" {
			r.Stroke = e.ColorFor(r.Label)
		}
		initial[i] = r
	}
	e.store = store.New(initial, bbox.Normalizer{Bounds: e.size})
	return e, nil
}

// OnLabelChange registers the label-picker notification, fired when a selection adopts a label.
func (e *Editor) OnLabelChange(fn func(label string)) {
	e.onLabel = fn
}

// OnCommit registers the host sink that receives emitted annotations.
func (e *Editor) OnCommit(fn func(records []Record)) {
	e.onCommit = fn
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Gesture returns the current controller state.
func (e *Editor) Gesture() Gesture {
	return e.g
}

// Selected returns the selected rectangle id, if any.
func (e *Editor) Selected() (string, bool) {
	return e.g.Selected, e.g.Selected != ""
}

// Label returns the active label.
func (e *Editor) Label() string {
	return e.label
}

// Scale returns the rendered/image ratio.
func (e *Editor) Scale() float64 {
	return e.scale
}

// ImageSize returns the image bounds.
func (e *Editor) ImageSize() bbox.Size {
	return e.size
}

// Rects returns the current repaired snapshot.
func (e *Editor) Rects() []bbox.Rect {
	return e.store.Snapshot()
}

// UndoDepth returns the number of undoable actions.
func (e *Editor) UndoDepth() int {
	return e.history.Len()
}

// History returns the undoable actions, oldest first.
func (e *Editor) History() []undo.Action {
	return e.history.Log().Actions()
}

// ColorFor returns the stroke color of a label; unknown labels map to "".
func (e *Editor) ColorFor(label string) string {
	return e.colors[label]
}

// LabelIndex returns the position of label in the configured list, or -1.
func (e *Editor) LabelIndex(label string) int {
	return slices.Index(e.labels, label)
}

// SetScale sets the rendered/image ratio directly. Non-positive values are ignored.
func (e *Editor) SetScale(scale float64) {
	if scale > 0 {
		e.scale = scale
	}
}

// Resize recomputes the scale from the viewport width and returns it.
// A gesture in progress keeps its rendered-space points and reads the new scale on commit.
func (e *Editor) Resize(viewportWidth float64) float64 {
	if viewportWidth <= 0 {
		return e.scale
	}
	e.scale = min(viewportWidth*viewportFill/e.size.W, 1.0)
	return e.scale
}

// positiveOr returns v when positive, otherwise def.
func positiveOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
