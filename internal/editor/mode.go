package editor

import "fmt"

// Mode gates which pointer transitions are legal.
type Mode string

const (
	// ModeAdd draws new rectangles on pointer drags over the canvas.
	ModeAdd Mode = "Add"
	// ModeModify selects rectangles and accepts drag/resize results.
	ModeModify Mode = "Modify"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdd, ModeModify:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// State is the interaction state of the controller.
type State string

const (
	// StateIdle has no pending draw and no selection.
	StateIdle State = "idle"
	// StateDrawing tracks a rubber band between Anchor and Current.
	StateDrawing State = "drawing"
	// StateSelected has exactly one selected rectangle.
	StateSelected State = "selected"
)

// Point is a rendered-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Gesture is the single source of truth for selection and pending-draw state.
//
// Transitions (mode, state, event -> state):
//
//	Add,    any,      down        -> Drawing(p, p), selection cleared
//	Add,    Drawing,  move        -> Drawing(anchor, p)
//	Add,    Drawing,  up          -> Selected(new id), rectangle committed, Add logged
//	any,    Drawing,  leave       -> Idle, nothing committed
//	any,    Drawing,  move/up off canvas -> Idle, nothing committed
//	any,    Drawing,  mode change -> Idle, nothing committed
//	Modify, any,      down hit    -> Selected(hit id), swapped to the top slot if newly selected
//	Modify, any,      down miss   -> Idle
//	Modify, any,      shape click -> same as down at the shape center
//	any,    Selected, delete      -> Idle, rectangle removed, Delete logged
//	any,    Selected, undo        -> Idle when the selected rectangle no longer exists
type Gesture struct {
	State    State  `json:"state"`
	Selected string `json:"selected,omitempty"`
	Anchor   Point  `json:"anchor"`
	Current  Point  `json:"current"`
}

// idle returns the empty gesture.
func idle() Gesture {
	return Gesture{State: StateIdle}
}

// drawing starts a rubber band at p.
func drawing(p Point) Gesture {
	return Gesture{State: StateDrawing, Anchor: p, Current: p}
}

// selected returns a gesture holding id.
func selected(id string) Gesture {
	return Gesture{State: StateSelected, Selected: id}
}
