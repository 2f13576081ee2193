package editor

import (
	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/undo"
)

// pendingAlpha is appended to the label color to fill the rubber band (30% opacity).
const pendingAlpha = "4D"

// Pending is the in-progress draw rectangle in rendered space. Width and height keep their sign.
type Pending struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"width"`
	H    float64 `json:"height"`
	Fill string  `json:"fill"`
}

// View is a read-only picture of the editor for rendering layers.
type View struct {
	Mode        Mode              `json:"mode"`
	State       State             `json:"state"`
	Selected    string            `json:"selected,omitempty"`
	Label       string            `json:"label"`
	Labels      []string          `json:"labels"`
	Colors      map[string]string `json:"colors"`
	Scale       float64           `json:"scale"`
	ImageSize   bbox.Size         `json:"imageSize"`
	Canvas      bbox.Size         `json:"canvas"`
	StrokeWidth float64           `json:"strokeWidth"`
	UseSpace    bool              `json:"useSpace"`
	Rects       []bbox.Rect       `json:"rects"`
	Pending     *Pending          `json:"pending,omitempty"`
	UndoDepth   int               `json:"undoDepth"`
	LastUndo    undo.Kind         `json:"lastUndo,omitempty"`
}

// View returns the current view.
func (e *Editor) View() View {
	v := View{
		Mode:        e.mode,
		State:       e.g.State,
		Selected:    e.g.Selected,
		Label:       e.label,
		Labels:      append([]string(nil), e.labels...),
		Colors:      make(map[string]string, len(e.colors)),
		Scale:       e.scale,
		ImageSize:   e.size,
		Canvas:      bbox.Size{W: e.size.W * e.scale, H: e.size.H * e.scale},
		StrokeWidth: e.strokeWidth,
		UseSpace:    e.useSpace,
		Rects:       append([]bbox.Rect(nil), e.store.Snapshot()...),
		UndoDepth:   e.history.Len(),
	}
	if a, ok := e.history.Log().Peek(); ok {
		v.LastUndo = a.Kind
	}
	for k, c := range e.colors {
		v.Colors[k] = c
	}
	if e.g.State == StateDrawing {
		a, c := e.g.Anchor, e.g.Current
		v.Pending = &Pending{
			X:    a.X,
			Y:    a.Y,
			W:    c.X - a.X,
			H:    c.Y - a.Y,
			Fill: e.ColorFor(e.label) + pendingAlpha,
		}
	}
	return v
}
