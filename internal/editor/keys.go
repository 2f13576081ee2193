package editor

import "strings"

// Key is a keyboard event delivered on the same dispatch path as pointer events.
type Key struct {
	Name string `json:"key"`
	Ctrl bool   `json:"ctrl,omitempty"`
}

// HandleKey dispatches the bound keys: space emits output (when enabled),
// Delete removes the selection and Ctrl+Z undoes. It returns the emitted
// records when the key committed.
func (e *Editor) HandleKey(k Key) ([]Record, bool) {
	switch {
	case e.useSpace && isSpace(k.Name):
		return e.Commit(), true
	case k.Name == "Delete":
		e.Delete()
	case k.Ctrl && strings.EqualFold(k.Name, "z"):
		e.Undo()
	}
	return nil, false
}

// isSpace matches the names front-ends use for the space bar.
func isSpace(name string) bool {
	switch name {
	case " ", "space", "Space", "Spacebar":
		return true
	default:
		return false
	}
}
