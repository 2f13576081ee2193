package control

import (
	"errors"
	"fmt"

	"github.com/frudas24/bboxedit/internal/editor"
)

// ErrBadMessage is returned for messages that cannot be turned into an editor event.
var ErrBadMessage = errors.New("bad control message")

// Event is one editor operation produced from a message.
type Event func(*editor.Editor) error

// eventFor translates msg into an editor event. Records emitted by a commit are
// stored into emitted when the event runs. A nil event with a nil error means
// the pointer filter dropped the message.
func eventFor(msg Message, ptr *PointerState, emitted *[]editor.Record) (Event, error) {
	switch msg.T {
	case MsgDown:
		if !ptr.Down(msg.ID, msg.X, msg.Y) {
			return nil, nil
		}
		return func(e *editor.Editor) error {
			e.PointerDown(msg.X, msg.Y)
			return nil
		}, nil
	case MsgMove:
		if !ptr.Move(msg.ID, msg.X, msg.Y) {
			return nil, nil
		}
		return func(e *editor.Editor) error {
			e.PointerMove(msg.X, msg.Y)
			return nil
		}, nil
	case MsgUp:
		if !ptr.Up(msg.ID) {
			return nil, nil
		}
		return func(e *editor.Editor) error {
			e.PointerUp(msg.X, msg.Y)
			return nil
		}, nil
	case MsgLeave:
		ptr.Reset()
		return func(e *editor.Editor) error {
			e.PointerLeave()
			return nil
		}, nil
	case MsgClick:
		if msg.Target == "" {
			return nil, fmt.Errorf("%w: click without target", ErrBadMessage)
		}
		return func(e *editor.Editor) error { return e.ClickShape(msg.Target) }, nil
	case MsgMoveResult:
		if msg.Target == "" || msg.Rect == nil {
			return nil, fmt.Errorf("%w: moveResult needs target and rect", ErrBadMessage)
		}
		r := *msg.Rect
		return func(e *editor.Editor) error {
			_, err := e.ApplyMove(msg.Target, r.X, r.Y, r.W, r.H)
			return err
		}, nil
	case MsgSetMode:
		m, err := editor.ParseMode(msg.Mode)
		if err != nil {
			return nil, err
		}
		ptr.Reset()
		return func(e *editor.Editor) error { return e.SetMode(m) }, nil
	case MsgSetLabel:
		return func(e *editor.Editor) error { return e.SetLabel(msg.Label) }, nil
	case MsgDelete:
		return func(e *editor.Editor) error {
			e.Delete()
			return nil
		}, nil
	case MsgUndo:
		return func(e *editor.Editor) error {
			e.Undo()
			return nil
		}, nil
	case MsgKey:
		k := editor.Key{Name: msg.Key, Ctrl: msg.Ctrl}
		return func(e *editor.Editor) error {
			if out, ok := e.HandleKey(k); ok {
				*emitted = out
			}
			return nil
		}, nil
	case MsgCommit:
		return func(e *editor.Editor) error {
			*emitted = e.Commit()
			return nil
		}, nil
	case MsgResize:
		if msg.Width <= 0 {
			return nil, fmt.Errorf("%w: resize width %v", ErrBadMessage, msg.Width)
		}
		return func(e *editor.Editor) error {
			e.Resize(msg.Width)
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadMessage, msg.T)
	}
}
