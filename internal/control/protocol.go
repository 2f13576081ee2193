// Package control carries editor events over a websocket and answers with state.
package control

import "github.com/frudas24/bboxedit/internal/editor"

// Message types sent by clients.
const (
	MsgDown       = "down"
	MsgMove       = "move"
	MsgUp         = "up"
	MsgLeave      = "leave"
	MsgClick      = "click"
	MsgMoveResult = "moveResult"
	MsgSetMode    = "setMode"
	MsgSetLabel   = "setLabel"
	MsgDelete     = "delete"
	MsgUndo       = "undo"
	MsgKey        = "key"
	MsgCommit     = "commit"
	MsgResize     = "resize"
	MsgSync       = "sync"
)

// Reply types sent by the server.
const (
	ReplyState  = "state"
	ReplyOutput = "output"
	ReplyError  = "error"
)

// Rect is a drag/resize result in image space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Message is a control websocket payload. Pointer coordinates are in rendered space.
type Message struct {
	T      string  `json:"t"`
	ID     int     `json:"id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Target string  `json:"target,omitempty"`
	Rect   *Rect   `json:"rect,omitempty"`
	Key    string  `json:"key,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Reply is a server payload.
type Reply struct {
	T           string          `json:"t"`
	State       *editor.View    `json:"state,omitempty"`
	Annotations []editor.Record `json:"annotations,omitempty"`
	Text        string          `json:"text,omitempty"`
}
