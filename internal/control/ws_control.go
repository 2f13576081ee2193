package control

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/frudas24/bboxedit/internal/session"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Server handles websocket control input.
type Server struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	session  *session.Session
	pointers *PointerState
	debug    bool
	conn     *websocket.Conn
}

// NewServer creates a control websocket server. With debug set every message is logged.
func NewServer(sess *session.Session, debug bool) *Server {
	return &Server{
		session:  sess,
		pointers: NewPointerState(),
		debug:    debug,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection, sends the current state and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.acceptConn(conn); err != nil {
		log.Printf("control: %v", err)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	defer s.cleanupConn(conn)

	v := s.session.View()
	if err := writeReply(conn, Reply{T: ReplyState, State: &v}); err != nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		for _, reply := range s.handleRaw(data) {
			if err := writeReply(conn, reply); err != nil {
				return
			}
		}
	}
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return fmt.Errorf("control connection already active")
	}
	s.conn = conn
	s.pointers.Reset()
	return nil
}

// cleanupConn clears the active connection when closed.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// handleRaw decodes one frame and handles it.
func (s *Server) handleRaw(data []byte) []Reply {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return []Reply{{T: ReplyError, Text: fmt.Sprintf("%v: %v", ErrBadMessage, err)}}
	}
	return s.handleMessage(msg)
}

// handleMessage runs one message through the session and builds the replies.
func (s *Server) handleMessage(msg Message) []Reply {
	if s.debug {
		log.Printf("control: recv %s %+v", msg.T, msg)
	}
	if msg.T == MsgSync {
		v := s.session.View()
		return []Reply{{T: ReplyState, State: &v}}
	}

	var emitted []editor.Record
	ev, err := eventFor(msg, s.pointers, &emitted)
	if err != nil {
		return []Reply{{T: ReplyError, Text: err.Error()}}
	}
	if ev == nil {
		return nil
	}
	if s.debug {
		ev = withUndoTrace(msg.T, ev)
	}
	v, err := s.session.Dispatch(ev)
	replies := []Reply{{T: ReplyState, State: &v}}
	if err != nil {
		if s.debug {
			log.Printf("control: %s failed: %v", msg.T, err)
		}
		replies = append(replies, Reply{T: ReplyError, Text: err.Error()})
	}
	if emitted != nil {
		replies = append(replies, Reply{T: ReplyOutput, Annotations: emitted})
	}
	return replies
}

// writeReply sends one reply with a write deadline.
func writeReply(conn *websocket.Conn, r Reply) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(r)
}

// withUndoTrace wraps ev so the undo log is printed while the session lock is still held.
func withUndoTrace(t string, ev Event) Event {
	return func(e *editor.Editor) error {
		err := ev(e)
		hist := e.History()
		kinds := make([]string, len(hist))
		for i, a := range hist {
			kinds[i] = string(a.Kind)
		}
		log.Printf("control: %s undo depth=%d actions=[%s]", t, len(hist), strings.Join(kinds, " "))
		return err
	}
}
