package control

import "time"

const (
	minMoveInterval = 16 * time.Millisecond
	minMoveDelta    = 2.0
)

// PointerState lets one pointer at a time drive the editor and thins out move floods.
type PointerState struct {
	active     bool
	pointer    int
	lastMoveAt time.Time
	lastX      float64
	lastY      float64
	now        func() time.Time
}

// NewPointerState returns a ready-to-use tracker.
func NewPointerState() *PointerState {
	return &PointerState{now: time.Now}
}

// SetNowFunc overrides the clock used for throttling.
func (p *PointerState) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		p.now = fn
	}
}

// Down reports whether a press should reach the editor. A second pointer
// pressing while another is held is ignored.
func (p *PointerState) Down(id int, x, y float64) bool {
	if p.active && p.pointer != id {
		return false
	}
	p.active = true
	p.pointer = id
	p.lastMoveAt = p.now()
	p.lastX, p.lastY = x, y
	return true
}

// Move reports whether a move should reach the editor.
func (p *PointerState) Move(id int, x, y float64) bool {
	if !p.active || p.pointer != id {
		return false
	}
	now := p.now()
	if now.Sub(p.lastMoveAt) < minMoveInterval {
		return false
	}
	if absf(x-p.lastX) < minMoveDelta && absf(y-p.lastY) < minMoveDelta {
		return false
	}
	p.lastMoveAt = now
	p.lastX, p.lastY = x, y
	return true
}

// Up reports whether a release should reach the editor and ends the press.
func (p *PointerState) Up(id int) bool {
	if !p.active || p.pointer != id {
		return false
	}
	p.active = false
	return true
}

// Reset forgets any held pointer.
func (p *PointerState) Reset() {
	p.active = false
}

// absf returns the absolute value of v.
func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
