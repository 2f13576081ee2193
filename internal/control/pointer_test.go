package control

import (
	"testing"
	"time"
)

// TestPointer_SecondPointerIgnored verifies only the first pressed pointer drives events.
func TestPointer_SecondPointerIgnored(t *testing.T) {
	p := NewPointerState()
	if !p.Down(1, 10, 10) {
		t.Fatalf("expected first down accepted")
	}
	if p.Down(2, 50, 50) {
		t.Fatalf("expected second pointer ignored")
	}
	if p.Up(2) {
		t.Fatalf("expected foreign up ignored")
	}
	if !p.Up(1) {
		t.Fatalf("expected owner up accepted")
	}
	if !p.Down(2, 50, 50) {
		t.Fatalf("expected new press after release")
	}
}

// TestPointer_MoveThrottle verifies moves are thinned by time and distance.
func TestPointer_MoveThrottle(t *testing.T) {
	p := NewPointerState()
	now := time.Unix(0, 0)
	p.SetNowFunc(func() time.Time { return now })

	if p.Move(1, 5, 5) {
		t.Fatalf("expected hover move without press ignored")
	}
	p.Down(1, 10, 10)

	now = now.Add(5 * time.Millisecond)
	if p.Move(1, 30, 30) {
		t.Fatalf("expected move inside interval dropped")
	}
	now = now.Add(20 * time.Millisecond)
	if p.Move(1, 11, 11) {
		t.Fatalf("expected sub-delta move dropped")
	}
	if !p.Move(1, 30, 30) {
		t.Fatalf("expected move accepted")
	}
	if p.Move(2, 60, 60) {
		t.Fatalf("expected other pointer move ignored")
	}
}

// TestPointer_Reset verifies reset releases the held pointer.
func TestPointer_Reset(t *testing.T) {
	p := NewPointerState()
	p.Down(1, 0, 0)
	p.Reset()
	if p.Up(1) {
		t.Fatalf("expected up after reset ignored")
	}
}
