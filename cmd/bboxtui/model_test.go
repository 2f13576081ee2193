package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/frudas24/bboxedit/internal/testutil"
)

// fixture holds a model and the fakes behind its side effects.
type fixture struct {
	m     model
	saved testutil.Sink[[]editor.Record]
	clips testutil.Sink[string]
	clip  error
}

// newFixture builds a model over a 100x50 image at scale 1.
func newFixture(t *testing.T, initial ...bbox.Rect) *fixture {
	t.Helper()
	ed, err := editor.New(editor.Config{
		ImageSize: bbox.Size{W: 100, H: 50},
		Labels:    []string{"cat", "dog"},
		Colors:    map[string]string{"cat": "#ff0000", "dog": "#0000ff"},
		Initial:   initial,
		NewID:     testutil.SeqIDs("r"),
		Logf:      func(string, ...any) {},
	})
	if err != nil {
		t.Fatalf("editor.New failed: %v", err)
	}
	f := &fixture{}
	save := func(_ string, records []editor.Record) error {
		f.saved.Put(records)
		return nil
	}
	clip := func(text string) error {
		if f.clip != nil {
			return f.clip
		}
		f.clips.Put(text)
		return nil
	}
	f.m = newModel(ed, "out.json", save, clip)
	return f
}

// send feeds msgs through Update.
func (f *fixture) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = f.m.Update(msg)
		f.m = next.(model)
	}
	return cmd
}

// cellAt returns the terminal position of grid cell (cx, cy).
func cellAt(cx, cy int) (int, int) {
	return cx + 1, cy + headerLines + 1
}

func mouse(typ tea.MouseEventType, cx, cy int) tea.MouseMsg {
	x, y := cellAt(cx, cy)
	return tea.MouseMsg{X: x, Y: y, Type: typ}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestMouseDraw_AddsRectangle verifies a drag in Add mode commits one rectangle.
func TestMouseDraw_AddsRectangle(t *testing.T) {
	f := newFixture(t)
	f.send(runes("a"), mouse(tea.MouseLeft, 10, 0), mouse(tea.MouseMotion, 30, 10), mouse(tea.MouseRelease, 30, 10))

	rects := f.m.ed.Rects()
	if len(rects) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(rects))
	}
	if r := rects[0]; r.Label != "cat" || r.W != 20 || r.H != 20 {
		t.Fatalf("expected 20x20 cat, got %+v", r)
	}
	if id, ok := f.m.ed.Selected(); !ok || id != "r-1" {
		t.Fatalf("expected r-1 selected, got %q", id)
	}
}

// TestMouseDraw_LeavingCanvasCancels verifies dragging off the canvas drops the draw.
func TestMouseDraw_LeavingCanvasCancels(t *testing.T) {
	f := newFixture(t)
	f.send(runes("a"), mouse(tea.MouseLeft, 10, 0), mouse(tea.MouseMotion, 200, 10), mouse(tea.MouseRelease, 30, 10))

	if n := len(f.m.ed.Rects()); n != 0 {
		t.Fatalf("expected no rectangles, got %d", n)
	}
	if f.m.ed.Gesture().State != editor.StateIdle {
		t.Fatalf("expected idle, got %s", f.m.ed.Gesture().State)
	}
}

// TestMouseDrag_MovesSelection verifies a Modify-mode drag applies one move.
func TestMouseDrag_MovesSelection(t *testing.T) {
	f := newFixture(t, bbox.Rect{X: 10, Y: 10, W: 20, H: 10, Label: "cat"})
	f.send(mouse(tea.MouseLeft, 15, 6), mouse(tea.MouseMotion, 25, 6), mouse(tea.MouseRelease, 25, 6))

	r := f.m.ed.Rects()[0]
	if r.X != 20 || r.Y != 10 || r.W != 20 {
		t.Fatalf("expected rectangle moved to x=20, got %+v", r)
	}
	if f.m.ed.UndoDepth() != 1 {
		t.Fatalf("expected one logged move, got %d", f.m.ed.UndoDepth())
	}
	if got := f.m.summary(f.m.ed.View()); !strings.Contains(got, "undo 1 (move)") {
		t.Fatalf("expected undo summary, got %q", got)
	}
}

// TestMouseClick_DoesNotMove verifies a click without motion only selects.
func TestMouseClick_DoesNotMove(t *testing.T) {
	f := newFixture(t, bbox.Rect{X: 10, Y: 10, W: 20, H: 10, Label: "cat"})
	f.send(mouse(tea.MouseLeft, 15, 6), mouse(tea.MouseRelease, 15, 6))

	if _, ok := f.m.ed.Selected(); !ok {
		t.Fatalf("expected selection")
	}
	if f.m.ed.UndoDepth() != 0 {
		t.Fatalf("expected no logged action, got %d", f.m.ed.UndoDepth())
	}
}

// TestArrowKeys_NudgeAndResize verifies arrows move by one cell and shift+arrows resize.
func TestArrowKeys_NudgeAndResize(t *testing.T) {
	f := newFixture(t, bbox.Rect{X: 10, Y: 10, W: 20, H: 10, Label: "cat"})
	f.send(mouse(tea.MouseLeft, 15, 6), mouse(tea.MouseRelease, 15, 6))
	f.send(tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown})

	r := f.m.ed.Rects()[0]
	if r.X != 11 || r.Y != 12 {
		t.Fatalf("expected origin 11,12, got %+v", r)
	}
	f.send(tea.KeyMsg{Type: tea.KeyShiftRight})
	if r := f.m.ed.Rects()[0]; r.W != 21 || r.X != 11 {
		t.Fatalf("expected width 21 at x=11, got %+v", r)
	}
	if f.m.ed.UndoDepth() != 3 {
		t.Fatalf("expected 3 logged moves, got %d", f.m.ed.UndoDepth())
	}
}

// TestKeys_DeleteAndUndo verifies delete and ctrl+z reach the editor.
func TestKeys_DeleteAndUndo(t *testing.T) {
	f := newFixture(t, bbox.Rect{X: 10, Y: 10, W: 20, H: 10, Label: "cat"})
	f.send(mouse(tea.MouseLeft, 15, 6), mouse(tea.MouseRelease, 15, 6), tea.KeyMsg{Type: tea.KeyDelete})
	if n := len(f.m.ed.Rects()); n != 0 {
		t.Fatalf("expected deletion, got %d rectangles", n)
	}
	f.send(tea.KeyMsg{Type: tea.KeyCtrlZ})
	if n := len(f.m.ed.Rects()); n != 1 {
		t.Fatalf("expected restored rectangle, got %d", n)
	}
}

// TestTab_CyclesLabel verifies tab advances the active label and wraps.
func TestTab_CyclesLabel(t *testing.T) {
	f := newFixture(t)
	f.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := f.m.ed.Label(); got != "dog" {
		t.Fatalf("expected dog, got %s", got)
	}
	f.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := f.m.ed.Label(); got != "cat" {
		t.Fatalf("expected wrap to cat, got %s", got)
	}
	f.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := f.m.ed.Label(); got != "dog" {
		t.Fatalf("expected dog after shift+tab, got %s", got)
	}
}

// TestEnter_CommitsSavesAndCopies verifies enter writes output and fills the clipboard.
func TestEnter_CommitsSavesAndCopies(t *testing.T) {
	f := newFixture(t, bbox.Rect{X: 10, Y: 10, W: 20, H: 10, Label: "dog"})
	f.send(tea.KeyMsg{Type: tea.KeyEnter})

	saved, ok := f.saved.Last()
	if !ok || len(saved) != 1 || saved[0].LabelID != 1 {
		t.Fatalf("expected one dog record saved, got %+v", saved)
	}
	clip, _ := f.clips.Last()
	if !strings.Contains(clip, `"label":"dog"`) {
		t.Fatalf("expected JSON on clipboard, got %q", clip)
	}
	if !strings.HasPrefix(f.m.status, "saved 1 annotations") {
		t.Fatalf("unexpected status %q", f.m.status)
	}
}

// TestEnter_ClipboardFailureIsReported verifies a missing clipboard does not fail the commit.
func TestEnter_ClipboardFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.clip = errors.New("no clipboard")
	f.send(tea.KeyMsg{Type: tea.KeyEnter})

	if f.saved.Len() != 1 {
		t.Fatalf("expected output saved, got %d saves", f.saved.Len())
	}
	if !strings.Contains(f.m.status, "clipboard unavailable") {
		t.Fatalf("expected clipboard note, got %q", f.m.status)
	}
}

// TestSpace_RespectsUseSpace verifies space does not commit unless enabled.
func TestSpace_RespectsUseSpace(t *testing.T) {
	f := newFixture(t)
	f.send(tea.KeyMsg{Type: tea.KeySpace})
	if f.saved.Len() != 0 {
		t.Fatalf("expected no commit, got %d", f.saved.Len())
	}
}

// TestWindowSize_FitsImage verifies the editor is rescaled to the terminal.
func TestWindowSize_FitsImage(t *testing.T) {
	f := newFixture(t)
	f.send(tea.WindowSizeMsg{Width: 52, Height: 30})

	if got := f.m.ed.Scale(); got != 0.5 {
		t.Fatalf("expected scale 0.5, got %v", got)
	}
	if f.m.cols != 50 || f.m.rows != 13 {
		t.Fatalf("expected 50x13 grid, got %dx%d", f.m.cols, f.m.rows)
	}
}

// TestQuit verifies q ends the program.
func TestQuit(t *testing.T) {
	f := newFixture(t)
	if cmd := f.send(runes("q")); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

// TestView_ShowsStatusAndMode verifies the rendered frame names the mode and label.
func TestView_ShowsStatusAndMode(t *testing.T) {
	f := newFixture(t, bbox.Rect{X: 10, Y: 10, W: 20, H: 10, Label: "cat"})
	out := f.m.View()
	if !strings.Contains(out, "Modify") || !strings.Contains(out, "cat") {
		t.Fatalf("expected mode and label in view, got %q", out)
	}
}
