package bbox

import "testing"

// TestHitTest_SmallestAreaWins verifies a nested smaller rectangle beats a larger one.
func TestHitTest_SmallestAreaWins(t *testing.T) {
	rects := []Rect{
		{ID: "B", X: 5, Y: 5, W: 20, H: 20},
		{ID: "A", X: 10, Y: 10, W: 10, H: 10},
	}
	idx, ok := HitTest(rects, 1, 15, 15)
	if !ok || rects[idx].ID != "A" {
		t.Fatalf("expected A, got idx=%d ok=%v", idx, ok)
	}
}

// TestHitTest_EqualAreaFirstWins verifies ties keep sequence order.
func TestHitTest_EqualAreaFirstWins(t *testing.T) {
	rects := []Rect{
		{ID: "first", X: 0, Y: 0, W: 10, H: 10},
		{ID: "second", X: 5, Y: 5, W: 10, H: 10},
	}
	idx, ok := HitTest(rects, 1, 7, 7)
	if !ok || idx != 0 {
		t.Fatalf("expected first rect, got idx=%d ok=%v", idx, ok)
	}
}

// TestHitTest_Tolerance verifies the five pixel margin around each rectangle.
func TestHitTest_Tolerance(t *testing.T) {
	rects := []Rect{{ID: "a", X: 10, Y: 10, W: 10, H: 10}}
	if _, ok := HitTest(rects, 1, 5, 25); !ok {
		t.Fatalf("expected hit on tolerance corner")
	}
	if _, ok := HitTest(rects, 1, 4, 15); ok {
		t.Fatalf("expected miss beyond tolerance")
	}
}

// TestHitTest_Scaled verifies rectangles are tested in rendered space.
func TestHitTest_Scaled(t *testing.T) {
	rects := []Rect{{ID: "a", X: 100, Y: 100, W: 100, H: 100}}
	if _, ok := HitTest(rects, 0.5, 75, 75); !ok {
		t.Fatalf("expected hit inside scaled rect")
	}
	if _, ok := HitTest(rects, 0.5, 104, 104); !ok {
		t.Fatalf("expected hit on scaled tolerance edge")
	}
	if _, ok := HitTest(rects, 0.5, 106, 106); ok {
		t.Fatalf("expected miss outside scaled rect")
	}
}

// TestHitTest_Empty verifies an empty sequence never matches.
func TestHitTest_Empty(t *testing.T) {
	if idx, ok := HitTest(nil, 1, 0, 0); ok || idx != -1 {
		t.Fatalf("expected no match, got idx=%d ok=%v", idx, ok)
	}
}

// TestFromCorners_RenderedToImage verifies corner conversion divides by the scale.
func TestFromCorners_RenderedToImage(t *testing.T) {
	r := FromCorners(100, 50, 300, 150, 0.5)
	if r.BBox() != [4]float64{200, 100, 400, 200} {
		t.Fatalf("expected [200 100 400 200], got %v", r.BBox())
	}
}

// TestFromCorners_KeepsSign verifies reversed drags produce negative sizes for the normalizer.
func TestFromCorners_KeepsSign(t *testing.T) {
	r := FromCorners(300, 150, 100, 50, 1)
	if r.W != -200 || r.H != -100 {
		t.Fatalf("expected negative size, got %+v", r)
	}
}

// TestRect_Center verifies the center point helper.
func TestRect_Center(t *testing.T) {
	x, y := Rect{X: 10, Y: 20, W: 30, H: 40}.Center()
	if x != 25 || y != 40 {
		t.Fatalf("expected (25,40), got (%v,%v)", x, y)
	}
}
