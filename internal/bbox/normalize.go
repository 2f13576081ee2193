package bbox

// Normalizer repairs rectangles so they lie inside Bounds with at least MinSize per side.
// Non-positive bounds disable the containment steps.
type Normalizer struct {
	Bounds Size
}

// Repair returns a repaired copy of rects. The input slice is left untouched.
func (n Normalizer) Repair(rects []Rect) []Rect {
	out := make([]Rect, len(rects))
	for i, r := range rects {
		if Valid(r, n.Bounds) {
			out[i] = r
			continue
		}
		out[i] = Normalize(r, n.Bounds)
	}
	return out
}

// Normalize fixes negative sizes, clips to the image, then enforces MinSize.
// When the size floor pushes an edge past the image, the origin is shifted back
// so the rectangle stays contained whenever the image is at least MinSize wide/high.
func Normalize(r Rect, b Size) Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	if b.W > 0 && r.X+r.W > b.W {
		r.W = b.W - r.X
	}
	if b.H > 0 && r.Y+r.H > b.H {
		r.H = b.H - r.Y
	}
	if r.W < MinSize {
		r.W = MinSize
	}
	if r.H < MinSize {
		r.H = MinSize
	}
	if b.W > 0 && r.X+r.W > b.W {
		r.X = max(0, b.W-r.W)
	}
	if b.H > 0 && r.Y+r.H > b.H {
		r.Y = max(0, b.H-r.H)
	}
	return r
}

// Valid reports whether r already satisfies the repaired-state invariants for b,
// meaning Normalize would return it unchanged.
func Valid(r Rect, b Size) bool {
	if r.W < MinSize || r.H < MinSize || r.X < 0 || r.Y < 0 {
		return false
	}
	if b.W > 0 && r.X+r.W > b.W {
		return false
	}
	if b.H > 0 && r.Y+r.H > b.H {
		return false
	}
	return true
}
