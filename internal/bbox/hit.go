package bbox

// Contains reports whether the rendered-space point lies inside r drawn at scale,
// expanded by HitTolerance on every side (edges inclusive).
func Contains(r Rect, scale, px, py float64) bool {
	return px >= r.X*scale-HitTolerance &&
		px <= (r.X+r.W)*scale+HitTolerance &&
		py >= r.Y*scale-HitTolerance &&
		py <= (r.Y+r.H)*scale+HitTolerance
}

// HitTest returns the index of the rectangle selected by a rendered-space point.
// The smallest matching area wins; equal areas keep the earliest in sequence order.
func HitTest(rects []Rect, scale, px, py float64) (int, bool) {
	best := -1
	for i, r := range rects {
		if !Contains(r, scale, px, py) {
			continue
		}
		if best < 0 || r.Area() < rects[best].Area() {
			best = i
		}
	}
	return best, best >= 0
}
