// Package bbox defines annotation rectangles and the geometry rules applied to them.
package bbox

const (
	// MinSize is the smallest width or height a repaired rectangle keeps.
	MinSize = 5.0
	// HitTolerance expands every rectangle on all sides during hit testing, in rendered pixels.
	HitTolerance = 5.0
)

// Rect is an annotation rectangle in image space.
type Rect struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"width"`
	H      float64 `json:"height"`
	Label  string  `json:"label"`
	Stroke string  `json:"stroke"`
}

// Size describes image bounds in image-space pixels.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Area returns the rectangle area; negative sizes yield a signed result.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// BBox returns the [x, y, width, height] tuple.
func (r Rect) BBox() [4]float64 {
	return [4]float64{r.X, r.Y, r.W, r.H}
}

// WithGeometry returns a copy of r with a new origin and size, keeping identity and label.
func (r Rect) WithGeometry(x, y, w, h float64) Rect {
	r.X, r.Y, r.W, r.H = x, y, w, h
	return r
}

// SameGeometry reports whether both rectangles have identical origin and size.
func SameGeometry(a, b Rect) bool {
	return a.X == b.X && a.Y == b.Y && a.W == b.W && a.H == b.H
}
