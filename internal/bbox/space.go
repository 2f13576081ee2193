package bbox

// ToImage converts a rendered-space value to image space.
func ToImage(v, scale float64) float64 {
	if scale <= 0 {
		return v
	}
	return v / scale
}

// ToRendered converts an image-space value to rendered space.
func ToRendered(v, scale float64) float64 {
	if scale <= 0 {
		return v
	}
	return v * scale
}

// FromCorners builds an image-space rectangle from two rendered-space corners.
// The size keeps its sign so a drag toward the top-left yields negative width/height.
func FromCorners(x0, y0, x1, y1, scale float64) Rect {
	return Rect{
		X: ToImage(x0, scale),
		Y: ToImage(y0, scale),
		W: ToImage(x1-x0, scale),
		H: ToImage(y1-y0, scale),
	}
}

// Rendered returns r with origin and size converted to rendered space.
func (r Rect) Rendered(scale float64) Rect {
	return r.WithGeometry(
		ToRendered(r.X, scale),
		ToRendered(r.Y, scale),
		ToRendered(r.W, scale),
		ToRendered(r.H, scale),
	)
}
