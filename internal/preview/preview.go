// Package preview rasterizes the editor state over the image for clients that
// do not draw rectangles themselves.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/golang/freetype/truetype"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	labelFontSize   = 12.0
	selectedBoost   = 1.6
	pendingFillOpac = 0.3
)

var fallbackStroke = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// Renderer draws views on a copy of the image scaled to the editor's image space.
// Render is safe for concurrent use; calls are serialized because font faces cache glyphs.
type Renderer struct {
	mu   sync.Mutex
	base *image.RGBA
	face font.Face
}

// NewRenderer scales img to size. A nil image renders on a neutral background.
func NewRenderer(img image.Image, size bbox.Size) (*Renderer, error) {
	w, h := int(size.W+0.5), int(size.H+0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("preview size %vx%v must be positive", size.W, size.H)
	}
	base := image.NewRGBA(image.Rect(0, 0, w, h))
	if img != nil {
		draw.ApproxBiLinear.Scale(base, base.Bounds(), img, img.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(base, base.Bounds(), image.NewUniform(color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}), image.Point{}, draw.Src)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    labelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Renderer{base: base, face: face}, nil
}

// Size returns the raster size in pixels.
func (r *Renderer) Size() image.Point {
	return r.base.Bounds().Size()
}

// Background returns the scaled image without overlays. Callers must not modify it.
func (r *Renderer) Background() image.Image {
	return r.base
}

// Render draws every rectangle in sequence order, so the last one ends on top.
// The selected rectangle gets a thicker stroke; a pending draw is filled translucent.
func (r *Renderer) Render(v editor.View) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	dc := gg.NewContextForRGBA(cloneRGBA(r.base))
	dc.SetFontFace(r.face)
	stroke := v.StrokeWidth
	if stroke <= 0 {
		stroke = 1
	}

	for _, rect := range v.Rects {
		lw := stroke
		if rect.ID == v.Selected {
			lw *= selectedBoost
		}
		c := parseColor(rect.Stroke)
		dc.SetLineWidth(lw)
		dc.SetColor(c)
		dc.DrawRectangle(rect.X, rect.Y, rect.W, rect.H)
		dc.Stroke()
		r.drawCaption(dc, rect, c)
	}

	if p := v.Pending; p != nil {
		x := bbox.ToImage(p.X, v.Scale)
		y := bbox.ToImage(p.Y, v.Scale)
		w := bbox.ToImage(p.W, v.Scale)
		h := bbox.ToImage(p.H, v.Scale)
		c := parseColor(v.Colors[v.Label])
		dc.DrawRectangle(x, y, w, h)
		dc.SetColor(withAlpha(c, pendingFillOpac))
		dc.FillPreserve()
		dc.SetColor(c)
		dc.SetLineWidth(stroke)
		dc.Stroke()
	}
	return dc.Image()
}

// drawCaption writes the label on a filled tab above the rectangle's top-left corner.
func (r *Renderer) drawCaption(dc *gg.Context, rect bbox.Rect, c color.Color) {
	if rect.Label == "" {
		return
	}
	tw, th := dc.MeasureString(rect.Label)
	pad := 2.0
	y := rect.Y - th - 2*pad
	if y < 0 {
		y = rect.Y
	}
	dc.SetColor(c)
	dc.DrawRectangle(rect.X, y, tw+2*pad, th+2*pad)
	dc.Fill()
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(rect.Label, rect.X+pad, y+pad, 0, 1)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// parseColor decodes a #rrggbb stroke, falling back to gray.
func parseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallbackStroke
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// withAlpha returns c at the given opacity, premultiplied.
func withAlpha(c color.Color, a float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.RGBA64{
		R: uint16(float64(r) * a),
		G: uint16(float64(g) * a),
		B: uint16(float64(b) * a),
		A: uint16(0xffff * a),
	}
}

// cloneRGBA copies src.
func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
