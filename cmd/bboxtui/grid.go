package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/editor"
)

// cellHeight is how many rendered units one terminal row covers. Cells are
// about twice as tall as they are wide, so x maps 1:1 and y maps 2:1.
const cellHeight = 2

// cell is one character of the canvas grid.
type cell struct {
	ch    rune
	color string
}

// border is the character set used to outline a rectangle.
type border struct {
	h, v, tl, tr, bl, br rune
}

var (
	thinBorder   = border{'─', '│', '┌', '┐', '└', '┘'}
	heavyBorder  = border{'━', '┃', '┏', '┓', '┗', '┛'}
	dottedBorder = border{'┄', '┆', '·', '·', '·', '·'}
)

// grid is a character raster of the canvas.
type grid struct {
	cols, rows int
	cells      [][]cell
}

// newGrid returns a blank cols x rows grid.
func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range g.cells {
		g.cells[y] = make([]cell, cols)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{ch: ' '}
		}
	}
	return g
}

// gridSize returns the number of cells needed to show an image at scale.
func gridSize(size bbox.Size, scale float64) (int, int) {
	cols := int(math.Ceil(size.W * scale))
	rows := int(math.Ceil(size.H * scale / cellHeight))
	return max(cols, 1), max(rows, 1)
}

// toRendered maps a grid cell to the rendered-space point at its center.
func toRendered(cx, cy int) (float64, float64) {
	return float64(cx) + 0.5, float64(cy*cellHeight) + cellHeight/2
}

// rasterize draws every rectangle of v, then the rubber band and the optional ghost.
// Later rectangles overwrite earlier ones, matching paint order.
func rasterize(v editor.View, cols, rows int, ghost *bbox.Rect) *grid {
	g := newGrid(cols, rows)
	for _, r := range v.Rects {
		b := thinBorder
		if r.ID == v.Selected {
			b = heavyBorder
		}
		color := r.Stroke
		if color == "" {
			color = v.Colors[r.Label]
		}
		g.outline(r.Rendered(v.Scale), b, color)
		g.caption(r.Rendered(v.Scale), r.Label, color)
	}
	if p := v.Pending; p != nil {
		x, w := p.X, p.W
		if w < 0 {
			x, w = x+w, -w
		}
		y, h := p.Y, p.H
		if h < 0 {
			y, h = y+h, -h
		}
		g.outline(bbox.Rect{X: x, Y: y, W: w, H: h}, dottedBorder, opaque(p.Fill))
	}
	if ghost != nil {
		g.outline(ghost.Rendered(v.Scale), dottedBorder, ghost.Stroke)
	}
	return g
}

// span returns the inclusive cell range covered by [start, start+size) in rendered units per cell.
func span(start, size, unit float64) (int, int) {
	a := int(math.Floor(start / unit))
	b := int(math.Ceil((start+size)/unit)) - 1
	if b < a {
		b = a
	}
	return a, b
}

// outline strokes the border of a rendered-space rectangle.
func (g *grid) outline(r bbox.Rect, b border, color string) {
	x0, x1 := span(r.X, r.W, 1)
	y0, y1 := span(r.Y, r.H, cellHeight)
	for x := x0; x <= x1; x++ {
		g.set(x, y0, b.h, color)
		g.set(x, y1, b.h, color)
	}
	for y := y0; y <= y1; y++ {
		g.set(x0, y, b.v, color)
		g.set(x1, y, b.v, color)
	}
	if x0 == x1 || y0 == y1 {
		return
	}
	g.set(x0, y0, b.tl, color)
	g.set(x1, y0, b.tr, color)
	g.set(x0, y1, b.bl, color)
	g.set(x1, y1, b.br, color)
}

// caption writes the label inside the top edge when it fits.
func (g *grid) caption(r bbox.Rect, label string, color string) {
	if label == "" {
		return
	}
	x0, x1 := span(r.X, r.W, 1)
	y0, _ := span(r.Y, r.H, cellHeight)
	room := x1 - x0 - 1
	runes := []rune(label)
	if room <= 0 {
		return
	}
	if len(runes) > room {
		runes = runes[:room]
	}
	for i, ch := range runes {
		g.set(x0+1+i, y0, ch, color)
	}
}

// set writes one cell, ignoring points outside the grid.
func (g *grid) set(x, y int, ch rune, color string) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y][x] = cell{ch: ch, color: color}
}

// lines renders the grid, styling runs of equally colored cells together.
func (g *grid) lines() []string {
	out := make([]string, g.rows)
	for y, row := range g.cells {
		var sb strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].color == row[start].color {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:x] {
				run.WriteRune(c.ch)
			}
			sb.WriteString(paint(run.String(), row[start].color))
			start = x
		}
		out[y] = sb.String()
	}
	return out
}

// text returns the raw characters of row y, without styling.
func (g *grid) text(y int) string {
	var sb strings.Builder
	for _, c := range g.cells[y] {
		sb.WriteRune(c.ch)
	}
	return sb.String()
}

// paint colors s with a hex color. Empty colors are left unstyled.
func paint(s, color string) string {
	if color == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// opaque drops the alpha suffix of an #RRGGBBAA color.
func opaque(color string) string {
	if len(color) == 9 && strings.HasPrefix(color, "#") {
		return color[:7]
	}
	return color
}
