// Package report exports the current annotations as a one-page PDF.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/jung-kurt/gofpdf"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	margin      = 10.0
	pageWidth   = 210.0
	maxFigureH  = 150.0
	rowHeight   = 6.0
	imageName   = "background"
	fallbackHex = "#808080"
)

// columns lists the annotation table header and widths in millimetres.
var columns = []struct {
	title string
	width float64
}{
	{"#", 10}, {"label", 40}, {"label_id", 20}, {"x", 30}, {"y", 30}, {"width", 30}, {"height", 30},
}

// Write renders bg with vector outlines for every rectangle of v, followed by
// a table of records. bg may be nil, in which case only the outlines are drawn.
func Write(w io.Writer, title string, v editor.View, records []editor.Record, bg image.Image) error {
	if v.ImageSize.W <= 0 || v.ImageSize.H <= 0 {
		return fmt.Errorf("image size %vx%v must be positive", v.ImageSize.W, v.ImageSize.H)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d annotations, %vx%v px", len(records), v.ImageSize.W, v.ImageSize.H), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	top := pdf.GetY()
	mm := figureScale(v.ImageSize.W, v.ImageSize.H)
	figW, figH := v.ImageSize.W*mm, v.ImageSize.H*mm
	if bg != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, bg); err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(imageName, opts, &buf)
		pdf.ImageOptions(imageName, margin, top, figW, figH, false, opts, 0, "")
	}
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(margin, top, figW, figH, "D")

	pdf.SetLineWidth(0.5)
	pdf.SetFont("Helvetica", "", 7)
	for _, r := range v.Rects {
		red, green, blue := rgb(r.Stroke)
		pdf.SetDrawColor(red, green, blue)
		pdf.SetTextColor(red, green, blue)
		pdf.Rect(margin+r.X*mm, top+r.Y*mm, r.W*mm, r.H*mm, "D")
		if r.Label != "" {
			pdf.Text(margin+r.X*mm+0.5, top+r.Y*mm+2.5, r.Label)
		}
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(top + figH + 6)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for i, rec := range records {
		cells := []string{
			fmt.Sprint(i + 1),
			rec.Label,
			fmt.Sprint(rec.LabelID),
			fmt.Sprintf("%.1f", rec.BBox[0]),
			fmt.Sprintf("%.1f", rec.BBox[1]),
			fmt.Sprintf("%.1f", rec.BBox[2]),
			fmt.Sprintf("%.1f", rec.BBox[3]),
		}
		for j, c := range columns {
			align := "R"
			if j == 1 {
				align = "L"
			}
			pdf.CellFormat(c.width, rowHeight, cells[j], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// figureScale returns millimetres per image pixel so the figure fits the page width and height cap.
func figureScale(w, h float64) float64 {
	avail := pageWidth - 2*margin
	return min(avail/w, maxFigureH/h)
}

// rgb parses a hex color, falling back to gray.
func rgb(hex string) (int, int, int) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(fallbackHex)
	}
	r, g, b := c.RGB255()
	return int(r), int(g), int(b)
}
