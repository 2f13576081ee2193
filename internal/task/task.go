// Package task loads the host initialization input for an annotation session
// and writes the emitted annotations back.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/editor"
	"gopkg.in/yaml.v3"
)

// DefaultLineWidth is the stroke width used when a task does not set one.
const DefaultLineWidth = 5.0

var (
	// ErrNoImageSize is returned when neither the task nor the image header gives dimensions.
	ErrNoImageSize = errors.New("image size unavailable")
	// ErrNoLabels is returned for a task without labels.
	ErrNoLabels = errors.New("task has no labels")
)

// Box is one initial annotation. Label wins over LabelID when both are set.
type Box struct {
	BBox    [4]float64 `yaml:"bbox" json:"bbox"`
	Label   string     `yaml:"label,omitempty" json:"label,omitempty"`
	LabelID *int       `yaml:"label_id,omitempty" json:"label_id,omitempty"`
}

// Display is the box the image is shrunk into before editing. Zero disables fitting.
type Display struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Task is the on-disk description of one image to annotate.
type Task struct {
	Image     string            `yaml:"image" json:"image"`
	ImageSize []float64         `yaml:"image_size,omitempty" json:"image_size,omitempty"`
	Labels    []string          `yaml:"labels" json:"labels"`
	BBoxes    []Box             `yaml:"bboxes,omitempty" json:"bboxes,omitempty"`
	Colors    map[string]string `yaml:"colors,omitempty" json:"colors,omitempty"`
	LineWidth float64           `yaml:"line_width,omitempty" json:"line_width,omitempty"`
	UseSpace  bool              `yaml:"use_space,omitempty" json:"use_space,omitempty"`
	Display   Display           `yaml:"display,omitempty" json:"display,omitempty"`

	dir string
}

// Load reads a task file. Files ending in .json are decoded as JSON, anything else as YAML.
// A missing image_size is read from the image header.
func Load(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := &Task{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, t)
	} else {
		err = yaml.Unmarshal(data, t)
	}
	if err != nil {
		return nil, fmt.Errorf("parse task %s: %w", path, err)
	}
	t.dir = filepath.Dir(path)
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("task %s: %w", path, err)
	}
	return t, nil
}

// validate fills defaults and checks the task is usable.
func (t *Task) validate() error {
	if len(t.Labels) == 0 {
		return ErrNoLabels
	}
	if t.LineWidth <= 0 {
		t.LineWidth = DefaultLineWidth
	}
	for i, b := range t.BBoxes {
		if b.Label != "" {
			continue
		}
		if b.LabelID == nil || *b.LabelID < 0 || *b.LabelID >= len(t.Labels) {
			return fmt.Errorf("bbox %d: label missing or label_id out of range", i)
		}
	}
	if len(t.ImageSize) == 2 && t.ImageSize[0] > 0 && t.ImageSize[1] > 0 {
		return nil
	}
	w, h, err := DecodeSize(t.ImagePath())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoImageSize, err)
	}
	t.ImageSize = []float64{float64(w), float64(h)}
	return nil
}

// ImagePath resolves the image reference relative to the task file.
func (t *Task) ImagePath() string {
	if t.Image == "" || filepath.IsAbs(t.Image) {
		return t.Image
	}
	return filepath.Join(t.dir, t.Image)
}

// Size returns the original image dimensions.
func (t *Task) Size() bbox.Size {
	if len(t.ImageSize) != 2 {
		return bbox.Size{}
	}
	return bbox.Size{W: t.ImageSize[0], H: t.ImageSize[1]}
}

// FitFactor returns original/displayed width when the image is shrunk into the
// display box (aspect kept, never enlarged), together with the displayed size.
func (t *Task) FitFactor() (float64, bbox.Size) {
	size := t.Size()
	d := t.Display
	if d.Width <= 0 || d.Height <= 0 || (size.W <= d.Width && size.H <= d.Height) {
		return 1, size
	}
	r := math.Min(d.Width/size.W, d.Height/size.H)
	shown := bbox.Size{
		W: math.Max(1, math.Round(size.W*r)),
		H: math.Max(1, math.Round(size.H*r)),
	}
	return size.W / shown.W, shown
}

// LabelOf resolves the label of an initial box.
func (t *Task) LabelOf(b Box) string {
	if b.Label != "" || b.LabelID == nil {
		return b.Label
	}
	return t.Labels[*b.LabelID]
}

// EditorConfig maps the task onto editor configuration using the given palette.
// Initial boxes are divided by the fit factor and emitted ones multiplied back.
func (t *Task) EditorConfig(colors map[string]string) editor.Config {
	factor, shown := t.FitFactor()
	initial := make([]bbox.Rect, len(t.BBoxes))
	for i, b := range t.BBoxes {
		initial[i] = bbox.Rect{
			X:     b.BBox[0] / factor,
			Y:     b.BBox[1] / factor,
			W:     b.BBox[2] / factor,
			H:     b.BBox[3] / factor,
			Label: t.LabelOf(b),
		}
	}
	return editor.Config{
		ImageSize:   shown,
		Labels:      append([]string(nil), t.Labels...),
		Colors:      colors,
		Initial:     initial,
		StrokeWidth: t.LineWidth,
		UseSpace:    t.UseSpace,
		HostScale:   factor,
	}
}
