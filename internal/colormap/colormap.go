// Package colormap assigns stroke colors to labels.
package colormap

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// hueSpan keeps the last label from wrapping back to red.
const hueSpan = 300.0

// Rainbow spreads labels evenly over the hue wheel at full saturation and value.
func Rainbow(labels []string) map[string]string {
	out := make(map[string]string, len(labels))
	n := float64(len(labels))
	for i, l := range labels {
		out[l] = colorful.Hsv(hueSpan*float64(i)/n, 1, 1).Hex()
	}
	return out
}

// Merge overlays host colors on the generated palette. Host entries that are
// not valid hex colors are logged and the generated color is kept.
// Host colors for labels outside the palette are carried over as-is.
func Merge(generated, host map[string]string, logf func(string, ...any)) map[string]string {
	out := make(map[string]string, len(generated)+len(host))
	for l, c := range generated {
		out[l] = c
	}
	for l, c := range host {
		parsed, err := colorful.Hex(strings.TrimSpace(c))
		if err != nil {
			if logf != nil {
				logf("colormap: label %q color %q invalid, using %s", l, c, out[l])
			}
			continue
		}
		out[l] = parsed.Hex()
	}
	return out
}

// For builds the final palette for labels.
func For(labels []string, host map[string]string, logf func(string, ...any)) map[string]string {
	return Merge(Rainbow(labels), host, logf)
}
