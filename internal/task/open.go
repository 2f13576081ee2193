package task

import (
	"fmt"

	"github.com/frudas24/bboxedit/internal/colormap"
	"github.com/frudas24/bboxedit/internal/editor"
)

// Open loads the task at taskPath, resumes from outputPath when it holds saved
// annotations and builds an editor for it. logf receives palette warnings.
func Open(taskPath, outputPath string, logf func(string, ...any)) (*Task, *editor.Editor, error) {
	t, err := Load(taskPath)
	if err != nil {
		return nil, nil, err
	}
	if outputPath != "" {
		saved, err := LoadOutput(outputPath)
		if err != nil {
			return nil, nil, fmt.Errorf("resume %s: %w", outputPath, err)
		}
		if len(saved) > 0 {
			logf("task: resuming %d annotations from %s", len(saved), outputPath)
		}
		t.Resume(saved)
	}
	colors := colormap.For(t.Labels, t.Colors, logf)
	ed, err := editor.New(t.EditorConfig(colors))
	if err != nil {
		return nil, nil, err
	}
	return t, ed, nil
}
