package task

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/frudas24/bboxedit/internal/editor"
)

// SaveOutput writes emitted annotations as indented JSON, creating parent directories as needed.
func SaveOutput(path string, records []editor.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if records == nil {
		records = []editor.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadOutput reads previously saved annotations. Missing files return no records.
func LoadOutput(path string) ([]editor.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []editor.Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Resume replaces the task's initial boxes with saved annotations, when any exist.
func (t *Task) Resume(records []editor.Record) {
	if len(records) == 0 {
		return
	}
	boxes := make([]Box, len(records))
	for i, r := range records {
		boxes[i] = Box{BBox: r.BBox, Label: r.Label}
	}
	t.BBoxes = boxes
}
