package editor

// Record is one emitted annotation.
type Record struct {
	BBox    [4]float64 `json:"bbox"`
	Label   string     `json:"label"`
	LabelID int        `json:"label_id"`
}

// Output builds the annotation records for the current sequence, in order.
// Labels outside the configured list get LabelID -1.
func (e *Editor) Output() []Record {
	rects := e.store.Snapshot()
	out := make([]Record, len(rects))
	for i, r := range rects {
		out[i] = Record{
			BBox:    [4]float64{r.X * e.hostScale, r.Y * e.hostScale, r.W * e.hostScale, r.H * e.hostScale},
			Label:   r.Label,
			LabelID: e.LabelIndex(r.Label),
		}
	}
	return out
}

// Commit emits the current annotations to the host sink and returns them.
func (e *Editor) Commit() []Record {
	out := e.Output()
	if e.onCommit != nil {
		e.onCommit(out)
	}
	return out
}
