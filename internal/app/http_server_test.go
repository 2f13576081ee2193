package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/config"
	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/frudas24/bboxedit/internal/preview"
	"github.com/frudas24/bboxedit/internal/session"
	"github.com/frudas24/bboxedit/internal/task"
	"github.com/frudas24/bboxedit/internal/testutil"
)

// newTestApp returns an App over a 120x80 editor with one rectangle and a preview renderer.
func newTestApp(t *testing.T, password string) (*App, *session.Session) {
	t.Helper()
	ed, err := editor.New(editor.Config{
		ImageSize: bbox.Size{W: 120, H: 80},
		Labels:    []string{"cat"},
		Colors:    map[string]string{"cat": "#ff0000"},
		Initial:   []bbox.Rect{{X: 10, Y: 10, W: 30, H: 20, Label: "cat"}},
		NewID:     testutil.SeqIDs("r"),
	})
	if err != nil {
		t.Fatalf("editor: %v", err)
	}
	sess := session.New(password, ed)
	r, err := preview.NewRenderer(nil, ed.ImageSize())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	cfg := config.Config{PreviewIntervalMs: 120, PreviewQuality: 60}
	a, err := New(cfg, sess, r, "", false)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	return a, sess
}

// serve runs one request through the registered routes.
func serve(a *App, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux, "")
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// TestNew_RequiresSession verifies construction fails without a session.
func TestNew_RequiresSession(t *testing.T) {
	if _, err := New(config.Config{}, nil, nil, "", false); err == nil {
		t.Fatalf("expected error")
	}
}

// TestHandleState_HidesViewUntilLogin verifies the view is only shared after authentication.
func TestHandleState_HidesViewUntilLogin(t *testing.T) {
	a, _ := newTestApp(t, "pw")
	var resp stateResponse
	rec := serve(a, http.MethodGet, "/api/state", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Authenticated || !resp.RequiresAuth || resp.View != nil {
		t.Fatalf("unexpected anonymous state %+v", resp)
	}

	if rec := serve(a, http.MethodPost, "/login", `{"password":"bad"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := serve(a, http.MethodPost, "/login", `{"password":"pw"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = serve(a, http.MethodGet, "/api/state", "")
	resp = stateResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Authenticated || resp.View == nil || len(resp.View.Rects) != 1 || !resp.Preview {
		t.Fatalf("unexpected state %+v", resp)
	}
}

// TestHandleOutput verifies the output route uses the host record format.
func TestHandleOutput(t *testing.T) {
	a, _ := newTestApp(t, "")
	rec := serve(a, http.MethodGet, "/api/output", "")
	var out []editor.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].BBox != [4]float64{10, 10, 30, 20} || out[0].LabelID != 0 {
		t.Fatalf("unexpected output %+v", out)
	}
}

// TestHandleConfig_Unauthorized verifies /api/config requires authentication.
func TestHandleConfig_Unauthorized(t *testing.T) {
	a, _ := newTestApp(t, "pw")
	if rec := serve(a, http.MethodPost, "/api/config", `{}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// TestHandleConfig_UpdateAndReset verifies runtime preview settings and reset to startup values.
func TestHandleConfig_UpdateAndReset(t *testing.T) {
	a, _ := newTestApp(t, "")

	rec := serve(a, http.MethodPost, "/api/config", `{"previewIntervalMs":80,"previewQuality":90}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp configResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Applied || resp.PreviewIntervalMs != 80 || resp.PreviewQuality != 90 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if a.cfg.PreviewIntervalMs != 80 || a.cfg.PreviewQuality != 90 {
		t.Fatalf("unexpected app cfg: %+v", a.cfg)
	}

	rec = serve(a, http.MethodPost, "/api/config", `{"reset":true}`)
	resp = configResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PreviewIntervalMs != 120 || resp.PreviewQuality != 60 {
		t.Fatalf("expected startup values, got %+v", resp)
	}
}

// TestHandleConfig_ValidatesInput verifies the endpoint rejects invalid values.
func TestHandleConfig_ValidatesInput(t *testing.T) {
	a, _ := newTestApp(t, "")
	rec := serve(a, http.MethodPost, "/api/config", `{"previewIntervalMs":1,"previewQuality":500}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestHandlePreviewPNG verifies the preview route returns an image of the editor size.
func TestHandlePreviewPNG(t *testing.T) {
	a, _ := newTestApp(t, "")
	rec := serve(a, http.MethodGet, "/api/preview.png", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	cfg, err := png.DecodeConfig(rec.Body)
	if err != nil || cfg.Width != 120 || cfg.Height != 80 {
		t.Fatalf("expected 120x80, got %+v %v", cfg, err)
	}
}

// TestHandleReport verifies the report route returns a PDF and requires login.
func TestHandleReport(t *testing.T) {
	a, _ := newTestApp(t, "")
	rec := serve(a, http.MethodGet, "/api/report.pdf", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF body")
	}

	locked, _ := newTestApp(t, "pw")
	if rec := serve(locked, http.MethodGet, "/api/report.pdf", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// TestRun_PublishesAfterDispatch verifies state changes reach the MJPEG stream.
func TestRun_PublishesAfterDispatch(t *testing.T) {
	a, sess := newTestApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	deadline := time.After(2 * time.Second)
	for len(a.PreviewStream().Last()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for initial frame")
		case <-time.After(5 * time.Millisecond):
		}
	}
	first := a.PreviewStream().Last()
	_, _ = sess.Dispatch(func(e *editor.Editor) error {
		e.PointerDown(20, 20)
		return nil
	})
	for bytes.Equal(a.PreviewStream().Last(), first) {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for updated frame")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// TestOutputSink verifies commits are persisted as JSON.
func TestOutputSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	OutputSink(path)([]editor.Record{{BBox: [4]float64{1, 2, 3, 4}, Label: "cat"}})
	out, err := task.LoadOutput(path)
	if err != nil || len(out) != 1 || out[0].Label != "cat" {
		t.Fatalf("expected persisted record, got %+v %v", out, err)
	}
}
