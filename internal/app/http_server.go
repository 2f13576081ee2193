package app

import (
	"bytes"
	"encoding/json"
	"image"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/frudas24/bboxedit/internal/preview"
	"github.com/frudas24/bboxedit/internal/report"
	"github.com/frudas24/bboxedit/internal/web"
)

const (
	minPreviewIntervalMs = 20
	maxPreviewIntervalMs = 5000
)

// RegisterRoutes wires API and static handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		staticDir = filepath.Join("internal", "web", "static")
	}

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/output", a.handleOutput)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/preview.png", a.handlePreviewPNG)
	mux.HandleFunc("/api/report.pdf", a.handleReport)
	mux.HandleFunc("/image", a.handleImage)
	mux.Handle("/ws/control", a.Control())
	mux.HandleFunc("/favicon.ico", handleFavicon)
	if stream := a.PreviewStream(); stream != nil {
		mux.HandleFunc("/mjpeg/preview", func(w http.ResponseWriter, r *http.Request) {
			if !a.requireAuth(w) {
				return
			}
			stream.Handler(w, r)
		})
	}

	mux.Handle("/", staticFileServer(staticDir))
}

type loginRequest struct {
	Password string `json:"password"`
}

type stateResponse struct {
	Authenticated bool         `json:"authenticated"`
	RequiresAuth  bool         `json:"requiresAuth"`
	Revision      uint64       `json:"revision"`
	Preview       bool         `json:"preview"`
	View          *editor.View `json:"view,omitempty"`
}

type configRequest struct {
	PreviewIntervalMs *int `json:"previewIntervalMs,omitempty"`
	PreviewQuality    *int `json:"previewQuality,omitempty"`
	Reset             bool `json:"reset,omitempty"`
}

type configResponse struct {
	Applied           bool `json:"applied"`
	PreviewIntervalMs int  `json:"previewIntervalMs"`
	PreviewQuality    int  `json:"previewQuality"`
}

// handleLogin authenticates the session.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !a.session.Authenticate(req.Password) {
		log.Printf("auth: login rejected from %s", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

// handleLogout clears authentication state.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.session.Logout()
	writeJSON(w, map[string]bool{"ok": true})
}

// handleState returns the session flags and, once authenticated, the editor view.
func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := a.session.Snapshot()
	resp := stateResponse{
		Authenticated: snap.Authenticated,
		RequiresAuth:  snap.RequiresAuth,
		Revision:      snap.Revision,
		Preview:       a.renderer != nil,
	}
	if snap.Authenticated {
		resp.View = &snap.View
	}
	writeJSON(w, resp)
}

// handleOutput returns the records a commit would emit now.
func (a *App) handleOutput(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	writeJSON(w, a.session.Output())
}

// handleConfig reads or updates the runtime preview settings.
func (a *App) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	if r.Method == http.MethodGet {
		a.mu.Lock()
		resp := configResponse{PreviewIntervalMs: a.cfg.PreviewIntervalMs, PreviewQuality: a.cfg.PreviewQuality}
		a.mu.Unlock()
		writeJSON(w, resp)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	interval, quality := a.cfg.PreviewIntervalMs, a.cfg.PreviewQuality
	if req.Reset {
		interval, quality = a.defaults.intervalMs, a.defaults.quality
	}
	if req.PreviewIntervalMs != nil {
		interval = *req.PreviewIntervalMs
	}
	if req.PreviewQuality != nil {
		quality = *req.PreviewQuality
	}
	if interval < minPreviewIntervalMs || interval > maxPreviewIntervalMs || quality <= 0 || quality > 100 {
		a.mu.Unlock()
		http.Error(w, "previewIntervalMs must be 20-5000 and previewQuality 1-100", http.StatusBadRequest)
		return
	}
	a.cfg.PreviewIntervalMs, a.cfg.PreviewQuality = interval, quality
	a.mu.Unlock()

	if s := a.previewStream; s != nil {
		s.SetMinInterval(time.Duration(interval) * time.Millisecond)
		s.SetQuality(quality)
	}
	writeJSON(w, configResponse{Applied: true, PreviewIntervalMs: interval, PreviewQuality: quality})
}

// handlePreviewPNG renders the current view as a PNG.
func (a *App) handlePreviewPNG(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	if a.renderer == nil {
		http.Error(w, "preview disabled", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := preview.EncodePNG(&buf, a.renderer.Render(a.session.View())); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleReport exports the current annotations as a PDF page.
func (a *App) handleReport(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	snap := a.session.Snapshot()
	var bg image.Image
	if a.renderer != nil {
		bg = a.renderer.Background()
	}
	title := "annotations"
	if a.imagePath != "" {
		title = filepath.Base(a.imagePath)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, title, snap.View, snap.Output, bg); err != nil {
		log.Printf("report: %v", err)
		http.Error(w, "report failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="annotations.pdf"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleImage serves the source image for clients that draw their own overlay.
func (a *App) handleImage(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	if a.imagePath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, a.imagePath)
}

// requireAuth returns false and writes an error if the session is not authenticated.
func (a *App) requireAuth(w http.ResponseWriter) bool {
	if !a.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// staticFileServer returns a handler for static assets, preferring disk then embed.
func staticFileServer(staticDir string) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	embedded, err := web.StaticFS()
	if err != nil {
		log.Printf("static assets unavailable: %v", err)
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(embedded))
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
