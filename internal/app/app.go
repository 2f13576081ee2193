// Package app wires the session, control websocket, preview stream and HTTP routes together.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/frudas24/bboxedit/internal/config"
	"github.com/frudas24/bboxedit/internal/control"
	"github.com/frudas24/bboxedit/internal/editor"
	"github.com/frudas24/bboxedit/internal/mjpeg"
	"github.com/frudas24/bboxedit/internal/preview"
	"github.com/frudas24/bboxedit/internal/session"
	"github.com/frudas24/bboxedit/internal/task"
)

// previewDefaults keeps the startup preview settings so /api/config can reset to them.
type previewDefaults struct {
	intervalMs int
	quality    int
}

// App coordinates the HTTP API, the control websocket and the preview stream.
type App struct {
	mu            sync.Mutex
	cfg           config.Config
	defaults      previewDefaults
	session       *session.Session
	control       *control.Server
	renderer      *preview.Renderer
	previewStream *mjpeg.Stream
	imagePath     string
	dirty         chan struct{}
}

// New creates the application. renderer may be nil, which disables the preview routes.
func New(cfg config.Config, sess *session.Session, renderer *preview.Renderer, imagePath string, debug bool) (*App, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	a := &App{
		cfg: cfg,
		defaults: previewDefaults{
			intervalMs: cfg.PreviewIntervalMs,
			quality:    cfg.PreviewQuality,
		},
		session:   sess,
		control:   control.NewServer(sess, debug),
		renderer:  renderer,
		imagePath: imagePath,
		dirty:     make(chan struct{}, 1),
	}
	if renderer != nil {
		a.previewStream = mjpeg.NewStream(time.Duration(cfg.PreviewIntervalMs)*time.Millisecond, cfg.PreviewQuality)
		sess.OnChange(func(uint64, editor.View) { a.markDirty() })
	}
	return a, nil
}

// Run renders a preview frame after every state change until ctx is done.
func (a *App) Run(ctx context.Context) {
	if a.renderer == nil {
		return
	}
	defer a.previewStream.Close()
	a.markDirty()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.dirty:
			if err := a.previewStream.PublishImage(a.renderer.Render(a.session.View())); err != nil {
				log.Printf("preview: %v", err)
			}
		}
	}
}

// markDirty requests a preview render without blocking the dispatch path.
func (a *App) markDirty() {
	select {
	case a.dirty <- struct{}{}:
	default:
	}
}

// OutputSink returns the commit handler that persists emitted annotations to path.
func OutputSink(path string) func([]editor.Record) {
	return func(records []editor.Record) {
		if err := task.SaveOutput(path, records); err != nil {
			log.Printf("output: write %s: %v", path, err)
			return
		}
		log.Printf("output: %d annotations written to %s", len(records), path)
	}
}

// Control returns the control websocket handler.
func (a *App) Control() *control.Server {
	return a.control
}

// PreviewStream returns the MJPEG stream, or nil when previews are disabled.
func (a *App) PreviewStream() *mjpeg.Stream {
	return a.previewStream
}
