// Package main starts the bbox editor server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/frudas24/bboxedit/internal/app"
	"github.com/frudas24/bboxedit/internal/config"
	"github.com/frudas24/bboxedit/internal/discovery"
	"github.com/frudas24/bboxedit/internal/preview"
	"github.com/frudas24/bboxedit/internal/session"
	"github.com/frudas24/bboxedit/internal/task"
)

// run wires the application and blocks until shutdown.
func run(debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if debug {
		log.Printf("debug: enabled")
	}
	logStartup(cfg)

	tk, ed, err := task.Open(cfg.TaskPath, cfg.OutputPath, log.Printf)
	if err != nil {
		return err
	}
	scale := ed.Resize(float64(cfg.ViewportWidth))
	size := ed.ImageSize()
	log.Printf("task: %s %vx%v, %d labels, %d boxes, scale %.3f", cfg.TaskPath, size.W, size.H, len(tk.Labels), len(ed.Rects()), scale)
	ed.OnCommit(app.OutputSink(cfg.OutputPath))

	renderer := newRenderer(tk)
	sess := session.New(cfg.UIPassword, ed)
	appInstance, err := app.New(cfg, sess, renderer, tk.ImagePath(), debug)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux, "")
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go appInstance.Run(ctx)

	if cfg.MDNSEnabled {
		adv, err := advertise(cfg, tk)
		if err != nil {
			log.Printf("mdns: %v", err)
		} else {
			defer func() {
				if err := adv.Shutdown(); err != nil {
					log.Printf("mdns: shutdown: %v", err)
				}
			}()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRenderer builds the preview renderer. Preview is optional, so failures only log.
func newRenderer(tk *task.Task) *preview.Renderer {
	_, shown := tk.FitFactor()
	img, err := task.LoadImage(tk.ImagePath())
	if err != nil {
		log.Printf("preview: image unavailable (%v), using blank background", err)
		img = nil
	}
	renderer, err := preview.NewRenderer(img, shown)
	if err != nil {
		log.Printf("preview: disabled: %v", err)
		return nil
	}
	return renderer
}

// advertise announces the server over mDNS using the listen port.
func advertise(cfg config.Config, tk *task.Task) (*discovery.Advertiser, error) {
	port, err := discovery.ListenPort(cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(tk.Image), filepath.Ext(tk.Image))
	adv, err := discovery.Advertise(cfg.MDNSName, port, name)
	if err != nil {
		return nil, err
	}
	log.Printf("mdns: advertising %s on port %d", cfg.MDNSName, port)
	return adv, nil
}

// listEditors prints every editor that answers an mDNS query within timeout.
func listEditors(timeout time.Duration) error {
	found, err := discovery.Browse(timeout)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		log.Printf("discover: no editors found")
		return nil
	}
	for _, addr := range found {
		fmt.Printf("http://%s\n", addr)
	}
	return nil
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints startup checks and connection info.
func logStartup(cfg config.Config) {
	log.Printf("bboxedit starting")
	logEnvStatus(cfg)
	logListenStatus(cfg.ListenAddr)
}

// logEnvStatus reports whether a .env file was found and required values are set.
func logEnvStatus(cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		log.Printf("env check: ok (%s)", envPath)
	} else {
		log.Printf("env check: missing (%s)", envPath)
	}
	if cfg.PasswordMode {
		log.Printf("env UI_PASSWORD: set")
	} else {
		log.Printf("env PASSWORD_MODE: disabled (dev mode)")
	}
	if fileExists(cfg.TaskPath) {
		log.Printf("task check: ok (%s)", cfg.TaskPath)
	} else {
		log.Printf("task check: missing (%s)", cfg.TaskPath)
	}
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(addr string) {
	log.Printf("listen addr: %s", addr)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	log.Printf("local url: http://%s", net.JoinHostPort(host, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
