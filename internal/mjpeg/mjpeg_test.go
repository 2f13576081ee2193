package mjpeg

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"sync"
	"testing"
	"time"
)

// threadSafeRecorder is a minimal http.ResponseWriter + http.Flusher that is safe to use across goroutines.
type threadSafeRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
}

// Header returns the response headers.
func (r *threadSafeRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write appends bytes to the response body.
func (r *threadSafeRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// WriteHeader ignores the status code.
func (r *threadSafeRecorder) WriteHeader(int) {}

// Flush implements http.Flusher.
func (r *threadSafeRecorder) Flush() {}

// body returns a copy of the current body.
func (r *threadSafeRecorder) body() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// frame encodes a 2x2 image of c.
func frame(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.Set(i%2, i/2, c)
	}
	jpg, err := EncodeJPEG(img, 80)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return jpg
}

// TestEncodeJPEG verifies the output decodes with the source size.
func TestEncodeJPEG(t *testing.T) {
	t.Parallel()
	jpg := frame(t, color.White)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(jpg))
	if err != nil || cfg.Width != 2 || cfg.Height != 2 {
		t.Fatalf("expected 2x2 jpeg, got %+v %v", cfg, err)
	}
}

// TestStreamHandlerWritesFrame verifies a subscriber receives the latest frame as a multipart part.
func TestStreamHandlerWritesFrame(t *testing.T) {
	t.Parallel()

	s := NewStream(0, 70)
	jpg := frame(t, color.RGBA{G: 255, A: 255})
	s.Publish(jpg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example/mjpeg/preview", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	rec := &threadSafeRecorder{}
	done := make(chan struct{})
	go func() {
		s.Handler(rec, req)
		close(done)
	}()

	deadline := time.After(time.Second)
	for !bytes.Contains(rec.body(), jpg) {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("timed out waiting for frame, body=%q", rec.body())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary="+boundary {
		t.Fatalf("unexpected content-type: %q", ct)
	}
	if !bytes.Contains(rec.body(), []byte("Content-Type: image/jpeg")) {
		t.Fatalf("expected jpeg part header")
	}
}

// TestStreamPublishCoalesces verifies throttled frames are delivered once the interval passes.
func TestStreamPublishCoalesces(t *testing.T) {
	t.Parallel()

	s := NewStream(100*time.Millisecond, 70)
	defer s.Close()
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	a := frame(t, color.RGBA{B: 255, A: 255})
	b := frame(t, color.RGBA{R: 255, G: 255, A: 255})
	c := frame(t, color.Black)

	s.Publish(a)
	select {
	case got := <-ch:
		if !bytes.Equal(got, a) {
			t.Fatalf("expected first publish to broadcast immediately")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for first publish")
	}

	s.Publish(b)
	s.Publish(c)
	select {
	case <-ch:
		t.Fatal("expected throttled publish to wait")
	case <-time.After(20 * time.Millisecond):
	}
	select {
	case got := <-ch:
		if !bytes.Equal(got, c) {
			t.Fatalf("expected the newest frame after the interval")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for trailing frame")
	}
	if !bytes.Equal(s.Last(), c) {
		t.Fatal("expected last frame to be the newest")
	}
}

// TestStreamPublishImage verifies images are encoded before publishing.
func TestStreamPublishImage(t *testing.T) {
	t.Parallel()
	s := NewStream(0, 0)
	if err := s.PublishImage(image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("PublishImage failed: %v", err)
	}
	if len(s.Last()) == 0 {
		t.Fatal("expected a stored frame")
	}
}

// TestStreamPublishConcurrent churns publishers and subscribers to catch races under -race.
func TestStreamPublishConcurrent(t *testing.T) {
	t.Parallel()

	s := NewStream(time.Millisecond, 70)
	defer s.Close()
	jpg := frame(t, color.Gray{Y: 40})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 300; j++ {
				s.Publish(jpg)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ch := s.subscribe()
				select {
				case <-ch:
				default:
				}
				s.unsubscribe(ch)
			}
		}()
	}
	wg.Wait()
}
