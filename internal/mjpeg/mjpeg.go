// Package mjpeg broadcasts rendered preview frames to browsers as a multipart MJPEG stream.
package mjpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	boundary       = "bboxframe"
	defaultQuality = 70
	resendEvery    = time.Second
)

// Stream fans JPEG frames out to connected HTTP clients. Publishes closer than
// the minimum interval are coalesced: the newest frame is delivered once the interval elapses.
type Stream struct {
	mu          sync.RWMutex
	subs        map[chan []byte]struct{}
	last        []byte
	quality     int
	minInterval time.Duration
	lastPush    time.Time
	trailing    *time.Timer
}

// NewStream creates a stream with a minimum publish interval and JPEG quality (1-100).
func NewStream(minInterval time.Duration, quality int) *Stream {
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	return &Stream{
		subs:        make(map[chan []byte]struct{}),
		quality:     quality,
		minInterval: minInterval,
	}
}

// SetMinInterval sets the minimum interval between delivered frames.
func (s *Stream) SetMinInterval(d time.Duration) {
	s.mu.Lock()
	s.minInterval = d
	s.mu.Unlock()
}

// SetQuality sets the JPEG quality used by PublishImage. Out-of-range values select the default.
func (s *Stream) SetQuality(q int) {
	if q <= 0 || q > 100 {
		q = defaultQuality
	}
	s.mu.Lock()
	s.quality = q
	s.mu.Unlock()
}

// PublishImage encodes img and publishes it.
func (s *Stream) PublishImage(img image.Image) error {
	s.mu.RLock()
	q := s.quality
	s.mu.RUnlock()
	jpg, err := EncodeJPEG(img, q)
	if err != nil {
		return err
	}
	s.Publish(jpg)
	return nil
}

// Publish hands a JPEG frame to every subscriber, subject to throttling.
func (s *Stream) Publish(jpg []byte) {
	frame := append([]byte(nil), jpg...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = frame
	wait := s.minInterval - time.Since(s.lastPush)
	if s.minInterval > 0 && wait > 0 {
		if s.trailing == nil {
			s.trailing = time.AfterFunc(wait, s.flush)
		}
		return
	}
	s.broadcastLocked()
}

// Last returns the most recent frame.
func (s *Stream) Last() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.last...)
}

// Close stops a pending trailing delivery.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trailing != nil {
		s.trailing.Stop()
		s.trailing = nil
	}
}

// flush delivers the coalesced frame.
func (s *Stream) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trailing = nil
	s.broadcastLocked()
}

// broadcastLocked replaces each subscriber's queued frame with the latest one.
func (s *Stream) broadcastLocked() {
	s.lastPush = time.Now()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.last:
		default:
		}
	}
}

// Handler serves the multipart stream until the client goes away.
func (s *Stream) Handler(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Browsers keep showing a part only until the next one starts; resend so late proxies stay warm.
	keep := time.NewTicker(resendEvery)
	defer keep.Stop()

	for {
		var frame []byte
		select {
		case <-r.Context().Done():
			return
		case frame = <-ch:
		case <-keep.C:
			frame = s.Last()
		}
		if len(frame) == 0 {
			continue
		}
		if err := writePart(w, frame); err != nil {
			return
		}
		fl.Flush()
	}
}

// EncodeJPEG encodes img at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// subscribe registers a client and primes it with the latest frame.
func (s *Stream) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[ch] = struct{}{}
	if len(s.last) > 0 {
		ch <- s.last
	}
	return ch
}

// unsubscribe removes a client.
func (s *Stream) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, ch)
}

// writePart writes one JPEG part of the multipart response.
func writePart(w http.ResponseWriter, jpg []byte) error {
	head := "\r\n--" + boundary + "\r\nContent-Type: image/jpeg\r\nContent-Length: " + strconv.Itoa(len(jpg)) + "\r\n\r\n"
	if _, err := w.Write([]byte(head)); err != nil {
		return err
	}
	_, err := w.Write(jpg)
	return err
}
