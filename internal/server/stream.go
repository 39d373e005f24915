package server

import (
	"fmt"
	"net/http"
	"sync"
)

// Feed fans the latest JPEG frame out to any number of MJPEG clients. The
// frame loop publishes into it; slow clients skip frames instead of holding
// the loop back.
type Feed struct {
	mu     sync.Mutex
	latest []byte
	subs   map[chan []byte]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[chan []byte]struct{})}
}

// Publish replaces the latest frame and offers it to every subscriber.
func (f *Feed) Publish(jpeg []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = jpeg
	for ch := range f.subs {
		select {
		case ch <- jpeg:
		default:
		}
	}
}

// Latest returns the most recent frame, or nil before the first publish.
func (f *Feed) Latest() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

// Subscribe registers a subscriber. The returned function unsubscribes.
func (f *Feed) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	if f.latest != nil {
		ch <- f.latest
	}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}
}

// Subscribers returns the number of connected clients.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// StreamHandler serves a Feed as an MJPEG stream.
type StreamHandler struct {
	feed *Feed
}

// NewStreamHandler creates a new StreamHandler for feed.
func NewStreamHandler(feed *Feed) *StreamHandler {
	return &StreamHandler{feed: feed}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	frames, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case jpeg := <-frames:
			if err := writePart(w, jpeg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
