package server

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Preview keeps the latest camera frame as JPEG for MJPEG viewers. Frames
// are only encoded while someone is watching.
type Preview struct {
	viewers atomic.Int32

	mu      sync.Mutex
	jpeg    []byte
	updated chan struct{}
}

// NewPreview creates an empty preview.
func NewPreview() *Preview {
	return &Preview{updated: make(chan struct{})}
}

// Viewers returns the number of open streams.
func (p *Preview) Viewers() int {
	return int(p.viewers.Load())
}

// Publish encodes frame as the latest preview image.
func (p *Preview) Publish(frame *gocv.Mat) error {
	if p.Viewers() == 0 || frame == nil || frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return err
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	p.PublishJPEG(data)
	return nil
}

// PublishJPEG stores an already encoded image and wakes every viewer.
func (p *Preview) PublishJPEG(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = data
	close(p.updated)
	p.updated = make(chan struct{})
}

func (p *Preview) current() ([]byte, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.updated
}

// StreamHandler serves the preview as an MJPEG stream.
type StreamHandler struct {
	preview *Preview
}

// NewStreamHandler creates a new StreamHandler for the given preview.
func NewStreamHandler(preview *Preview) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.preview.viewers.Add(1)
	defer h.preview.viewers.Add(-1)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, next := h.preview.current()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-next:
		}

		var img []byte
		img, next = h.preview.current()
		if len(img) == 0 {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(img))
		if _, err := w.Write(img); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
