package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/ayusman/airsketch/internal/board"
	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/geom"
)

type fakeBoard struct {
	frame   board.Frame
	cleared int
	color   canvas.Color
	surface board.Surface
	err     error
}

func (b *fakeBoard) Snapshot(ctx context.Context) (board.Frame, error) {
	return b.frame, b.err
}

func (b *fakeBoard) Clear(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	b.cleared++
	return nil
}

func (b *fakeBoard) SelectColor(ctx context.Context, c canvas.Color) (int, error) {
	if b.err != nil {
		return -1, b.err
	}
	b.color = c
	if c == canvas.DefaultColor {
		return 0, nil
	}
	return -1, nil
}

func (b *fakeBoard) Resize(ctx context.Context, width, height float64) error {
	if b.err != nil {
		return b.err
	}
	b.surface = board.Surface{Width: width, Height: height}
	return nil
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{frame: board.Frame{
		Strokes: []canvas.Stroke{
			{ID: "s1", Color: canvas.DefaultColor, Points: []geom.Point{{X: 1, Y: 1}, {X: 50, Y: 60}}},
		},
		ActiveColor: canvas.DefaultColor,
		LineWidth:   canvas.LineWidth,
		Surface:     board.Surface{Width: 1280, Height: 720},
	}}
}

func TestBoardHandler_Snapshot(t *testing.T) {
	h := NewBoardHandler(newFakeBoard())

	rec := do(t, h, http.MethodGet, "/api/board", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var frame board.Frame
	if err := json.NewDecoder(rec.Body).Decode(&frame); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(frame.Strokes) != 1 || frame.Strokes[0].ID != "s1" {
		t.Errorf("unexpected strokes: %+v", frame.Strokes)
	}
	if frame.Surface.Width != 1280 {
		t.Errorf("surface = %+v", frame.Surface)
	}
}

func TestBoardHandler_Clear(t *testing.T) {
	b := newFakeBoard()
	h := NewBoardHandler(b)

	rec := do(t, h, http.MethodPost, "/api/board/clear", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if b.cleared != 1 {
		t.Errorf("Clear called %d times", b.cleared)
	}
}

func TestBoardHandler_Color(t *testing.T) {
	tests := []struct {
		name          string
		body          any
		wantStatus    int
		wantColor     canvas.Color
		wantHighlight int
	}{
		{"palette color", colorRequest{Color: "#38BDF8"}, http.StatusOK, canvas.DefaultColor, 0},
		{"free color", colorRequest{Color: "#123456"}, http.StatusOK, "#123456", -1},
		{"invalid color", colorRequest{Color: "teal-ish"}, http.StatusBadRequest, "", 0},
		{"invalid json", "{", http.StatusBadRequest, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBoard()
			rec := do(t, NewBoardHandler(b), http.MethodPost, "/api/board/color", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp colorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if b.color != tt.wantColor || resp.Color != tt.wantColor {
				t.Errorf("color = %s (response %s), want %s", b.color, resp.Color, tt.wantColor)
			}
			if resp.Highlight != tt.wantHighlight {
				t.Errorf("highlight = %d, want %d", resp.Highlight, tt.wantHighlight)
			}
		})
	}
}

func TestBoardHandler_Surface(t *testing.T) {
	b := newFakeBoard()
	h := NewBoardHandler(b)

	rec := do(t, h, http.MethodPut, "/api/board/surface", surfaceRequest{Width: 1024, Height: 768})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if b.surface != (board.Surface{Width: 1024, Height: 768}) {
		t.Errorf("surface = %+v", b.surface)
	}

	rec = do(t, h, http.MethodPut, "/api/board/surface", surfaceRequest{Width: 0, Height: 768})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero width: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestBoardHandler_ExportPDF(t *testing.T) {
	h := NewBoardHandler(newFakeBoard())

	rec := do(t, h, http.MethodGet, "/api/board/export.pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected Content-Type application/pdf, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestBoardHandler_Errors(t *testing.T) {
	b := newFakeBoard()
	b.err = errors.New("board is not running")
	h := NewBoardHandler(b)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/board"},
		{http.MethodPost, "/api/board/clear"},
		{http.MethodGet, "/api/board/export.pdf"},
	} {
		rec := do(t, h, tc.method, tc.path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusServiceUnavailable, rec.Code)
		}
	}
}

func TestBoardHandler_Routing(t *testing.T) {
	h := NewBoardHandler(newFakeBoard())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/board", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/board/clear", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/board/color", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/board/surface", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/board/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, nil)
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}
}
