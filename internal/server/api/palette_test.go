package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/airsketch/internal/palette"
	"github.com/ayusman/airsketch/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

type recordingSink struct {
	mu    sync.Mutex
	calls [][]palette.Entry
}

func (s *recordingSink) SetPalette(ctx context.Context, entries []palette.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, entries)
	return nil
}

func (s *recordingSink) last() []palette.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPaletteHandler_List(t *testing.T) {
	h := NewPaletteHandler(newTestStore(t), nil)

	rec := do(t, h, http.MethodGet, "/api/palette", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var resp paletteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != len(palette.DefaultColors) {
		t.Errorf("expected %d default swatches, got %d", len(palette.DefaultColors), len(resp.Entries))
	}
}

func TestPaletteHandler_Create(t *testing.T) {
	sink := &recordingSink{}
	h := NewPaletteHandler(newTestStore(t), sink)

	body := map[string]any{
		"color": "#A855F7",
		"box":   map[string]float64{"left": 400, "top": 20, "right": 440, "bottom": 60},
	}
	rec := do(t, h, http.MethodPost, "/api/palette", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created palette.Entry
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" || created.Color != "#a855f7" {
		t.Errorf("unexpected swatch: %+v", created)
	}

	applied := sink.last()
	if len(applied) != len(palette.DefaultColors)+1 {
		t.Fatalf("board got %d swatches, want %d", len(applied), len(palette.DefaultColors)+1)
	}
	if applied[len(applied)-1].ID != created.ID {
		t.Error("new swatch should be last on the board")
	}
}

func TestPaletteHandler_Create_BadRequests(t *testing.T) {
	h := NewPaletteHandler(newTestStore(t), nil)

	tests := []struct {
		name string
		body any
	}{
		{"invalid json", "{not json"},
		{"missing color", map[string]any{"box": map[string]float64{"right": 10, "bottom": 10}}},
		{"invalid color", map[string]any{"color": "blue-ish"}},
		{"inverted box", map[string]any{"color": "#000000", "box": map[string]float64{"left": 10, "right": 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/palette", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestPaletteHandler_Replace(t *testing.T) {
	sink := &recordingSink{}
	h := NewPaletteHandler(newTestStore(t), sink)

	body := replacePaletteRequest{Entries: []palette.Entry{
		{Color: "#000000", Box: palette.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}},
		{Color: "#ff0000", Box: palette.Rect{Left: 20, Top: 0, Right: 30, Bottom: 10}},
	}}
	rec := do(t, h, http.MethodPut, "/api/palette", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp paletteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != 2 || resp.Entries[1].Color != "#ff0000" {
		t.Errorf("unexpected palette: %+v", resp.Entries)
	}
	if len(sink.last()) != 2 {
		t.Errorf("board got %d swatches, want 2", len(sink.last()))
	}
}

func TestPaletteHandler_GetAndDelete(t *testing.T) {
	s := newTestStore(t)
	sink := &recordingSink{}
	h := NewPaletteHandler(s, sink)

	entries, _ := s.Palette().List()
	id := entries[0].ID

	rec := do(t, h, http.MethodGet, "/api/palette/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/api/palette/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if len(sink.last()) != len(entries)-1 {
		t.Errorf("board got %d swatches after delete, want %d", len(sink.last()), len(entries)-1)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = do(t, h, method, "/api/palette/"+id, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete: expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestPaletteHandler_MethodNotAllowed(t *testing.T) {
	h := NewPaletteHandler(newTestStore(t), nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/palette"},
		{http.MethodPatch, "/api/palette"},
		{http.MethodPost, "/api/palette/some-id"},
		{http.MethodPut, "/api/palette/some-id"},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
