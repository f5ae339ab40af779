package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/palette"
	"github.com/ayusman/airsketch/internal/store"
)

// PaletteSink is told about every palette change so hover tests use it.
type PaletteSink interface {
	SetPalette(ctx context.Context, entries []palette.Entry) error
}

// PaletteHandler handles HTTP requests for palette swatches.
type PaletteHandler struct {
	store *store.Store
	sink  PaletteSink
}

// NewPaletteHandler creates a PaletteHandler. sink may be nil.
func NewPaletteHandler(s *store.Store, sink PaletteSink) *PaletteHandler {
	return &PaletteHandler{store: s, sink: sink}
}

// ServeHTTP routes /api/palette and /api/palette/{id}.
func (h *PaletteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/palette")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		case http.MethodPut:
			h.replace(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type paletteResponse struct {
	Entries []palette.Entry `json:"entries"`
}

type replacePaletteRequest struct {
	Entries []palette.Entry `json:"entries"`
}

// storeError maps validation failures to 400 and the rest to 500.
func storeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Swatch not found")
	case errors.Is(err, canvas.ErrInvalidColor), errors.Is(err, store.ErrInvalidBox):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// sync pushes the stored palette to the board.
func (h *PaletteHandler) sync(r *http.Request) []palette.Entry {
	entries, err := h.store.Palette().List()
	if err != nil {
		log.Printf("Failed to reload palette: %v", err)
		return nil
	}
	if h.sink != nil {
		if err := h.sink.SetPalette(r.Context(), entries); err != nil {
			log.Printf("Failed to apply palette: %v", err)
		}
	}
	return entries
}

// list handles GET /api/palette.
func (h *PaletteHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Palette().List()
	if err != nil {
		storeError(w, err, "list palette")
		return
	}
	writeJSON(w, http.StatusOK, paletteResponse{Entries: entries})
}

// get handles GET /api/palette/{id}.
func (h *PaletteHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.store.Palette().GetByID(id)
	if err != nil {
		storeError(w, err, "get swatch")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// create handles POST /api/palette and appends one swatch.
func (h *PaletteHandler) create(w http.ResponseWriter, r *http.Request) {
	var req palette.Entry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Color == "" {
		writeError(w, http.StatusBadRequest, "Color is required")
		return
	}

	entry, err := h.store.Palette().Create(req)
	if err != nil {
		storeError(w, err, "create swatch")
		return
	}
	h.sync(r)

	writeJSON(w, http.StatusCreated, entry)
}

// replace handles PUT /api/palette, swapping in a whole new palette.
func (h *PaletteHandler) replace(w http.ResponseWriter, r *http.Request) {
	var req replacePaletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.store.Palette().Replace(req.Entries); err != nil {
		storeError(w, err, "replace palette")
		return
	}
	entries := h.sync(r)
	if entries == nil {
		entries = []palette.Entry{}
	}

	writeJSON(w, http.StatusOK, paletteResponse{Entries: entries})
}

// delete handles DELETE /api/palette/{id}.
func (h *PaletteHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Palette().Delete(id); err != nil {
		storeError(w, err, "delete swatch")
		return
	}
	h.sync(r)

	w.WriteHeader(http.StatusNoContent)
}
