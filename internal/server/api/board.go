package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/airsketch/internal/board"
	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/export"
)

// Board is the running board the handler drives.
type Board interface {
	Snapshot(ctx context.Context) (board.Frame, error)
	Clear(ctx context.Context) error
	SelectColor(ctx context.Context, c canvas.Color) (int, error)
	Resize(ctx context.Context, width, height float64) error
}

// BoardHandler handles HTTP requests under /api/board.
type BoardHandler struct {
	board Board
}

// NewBoardHandler creates a BoardHandler for b.
func NewBoardHandler(b Board) *BoardHandler {
	return &BoardHandler{board: b}
}

// ServeHTTP routes the board endpoints.
func (h *BoardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/board")
	path = strings.TrimPrefix(path, "/")

	route := func(method string, fn http.HandlerFunc) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}

	switch path {
	case "":
		route(http.MethodGet, h.snapshot)
	case "clear":
		route(http.MethodPost, h.clear)
	case "color":
		route(http.MethodPost, h.color)
	case "surface":
		route(http.MethodPut, h.surface)
	case "export.pdf":
		route(http.MethodGet, h.exportPDF)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type colorRequest struct {
	Color string `json:"color"`
}

type colorResponse struct {
	Color     canvas.Color `json:"color"`
	Highlight int          `json:"highlight"`
}

type surfaceRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// boardError maps context and run-state failures to 503.
func boardError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusServiceUnavailable, "Board is busy")
		return
	}
	writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("Failed to %s: %v", action, err))
}

// snapshot handles GET /api/board.
func (h *BoardHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	frame, err := h.board.Snapshot(r.Context())
	if err != nil {
		boardError(w, err, "read board")
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// clear handles POST /api/board/clear.
func (h *BoardHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Clear(r.Context()); err != nil {
		boardError(w, err, "clear board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// color handles POST /api/board/color.
func (h *BoardHandler) color(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := canvas.ParseColor(req.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid color")
		return
	}

	index, err := h.board.SelectColor(r.Context(), c)
	if err != nil {
		boardError(w, err, "select color")
		return
	}
	writeJSON(w, http.StatusOK, colorResponse{Color: c, Highlight: index})
}

// surface handles PUT /api/board/surface.
func (h *BoardHandler) surface(w http.ResponseWriter, r *http.Request) {
	var req surfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "Width and height must be positive")
		return
	}

	if err := h.board.Resize(r.Context(), req.Width, req.Height); err != nil {
		boardError(w, err, "resize board")
		return
	}
	writeJSON(w, http.StatusOK, board.Surface{Width: req.Width, Height: req.Height})
}

// exportPDF handles GET /api/board/export.pdf.
func (h *BoardHandler) exportPDF(w http.ResponseWriter, r *http.Request) {
	frame, err := h.board.Snapshot(r.Context())
	if err != nil {
		boardError(w, err, "read board")
		return
	}

	name := "airsketch-" + time.Now().Format("20060102-150405") + ".pdf"
	page := export.Page{
		Width:  frame.Surface.Width,
		Height: frame.Surface.Height,
		Title:  strings.TrimSuffix(name, ".pdf"),
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, page, frame.Strokes); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export board")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
