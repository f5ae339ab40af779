// Package server provides the HTTP servers for the airsketch tracker and board.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/airsketch/internal/server/api"
	"github.com/ayusman/airsketch/internal/store"
)

// Board is what the board routes need from the running board.
type Board interface {
	api.Board
	api.PaletteSink
}

// Config holds the server configuration. Routes are registered for the
// parts that are set, so one type serves both binaries.
type Config struct {
	// Name identifies the binary in the health response.
	Name      string
	StaticDir string

	// Status adds fields to the health response. Optional.
	Status func() map[string]any

	// Tracker side.
	Feed    *Hub
	Preview *Preview

	// Board side.
	Board  Board
	Render *Hub
	Store  *store.Store
}

// Server represents the HTTP server for an airsketch process.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Feed != nil {
		s.mux.Handle("/ws", s.config.Feed)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.Render != nil {
		s.mux.Handle("/api/render", s.config.Render)
	}

	if s.config.Board != nil {
		boardHandler := api.NewBoardHandler(s.config.Board)
		s.mux.Handle("/api/board", boardHandler)
		s.mux.Handle("/api/board/", boardHandler)
	}

	// Palette edits need the store; the board is told when present
	if s.config.Store != nil {
		var sink api.PaletteSink
		if s.config.Board != nil {
			sink = s.config.Board
		}
		paletteHandler := api.NewPaletteHandler(s.config.Store, sink)
		s.mux.Handle("/api/palette", paletteHandler)
		s.mux.Handle("/api/palette/", paletteHandler)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Name != "" {
		response["service"] = s.config.Name
	}
	if s.config.Feed != nil {
		response["feed_clients"] = s.config.Feed.Clients()
	}
	if s.config.Render != nil {
		response["render_clients"] = s.config.Render.Clients()
	}
	if s.config.Status != nil {
		for k, v := range s.config.Status() {
			response[k] = v
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
