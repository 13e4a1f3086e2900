// Package api implements the HTTP API server for medannot: REST access to
// stored annotations, server-side overlay rendering, and a WebSocket
// editing session that drives an editor per connection.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/persist"
)

// Server is the medannot HTTP API server.
type Server struct {
	addr       string
	repo       persist.Repository
	editorOpts []editor.Option
	mux        *http.ServeMux
	server     *http.Server
}

// New creates a server on addr backed by repo. editorOpts configure the
// editor created for every WebSocket session.
func New(addr string, repo persist.Repository, editorOpts ...editor.Option) *Server {
	s := &Server{addr: addr, repo: repo, editorOpts: editorOpts}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/images", s.handleListImages)
	s.mux.HandleFunc("GET /api/images/{id}/annotations", s.handleGetAnnotations)
	s.mux.HandleFunc("PUT /api/images/{id}/annotations", s.handlePutAnnotations)
	s.mux.HandleFunc("DELETE /api/images/{id}/annotations", s.handleDeleteAnnotations)
	s.mux.HandleFunc("GET /api/images/{id}/check", s.handleCheck)
	s.mux.HandleFunc("POST /api/render", s.handleRender)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	logging.Logger().Info("medannot API server listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.Logger().Warn("json encode", "err", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
