// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vmunix/vidfmt/pkg/sites"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the v1 API server.
type Server struct {
	deps   ServerDeps
	logger *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, logger: logger.With("component", "api")}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Formatting
	mux.HandleFunc("POST /api/v1/format", s.requireAPIKey(s.format))

	// Mapping document
	mux.HandleFunc("GET /api/v1/mappings", s.requireAPIKey(s.getMappings))
	mux.HandleFunc("POST /api/v1/mappings", s.requireAPIKey(s.putMappings))

	// Dictionary
	mux.HandleFunc("GET /api/v1/sites", s.requireAPIKey(s.listSites))
	mux.HandleFunc("POST /api/v1/sites/supply", s.requireAPIKey(s.supplySites))

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return logRequests(mux, s.logger)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	dict := s.deps.Mappings.Dictionary()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "ok",
		Version:     s.deps.Version,
		Persistence: s.deps.Mappings.Status(),
		Builtin:     len(sites.Builtin()),
		Custom:      len(dict.Custom()),
		Total:       dict.Len(),
	})
}
