package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// getMappings returns the custom mapping document, or the whole live mapping with ?all=true.
func (s *Server) getMappings(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	writeJSON(w, http.StatusOK, documentResponse{Success: true, Data: s.deps.Mappings.Export(!all)})
}

// putMappings replaces the custom mappings with a flat JSON object.
func (s *Server) putMappings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, documentResponse{Message: "Could not read body"})
		return
	}
	m, err := sites.DecodeMappings(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, documentResponse{Message: err.Error()})
		return
	}

	if _, err := s.deps.Mappings.Update(r.Context(), m); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, mappings.ErrIncompleteMapping) {
			code = http.StatusBadRequest
		}
		writeJSON(w, code, documentResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Success: true, Message: "Mappings saved"})
}

func (s *Server) listSites(w http.ResponseWriter, r *http.Request) {
	entries := s.deps.Mappings.Dictionary().Entries()
	writeJSON(w, http.StatusOK, listSitesResponse{Sites: entries, Total: len(entries)})
}

// supplySites answers an UNMAPPED_SITES conflict. The client retries /format afterwards.
func (s *Server) supplySites(w http.ResponseWriter, r *http.Request) {
	var req supplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if len(req.Mappings) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "mappings is required")
		return
	}

	saved, err := s.deps.Mappings.Supply(r.Context(), req.Mappings)
	switch {
	case errors.Is(err, mappings.ErrIncompleteMapping):
		writeError(w, http.StatusBadRequest, "INCOMPLETE_MAPPING", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Saved: saved, Status: s.deps.Mappings.Status()})
}
