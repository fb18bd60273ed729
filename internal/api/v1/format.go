package v1

import (
	"errors"
	"net/http"

	"github.com/vmunix/vidfmt/pkg/filename"
)

func (s *Server) format(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	opts := s.deps.Format
	opts.AllowUnmapped = opts.AllowUnmapped || req.AllowUnmapped
	res, err := filename.New(s.deps.Mappings.Dictionary(), opts).FormatEntries(req.Input)

	var esc *filename.EscalationError
	switch {
	case errors.As(err, &esc):
		writeJSON(w, http.StatusConflict, unmappedResponse{
			Error:       esc.Error(),
			Code:        "UNMAPPED_SITES",
			Unmapped:    esc.Keys,
			Suggestions: esc.Suggestions,
			Input:       esc.Input,
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "FORMAT_ERROR", err.Error())
		return
	}

	resp := formatResponse{Output: res.String(), Lines: res.Lines, Unmapped: res.Unmapped}
	if len(res.Lines) == 0 {
		resp.Output = filename.NoValidInput
		resp.Lines = []filename.Line{}
	}
	writeJSON(w, http.StatusOK, resp)
}
