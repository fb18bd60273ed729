package v1

import (
	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/pkg/filename"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// formatRequest is the body of POST /format.
type formatRequest struct {
	Input         string `json:"input"`
	AllowUnmapped bool   `json:"allow_unmapped,omitempty"`
}

// formatResponse is the response for POST /format.
type formatResponse struct {
	Output   string          `json:"output"`
	Lines    []filename.Line `json:"lines"`
	Unmapped []string        `json:"unmapped,omitempty"`
}

// unmappedResponse is the 409 body returned while site keys lack display names.
type unmappedResponse struct {
	Error       string              `json:"error"`
	Code        string              `json:"code"`
	Unmapped    []string            `json:"unmapped"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
	Input       string              `json:"input"`
}

// documentResponse is the document-store envelope used by /mappings.
type documentResponse struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
}

// listSitesResponse is the response for GET /sites.
type listSitesResponse struct {
	Sites []sites.Entry `json:"sites"`
	Total int           `json:"total"`
}

// supplyRequest is the body of POST /sites/supply.
type supplyRequest struct {
	Mappings map[string]string `json:"mappings"`
}

// saveResponse reports where a change was persisted.
type saveResponse struct {
	Saved  mappings.SaveResult `json:"saved"`
	Status mappings.Status     `json:"status"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status      string          `json:"status"`
	Version     string          `json:"version"`
	Persistence mappings.Status `json:"persistence"`
	Builtin     int             `json:"builtin"`
	Custom      int             `json:"custom"`
	Total       int             `json:"total"`
}
