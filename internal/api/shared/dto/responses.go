package dto

import (
	"github.com/chapmanwm/printsync-web/internal/usage"
)

// IngestResponse acknowledges an ingestion call.
type IngestResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// FilamentUsageResponse is the per-user filament report.
type FilamentUsageResponse struct {
	Summary      []usage.UserSummary `json:"summary"`
	AllFilaments []string            `json:"allFilaments"`
}

// CoverUploadResponse carries the public URL of a stored cover image.
type CoverUploadResponse struct {
	URL string `json:"url"`
}

// InitResponse acknowledges a schema migration call.
type InitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
