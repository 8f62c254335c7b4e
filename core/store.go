package core

import (
	"context"
	"encoding/json"
	"time"
)

// AnalysisRecord is the audit entry written once per completed request.
// ID is generated server side; RequestID carries the caller's correlation ID
// and is not unique.
type AnalysisRecord struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Task      Task            `json:"task"`
	Label     string          `json:"label"` // Raw router classification
	Note      string          `json:"note"`
	HasImage  bool            `json:"has_image"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"duration"`
}

// AnalysisStore persists analysis records for auditing. Records are
// append-only: Save fails with ErrAlreadyExists for a known ID.
type AnalysisStore interface {
	Save(ctx context.Context, rec AnalysisRecord) error
	Get(ctx context.Context, id string) (AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]AnalysisRecord, error)
}
