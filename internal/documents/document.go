// Package documents implements the analyzable-unit domain: upload and
// registration of regulatory documents and assistant transcripts, their blob
// storage references, and the processing lifecycle that carries a unit from
// pending through analysis to a persisted result or failure.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/internal/analysis"
)

// Kind distinguishes uploaded regulatory documents from persisted assistant
// transcripts. Both move through the same processing lifecycle.
type Kind string

const (
	KindDocument   Kind = "document"
	KindTranscript Kind = "transcript"
)

// Valid reports whether the kind is recognized.
func (k Kind) Valid() bool {
	return k == KindDocument || k == KindTranscript
}

// Document represents an analyzable unit: its metadata, blob storage
// reference, and processing state. AnalysisResult is populated on completed
// runs; ErrorMessage on failed ones. Both fields are written only through
// lifecycle transitions, never directly by request handlers.
type Document struct {
	ID               uuid.UUID                `json:"id"`
	Kind             Kind                     `json:"kind"`
	Filename         string                   `json:"filename"`
	ContentType      string                   `json:"content_type"`
	SizeBytes        int64                    `json:"size_bytes"`
	PageCount        *int                     `json:"page_count"`
	StorageKey       string                   `json:"storage_key"`
	ProcessingStatus Status                   `json:"processing_status"`
	ErrorMessage     *string                  `json:"error_message"`
	AnalysisResult   *analysis.AnalysisResult `json:"analysis_result"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new unit.
// Data holds the raw file bytes. PageCount is optional and may be extracted
// by the caller for PDFs; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Kind        Kind
	PageCount   *int
}

// StatusSnapshot is the lifecycle view of a unit returned by the status
// endpoint: current state plus whichever of result summary or error applies.
type StatusSnapshot struct {
	ID               uuid.UUID `json:"id"`
	ProcessingStatus Status    `json:"processing_status"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	TotalFindings    *int      `json:"total_findings,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}
