// Package requirements implements examiner document requests and their
// evidence-based validation. A requirement links an ordered set of uploaded
// documents as evidence; validation judges the full evidentiary set in one
// inference call and overwrites the stored verdict atomically.
package requirements

import (
	"time"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/internal/analysis"
)

// Requirement is a single item from an examiner's request list together
// with its latest validation verdict.
type Requirement struct {
	ID                uuid.UUID                   `json:"id"`
	Title             string                      `json:"title"`
	Description       string                      `json:"description"`
	ValidationResults *analysis.ValidationVerdict `json:"validation_results"`
	LastValidatedAt   *time.Time                  `json:"last_validated_at"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`

	// Evidence is populated on single-requirement reads, ordered by link
	// position.
	Evidence []EvidenceLink `json:"evidence,omitempty"`
}

// EvidenceLink associates a document with a requirement at a stable position.
type EvidenceLink struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Position   int       `json:"position"`
}

// CreateCommand carries the data for a new requirement.
type CreateCommand struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateCommand carries a partial update. Nil fields are left unchanged.
type UpdateCommand struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
