package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/pkg/lifecycle"
	"github.com/vigil-labs/vigil/pkg/pagination"
)

// System defines the public contract for document domain operations.
// Analyze and the lifecycle transitions behind it are the only writers of
// processing_status, analysis_result, and error_message.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Start binds background analysis runs to the process lifecycle so
	// in-flight work is cancelled on shutdown.
	Start(lc *lifecycle.Coordinator) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Analyze accepts an analysis request for the unit and runs the pipeline
	// in the background. Returns ErrAlreadyProcessing when a run is in
	// flight; a failed unit may be re-submitted.
	Analyze(ctx context.Context, id uuid.UUID) error

	// Status returns the lifecycle snapshot of a unit.
	Status(ctx context.Context, id uuid.UUID) (*StatusSnapshot, error)

	// Content downloads and extracts the plain text of a unit's blob.
	Content(ctx context.Context, id uuid.UUID) (string, error)
}
