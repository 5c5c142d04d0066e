package requirements

import (
	"context"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/pkg/lifecycle"
	"github.com/vigil-labs/vigil/pkg/pagination"
)

// System defines the public contract for requirement domain operations.
type System interface {
	Handler() *Handler

	// Start binds background validation runs to the process lifecycle.
	Start(lc *lifecycle.Coordinator) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Requirement], error)

	Find(ctx context.Context, id uuid.UUID) (*Requirement, error)
	Create(ctx context.Context, cmd CreateCommand) (*Requirement, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Requirement, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// LinkEvidence appends a document to the requirement's ordered
	// evidence set.
	LinkEvidence(ctx context.Context, id, documentID uuid.UUID) error
	UnlinkEvidence(ctx context.Context, id, documentID uuid.UUID) error

	// Validate accepts a validation request and runs it in the background.
	// Returns ErrNoEvidence without calling the inference service when the
	// requirement has no linked evidence.
	Validate(ctx context.Context, id uuid.UUID) error
}
