package requirements

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vigil-labs/vigil/internal/analysis"
	"github.com/vigil-labs/vigil/internal/documents"
	"github.com/vigil-labs/vigil/pkg/lifecycle"
	"github.com/vigil-labs/vigil/pkg/pagination"
	"github.com/vigil-labs/vigil/pkg/query"
	"github.com/vigil-labs/vigil/pkg/repository"
)

// evidenceConcurrency bounds parallel evidence extraction per validation run.
const evidenceConcurrency = 4

type repo struct {
	db         *sql.DB
	docs       documents.System
	analyzer   *analysis.Analyzer
	logger     *slog.Logger
	pagination pagination.Config
	timeout    time.Duration
	lifetime   context.Context
}

// New creates a requirement repository implementing the System interface.
// timeout bounds each background validation run.
func New(
	db *sql.DB,
	docs documents.System,
	analyzer *analysis.Analyzer,
	timeout time.Duration,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		docs:       docs,
		analyzer:   analyzer,
		logger:     logger.With("system", "requirements"),
		pagination: pagination,
		timeout:    timeout,
		lifetime:   context.Background(),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	r.lifetime = lc.Context()
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Requirement], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count requirements: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	reqs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRequirement)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}

	result := pagination.NewPageResult(reqs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Requirement, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	req, err := repository.QueryOne(ctx, r.db, q, args, scanRequirement)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	evidence, err := r.evidence(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Evidence = evidence

	return &req, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Requirement, error) {
	if cmd.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalid)
	}

	q := `
		INSERT INTO requirements(id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, validation_results, last_validated_at, created_at, updated_at`

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Requirement, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), cmd.Title, cmd.Description}, scanRequirement)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("requirement created", "id", req.ID, "title", req.Title)
	return &req, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Requirement, error) {
	if cmd.Title == nil && cmd.Description == nil {
		return r.Find(ctx, id)
	}
	if cmd.Description != nil && *cmd.Description == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", ErrInvalid)
	}

	q := `
		UPDATE requirements
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			updated_at = now()
		WHERE id = $1
		RETURNING id, title, description, validation_results, last_validated_at, created_at, updated_at`

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Requirement, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, cmd.Title, cmd.Description}, scanRequirement)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &req, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM requirement_evidence WHERE requirement_id = $1", id); err != nil {
			return struct{}{}, err
		}
		if err := repository.ExecExpectOne(ctx, tx,
			"DELETE FROM requirements WHERE id = $1", id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("requirement deleted", "id", id)
	return nil
}

func (r *repo) LinkEvidence(ctx context.Context, id, documentID uuid.UUID) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}
	if _, err := r.docs.Find(ctx, documentID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return ErrEvidenceNotFound
		}
		return err
	}

	q := `
		INSERT INTO requirement_evidence(requirement_id, document_id, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1
		FROM requirement_evidence
		WHERE requirement_id = $1`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(ctx, tx, q, id, documentID); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrEvidenceDuplicate)
	}

	r.logger.Info("evidence linked", "requirement", id, "document", documentID)
	return nil
}

func (r *repo) UnlinkEvidence(ctx context.Context, id, documentID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM requirement_evidence WHERE requirement_id = $1 AND document_id = $2",
		id, documentID,
	)
	if err != nil {
		return repository.MapError(err, ErrEvidenceNotFound, ErrDuplicate)
	}

	r.logger.Info("evidence unlinked", "requirement", id, "document", documentID)
	return nil
}

// Validate checks the request synchronously and runs the inference-bound
// judgment in the background. Zero linked evidence rejects the request
// before any inference call is made.
func (r *repo) Validate(ctx context.Context, id uuid.UUID) error {
	req, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if len(req.Evidence) == 0 {
		return ErrNoEvidence
	}

	go r.run(req)
	return nil
}

func (r *repo) evidence(ctx context.Context, id uuid.UUID) ([]EvidenceLink, error) {
	q, args := query.NewBuilder(evidenceProjection, evidenceSort).
		WhereEquals("e.requirement_id", id).
		Build()

	links, err := repository.QueryMany(ctx, r.db, q, args, scanEvidenceLink)
	if err != nil {
		return nil, fmt.Errorf("query evidence links: %w", err)
	}
	return links, nil
}

// run gathers evidence text concurrently, judges the full set in a single
// inference call, and overwrites the stored verdict atomically. Failures are
// logged and leave the prior verdict in place.
func (r *repo) run(req *Requirement) {
	ctx, cancel := context.WithTimeout(r.lifetime, r.timeout)
	defer cancel()

	evidence := make([]analysis.EvidenceText, len(req.Evidence))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evidenceConcurrency)
	for i, link := range req.Evidence {
		g.Go(func() error {
			text, err := r.docs.Content(gctx, link.DocumentID)
			if err != nil {
				return fmt.Errorf("evidence %s: %w", link.DocumentID, err)
			}
			evidence[i] = analysis.EvidenceText{
				DocumentID: link.DocumentID.String(),
				Name:       link.Filename,
				Text:       text,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("validation aborted, evidence unavailable", "requirement", req.ID, "error", err)
		return
	}

	verdict, err := r.analyzer.ValidateRequirement(ctx, req.Description, evidence)
	if err != nil {
		r.logger.Error("validation failed", "requirement", req.ID, "error", err)
		return
	}

	if err := r.storeVerdict(req.ID, verdict); err != nil {
		r.logger.Error("failed to persist verdict", "requirement", req.ID, "error", err)
		return
	}

	r.logger.Info("requirement validated",
		"requirement", req.ID,
		"status", verdict.Status,
		"confidence", verdict.Confidence)
}

func (r *repo) storeVerdict(id uuid.UUID, verdict *analysis.ValidationVerdict) error {
	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE requirements
		 SET validation_results = $2, last_validated_at = now(), updated_at = now()
		 WHERE id = $1`,
		id, payload,
	)
}
