package documents

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/internal/analysis"
	"github.com/vigil-labs/vigil/internal/extraction"
	"github.com/vigil-labs/vigil/pkg/compensation"
	"github.com/vigil-labs/vigil/pkg/lifecycle"
	"github.com/vigil-labs/vigil/pkg/pagination"
	"github.com/vigil-labs/vigil/pkg/query"
	"github.com/vigil-labs/vigil/pkg/repository"
	"github.com/vigil-labs/vigil/pkg/storage"
)

// terminalWriteTimeout bounds the completed/failed write so an expired
// analysis context can still resolve the unit's state.
const terminalWriteTimeout = 10 * time.Second

type repo struct {
	db         *sql.DB
	exec       repository.Executor
	storage    storage.System
	analyzer   *analysis.Analyzer
	comp       *compensation.Coordinator
	logger     *slog.Logger
	pagination pagination.Config
	timeout    time.Duration
	lifetime   context.Context
}

// New creates a document repository implementing the System interface.
// timeout bounds each background analysis run.
func New(
	db *sql.DB,
	store storage.System,
	analyzer *analysis.Analyzer,
	timeout time.Duration,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		exec:       db,
		storage:    store,
		analyzer:   analyzer,
		comp:       compensation.New(logger),
		logger:     logger.With("system", "documents"),
		pagination: pagination,
		timeout:    timeout,
		lifetime:   context.Background(),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	r.lifetime = lc.Context()
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "ContentType")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if !cmd.Kind.Valid() {
		cmd.Kind = KindDocument
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	q := `
		INSERT INTO documents(id, kind, filename, content_type, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, kind, filename, content_type, size_bytes, page_count, storage_key,
			processing_status, error_message, analysis_result, created_at, updated_at`

	insertArgs := []any{
		id,
		cmd.Kind,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
	}

	upload := compensation.Effect{
		Name: "document blob upload",
		Apply: func(ctx context.Context) error {
			return r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType)
		},
		Reverse: func(ctx context.Context) error {
			return r.storage.Delete(ctx, key)
		},
	}

	var d Document
	err := r.comp.Run(ctx, upload, func(ctx context.Context) error {
		var err error
		d, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
			return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
		})
		return err
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "kind", d.Kind, "filename", d.Filename)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

// Analyze validates the request, claims the unit for processing, and runs
// the extraction and inference pipeline detached from the request context.
// At most one run per unit is in flight at a time.
func (r *repo) Analyze(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if !doc.ProcessingStatus.CanBegin() {
		return ErrAlreadyProcessing
	}

	if err := r.beginProcessing(ctx, id); err != nil {
		return err
	}

	go r.run(id, doc.StorageKey, doc.ContentType)
	return nil
}

func (r *repo) Status(ctx context.Context, id uuid.UUID) (*StatusSnapshot, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &StatusSnapshot{
		ID:               doc.ID,
		ProcessingStatus: doc.ProcessingStatus,
		ErrorMessage:     doc.ErrorMessage,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.ProcessingStatus == StatusCompleted && doc.AnalysisResult != nil {
		total := doc.AnalysisResult.TotalFindings
		snapshot.TotalFindings = &total
	}
	return snapshot, nil
}

func (r *repo) Content(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return "", err
	}
	return r.extract(ctx, doc.StorageKey, doc.ContentType)
}

// beginProcessing claims the unit with a guarded update so two concurrent
// analyze requests cannot both start a run.
func (r *repo) beginProcessing(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.exec,
		`UPDATE documents
		 SET processing_status = $2, updated_at = now()
		 WHERE id = $1 AND processing_status <> $2`,
		id, StatusProcessing,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyProcessing
		}
		return fmt.Errorf("begin processing: %w", err)
	}

	r.logger.Info("status transition",
		"id", id,
		"to", StatusProcessing,
		"cause", "analyze request accepted")
	return nil
}

// run executes one analysis attempt. Extraction and inference failures are
// recorded through the failed transition, never surfaced raw; the timeout
// guarantees the unit cannot stay in processing indefinitely.
func (r *repo) run(id uuid.UUID, key, contentType string) {
	ctx, cancel := context.WithTimeout(r.lifetime, r.timeout)
	defer cancel()

	text, err := r.extract(ctx, key, contentType)
	if err != nil {
		r.failProcessing(id, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	result, err := r.analyzer.AnalyzeDocument(ctx, text)
	if err != nil {
		r.failProcessing(id, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	r.completeProcessing(id, result)
}

func (r *repo) extract(ctx context.Context, key, contentType string) (string, error) {
	blob, err := r.storage.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("download blob: %w", err)
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}

	return extraction.Extract(data, contentType)
}

// completeProcessing writes the result and the completed status in a single
// statement so the two can never diverge.
func (r *repo) completeProcessing(id uuid.UUID, result *analysis.AnalysisResult) {
	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()

	payload, err := json.Marshal(result)
	if err != nil {
		r.failProcessing(id, fmt.Sprintf("encode analysis result: %v", err))
		return
	}

	err = repository.ExecExpectOne(
		ctx, r.exec,
		`UPDATE documents
		 SET processing_status = $2, analysis_result = $3, error_message = NULL, updated_at = now()
		 WHERE id = $1 AND processing_status = $4`,
		id, StatusCompleted, payload, StatusProcessing,
	)
	if err != nil {
		r.logger.Error("failed to persist analysis result", "id", id, "error", err)
		return
	}

	r.logger.Info("status transition",
		"id", id,
		"to", StatusCompleted,
		"cause", "analysis succeeded",
		"total_findings", result.TotalFindings)
}

// failProcessing records the failure cause. A result persisted by an earlier
// successful run is left in place.
func (r *repo) failProcessing(id uuid.UUID, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()

	err := repository.ExecExpectOne(
		ctx, r.exec,
		`UPDATE documents
		 SET processing_status = $2, error_message = $3, updated_at = now()
		 WHERE id = $1 AND processing_status = $4`,
		id, StatusFailed, message, StatusProcessing,
	)
	if err != nil {
		r.logger.Error("failed to record analysis failure", "id", id, "error", err)
		return
	}

	r.logger.Warn("status transition",
		"id", id,
		"to", StatusFailed,
		"cause", message)
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
