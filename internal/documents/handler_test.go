package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vigil-labs/vigil/internal/analysis"
	"github.com/vigil-labs/vigil/internal/documents"
	"github.com/vigil-labs/vigil/pkg/lifecycle"
	"github.com/vigil-labs/vigil/pkg/pagination"
)

type mockSystem struct {
	listFn    func(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error)
	findFn    func(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	createFn  func(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	analyzeFn func(ctx context.Context, id uuid.UUID) error
	statusFn  func(ctx context.Context, id uuid.UUID) (*documents.StatusSnapshot, error)
	contentFn func(ctx context.Context, id uuid.UUID) (string, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *documents.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) Start(lc *lifecycle.Coordinator) error { return nil }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Analyze(ctx context.Context, id uuid.UUID) error {
	return m.analyzeFn(ctx, id)
}

func (m *mockSystem) Status(ctx context.Context, id uuid.UUID) (*documents.StatusSnapshot, error) {
	return m.statusFn(ctx, id)
}

func (m *mockSystem) Content(ctx context.Context, id uuid.UUID) (string, error) {
	return m.contentFn(ctx, id)
}

func newTestHandler(sys *mockSystem) *documents.Handler {
	return documents.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		50*1024*1024,
	)
}

func setupMux(h *documents.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func ptr[T any](v T) *T { return &v }

func sampleDoc() documents.Document {
	return documents.Document{
		ID:               uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Kind:             documents.KindDocument,
		Filename:         "exam-report.pdf",
		ContentType:      "application/pdf",
		SizeBytes:        1024,
		PageCount:        ptr(2),
		StorageKey:       "documents/550e8400-e29b-41d4-a716-446655440000/exam-report.pdf",
		ProcessingStatus: documents.StatusPending,
		CreatedAt:        time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestFind(t *testing.T) {
	doc := sampleDoc()
	sys := &mockSystem{
		findFn: func(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
			if id != doc.ID {
				return nil, documents.ErrNotFound
			}
			return &doc, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+doc.ID.String(), nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var got documents.Document
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got.ID != doc.ID || got.ProcessingStatus != documents.StatusPending {
			t.Errorf("unexpected document: %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+uuid.NewString(), nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}

		var envelope map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope["detail"] == "" {
			t.Error("expected detail field in error envelope")
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/not-a-uuid", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestUpload(t *testing.T) {
	sys := &mockSystem{
		createFn: func(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
			doc := sampleDoc()
			doc.Filename = cmd.Filename
			doc.Kind = cmd.Kind
			doc.ContentType = cmd.ContentType
			return &doc, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	buildUpload := func(t *testing.T, kind string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if kind != "" {
			mw.WriteField("kind", kind)
		}
		fw, err := mw.CreateFormFile("file", "findings.md")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("# Findings\n"))
		mw.Close()
		return &buf, mw.FormDataContentType()
	}

	t.Run("created", func(t *testing.T) {
		body, contentType := buildUpload(t, "")
		req := httptest.NewRequest("POST", "/documents", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var got documents.Document
		json.NewDecoder(rec.Body).Decode(&got)
		if got.Kind != documents.KindDocument {
			t.Errorf("missing kind should default to document, got %q", got.Kind)
		}
	})

	t.Run("transcript kind", func(t *testing.T) {
		body, contentType := buildUpload(t, "transcript")
		req := httptest.NewRequest("POST", "/documents", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		body, contentType := buildUpload(t, "archive")
		req := httptest.NewRequest("POST", "/documents", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unsupported content type", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part := make(textproto.MIMEHeader)
		part.Set("Content-Disposition", `form-data; name="file"; filename="scan.png"`)
		part.Set("Content-Type", "image/png")
		fw, err := mw.CreatePart(part)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		fw.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n'})
		mw.Close()

		req := httptest.NewRequest("POST", "/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("kind", "document")
		mw.Close()

		req := httptest.NewRequest("POST", "/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAnalyze(t *testing.T) {
	doc := sampleDoc()

	tests := []struct {
		name       string
		analyzeErr error
		wantStatus int
	}{
		{"accepted", nil, http.StatusAccepted},
		{"already processing", documents.ErrAlreadyProcessing, http.StatusConflict},
		{"not found", documents.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				analyzeFn: func(ctx context.Context, id uuid.UUID) error {
					return tt.analyzeErr
				},
			}
			mux := setupMux(newTestHandler(sys))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents/"+doc.ID.String()+"/analyze", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantStatus == http.StatusAccepted {
				var got documents.AnalyzeAccepted
				if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if got.ProcessingStatus != documents.StatusProcessing {
					t.Errorf("expected processing status, got %q", got.ProcessingStatus)
				}
			}
		})
	}
}

func TestStatus(t *testing.T) {
	doc := sampleDoc()

	t.Run("completed includes findings count", func(t *testing.T) {
		sys := &mockSystem{
			statusFn: func(ctx context.Context, id uuid.UUID) (*documents.StatusSnapshot, error) {
				return &documents.StatusSnapshot{
					ID:               doc.ID,
					ProcessingStatus: documents.StatusCompleted,
					TotalFindings:    ptr(3),
					UpdatedAt:        doc.UpdatedAt,
				}, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+doc.ID.String()+"/status", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var got documents.StatusSnapshot
		json.NewDecoder(rec.Body).Decode(&got)
		if got.ProcessingStatus != documents.StatusCompleted {
			t.Errorf("unexpected status %q", got.ProcessingStatus)
		}
		if got.TotalFindings == nil || *got.TotalFindings != 3 {
			t.Errorf("expected total_findings 3, got %v", got.TotalFindings)
		}
	})

	t.Run("failed includes error message", func(t *testing.T) {
		sys := &mockSystem{
			statusFn: func(ctx context.Context, id uuid.UUID) (*documents.StatusSnapshot, error) {
				return &documents.StatusSnapshot{
					ID:               doc.ID,
					ProcessingStatus: documents.StatusFailed,
					ErrorMessage:     ptr("extraction failed: unsupported document format"),
					UpdatedAt:        doc.UpdatedAt,
				}, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+doc.ID.String()+"/status", nil))

		var got documents.StatusSnapshot
		json.NewDecoder(rec.Body).Decode(&got)
		if got.ErrorMessage == nil {
			t.Fatal("expected error_message on failed status")
		}
	})
}

func TestList(t *testing.T) {
	doc := sampleDoc()
	sys := &mockSystem{
		listFn: func(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
			if filters.ProcessingStatus == nil || *filters.ProcessingStatus != "completed" {
				t.Errorf("expected processing_status filter, got %+v", filters)
			}
			result := pagination.NewPageResult([]documents.Document{doc}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents?processing_status=completed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	doc := sampleDoc()
	sys := &mockSystem{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			if id != doc.ID {
				return documents.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("deleted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/"+doc.ID.String(), nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/"+uuid.NewString(), nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestDocumentJSONShape(t *testing.T) {
	doc := sampleDoc()
	doc.ProcessingStatus = documents.StatusCompleted
	doc.AnalysisResult = &analysis.AnalysisResult{
		Summary:       "two findings",
		TotalFindings: 2,
		Confidence:    0.9,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	json.Unmarshal(data, &raw)
	for _, field := range []string{"id", "kind", "processing_status", "analysis_result", "created_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing field %q in document JSON", field)
		}
	}
}
