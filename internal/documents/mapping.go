package documents

import (
	"encoding/json"
	"net/url"

	"github.com/vigil-labs/vigil/internal/analysis"
	"github.com/vigil-labs/vigil/pkg/query"
	"github.com/vigil-labs/vigil/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("kind", "Kind").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("processing_status", "ProcessingStatus").
	Project("error_message", "ErrorMessage").
	Project("analysis_result", "AnalysisResult").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Kind, ProcessingStatus, and ContentType use exact
// matching. Filename and StorageKey use case-insensitive contains matching.
type Filters struct {
	Kind             *string `json:"kind,omitempty"`
	ProcessingStatus *string `json:"processing_status,omitempty"`
	Filename         *string `json:"filename,omitempty"`
	ContentType      *string `json:"content_type,omitempty"`
	StorageKey       *string `json:"storage_key,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Kind", f.Kind).
		WhereEquals("ProcessingStatus", f.ProcessingStatus).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType).
		WhereContains("StorageKey", f.StorageKey)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if k := values.Get("kind"); k != "" {
		f.Kind = &k
	}

	if ps := values.Get("processing_status"); ps != "" {
		f.ProcessingStatus = &ps
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if sk := values.Get("storage_key"); sk != "" {
		f.StorageKey = &sk
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	var result []byte

	err := s.Scan(
		&d.ID,
		&d.Kind,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.ProcessingStatus,
		&d.ErrorMessage,
		&result,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	if len(result) > 0 {
		var parsed analysis.AnalysisResult
		if err := json.Unmarshal(result, &parsed); err != nil {
			return d, err
		}
		d.AnalysisResult = &parsed
	}

	return d, nil
}
