package requirements

import (
	"encoding/json"
	"net/url"

	"github.com/vigil-labs/vigil/internal/analysis"
	"github.com/vigil-labs/vigil/pkg/query"
	"github.com/vigil-labs/vigil/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "requirements", "r").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Description").
	Project("validation_results", "ValidationResults").
	Project("last_validated_at", "LastValidatedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for requirement queries.
// Title and Description use case-insensitive contains matching; Status
// matches the stored verdict status exactly.
type Filters struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Title", f.Title).
		WhereContains("Description", f.Description)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	if d := values.Get("description"); d != "" {
		f.Description = &d
	}

	return f
}

func scanRequirement(s repository.Scanner) (Requirement, error) {
	var r Requirement
	var verdict []byte

	err := s.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&verdict,
		&r.LastValidatedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	if len(verdict) > 0 {
		var parsed analysis.ValidationVerdict
		if err := json.Unmarshal(verdict, &parsed); err != nil {
			return r, err
		}
		r.ValidationResults = &parsed
	}

	return r, nil
}

var evidenceProjection = query.
	NewProjectionMap("public", "requirement_evidence", "e").
	Project("document_id", "DocumentID").
	Project("position", "Position").
	Join("public", "documents", "d", "INNER JOIN", "d.id = e.document_id").
	Project("filename", "Filename")

var evidenceSort = query.SortField{Field: "Position"}

func scanEvidenceLink(s repository.Scanner) (EvidenceLink, error) {
	var e EvidenceLink
	err := s.Scan(&e.DocumentID, &e.Position, &e.Filename)
	return e, err
}
