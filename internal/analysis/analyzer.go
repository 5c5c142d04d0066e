// Package analysis sends extracted document text to the inference service
// and enforces a strict output schema on what comes back. Malformed output
// earns exactly one automated retry per invocation; a second failure is
// surfaced as ErrSchemaViolation rather than coerced.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vigil-labs/vigil/pkg/formatting"
	"github.com/vigil-labs/vigil/pkg/inference"
)

// EvidenceText is one evidence document's extracted content, tagged with
// the identity the model should reference in its assessments.
type EvidenceText struct {
	DocumentID string
	Name       string
	Text       string
}

// Analyzer wraps an inference client with schema enforcement.
type Analyzer struct {
	client inference.Client
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer with the given client and logger.
func NewAnalyzer(client inference.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: logger.With("system", "analysis"),
	}
}

// AnalyzeDocument runs full document analysis over extracted text.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) (*AnalysisResult, error) {
	return invoke[AnalysisResult](ctx, a, text, DocumentProfile())
}

// ValidateRequirement judges linked evidence against a requirement
// description in a single aggregated inference call.
func (a *Analyzer) ValidateRequirement(ctx context.Context, description string, evidence []EvidenceText) (*ValidationVerdict, error) {
	return invoke[ValidationVerdict](ctx, a, validationInput(description, evidence), ValidationProfile())
}

type schemaChecked interface {
	Validate() error
}

// invoke performs one schema-enforced inference call. Transport failures
// propagate immediately; a parse or validation failure is retried once with
// the original input before surfacing ErrSchemaViolation.
func invoke[T any, PT interface {
	*T
	schemaChecked
}](ctx context.Context, a *Analyzer, input string, profile TaskProfile) (PT, error) {
	req := inference.Request{
		Input:           input,
		Instructions:    profile.Instructions,
		MaxOutputTokens: profile.MaxOutputTokens,
		JSONObject:      true,
		ReasoningEffort: profile.ReasoningEffort,
		Verbosity:       profile.Verbosity,
	}

	var lastViolation error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := a.client.Respond(ctx, req)
		if err != nil {
			return nil, err
		}

		result, err := formatting.Parse[T](resp.Content)
		if err == nil {
			checked := PT(&result)
			if err = checked.Validate(); err == nil {
				return checked, nil
			}
		}

		lastViolation = err
		if attempt == 0 {
			a.logger.Warn("schema violation, retrying once",
				"task", profile.Name,
				"error", err)
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, lastViolation)
}
