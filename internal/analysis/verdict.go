package analysis

import "fmt"

// VerdictStatus is the model's judgment of whether the linked evidence
// satisfies a requirement.
type VerdictStatus string

const (
	VerdictSatisfied          VerdictStatus = "satisfied"
	VerdictPartiallySatisfied VerdictStatus = "partially_satisfied"
	VerdictNotSatisfied       VerdictStatus = "not_satisfied"
	VerdictIndeterminate      VerdictStatus = "indeterminate"
)

// Valid reports whether the status is a known verdict.
func (s VerdictStatus) Valid() bool {
	switch s {
	case VerdictSatisfied, VerdictPartiallySatisfied, VerdictNotSatisfied, VerdictIndeterminate:
		return true
	}
	return false
}

// Relevance grades how directly one evidence document bears on the
// requirement under validation.
type Relevance string

const (
	RelevanceDirect  Relevance = "direct"
	RelevancePartial Relevance = "partial"
	RelevanceNone    Relevance = "none"
)

// Valid reports whether the relevance is a known grade.
func (r Relevance) Valid() bool {
	switch r {
	case RelevanceDirect, RelevancePartial, RelevanceNone:
		return true
	}
	return false
}

// EvidenceAssessment grades one evidence document's relevance to the
// requirement under validation.
type EvidenceAssessment struct {
	DocumentID string    `json:"document_id"`
	Relevance  Relevance `json:"relevance"`
	Notes      string    `json:"notes,omitempty"`
}

// ValidationVerdict is the structured output of a requirement validation run.
type ValidationVerdict struct {
	Status              VerdictStatus        `json:"status"`
	Rationale           string               `json:"rationale"`
	EvidenceAssessments []EvidenceAssessment `json:"evidence_assessments"`
	Gaps                []string             `json:"gaps"`
	Confidence          float64              `json:"confidence"`
}

// Validate checks structural conformance of a verdict.
func (v *ValidationVerdict) Validate() error {
	if !v.Status.Valid() {
		return fmt.Errorf("invalid verdict status %q", v.Status)
	}
	if v.Rationale == "" {
		return fmt.Errorf("missing rationale")
	}
	for i, a := range v.EvidenceAssessments {
		if !a.Relevance.Valid() {
			return fmt.Errorf("evidence assessment %d: invalid relevance %q", i, a.Relevance)
		}
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", v.Confidence)
	}
	return nil
}
