package analysis

import "fmt"

// FindingType categorizes a regulatory finding by examination area.
type FindingType string

const (
	FindingBSAAML     FindingType = "BSA/AML"
	FindingLending    FindingType = "Lending"
	FindingOperations FindingType = "Operations"
	FindingCapital    FindingType = "Capital"
	FindingManagement FindingType = "Management"
	FindingIT         FindingType = "IT"
	FindingOther      FindingType = "Other"
)

// Valid reports whether the finding type is a known category.
func (t FindingType) Valid() bool {
	switch t {
	case FindingBSAAML, FindingLending, FindingOperations, FindingCapital,
		FindingManagement, FindingIT, FindingOther:
		return true
	}
	return false
}

// Severity grades a finding using regulatory terminology.
type Severity string

const (
	SeverityMRA            Severity = "Matter Requiring Attention"
	SeverityDeficiency     Severity = "Deficiency"
	SeverityViolation      Severity = "Violation"
	SeverityRecommendation Severity = "Recommendation"
)

// Valid reports whether the severity is a known grade.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMRA, SeverityDeficiency, SeverityViolation, SeverityRecommendation:
		return true
	}
	return false
}

// RecommendedAction is a concrete remediation step attached to a finding.
type RecommendedAction struct {
	Action    string `json:"action"`
	Owner     string `json:"owner,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
	Effort    string `json:"effort,omitempty"`
	Impact    string `json:"impact,omitempty"`
}

// Finding is a single discrete issue extracted from a document.
type Finding struct {
	ID               string      `json:"id"`
	Type             FindingType `json:"type"`
	Severity         Severity    `json:"severity"`
	Description      string      `json:"description"`
	ExtractedText    string      `json:"extracted_text"`
	ResponseRequired bool        `json:"response_required"`
	Confidence       float64     `json:"confidence"`

	RegulatoryCitation      string              `json:"regulatory_citation,omitempty"`
	Deadline                string              `json:"deadline,omitempty"`
	WhatItMeans             string              `json:"what_it_means,omitempty"`
	WhyItMatters            string              `json:"why_it_matters,omitempty"`
	RootCauses              []string            `json:"root_causes,omitempty"`
	RegulatoryExpectations  []string            `json:"regulatory_expectations,omitempty"`
	ControlGaps             []string            `json:"control_gaps,omitempty"`
	RecommendedActions      []RecommendedAction `json:"recommended_actions,omitempty"`
	AcceptanceCriteria      []string            `json:"acceptance_criteria,omitempty"`
	ArtifactsToPrepare      []string            `json:"artifacts_to_prepare,omitempty"`
	RiskImpact              string              `json:"risk_impact,omitempty"`
	Urgency                 string              `json:"urgency,omitempty"`
	Dependencies            []string            `json:"dependencies,omitempty"`
	ClosureNarrativeOutline string              `json:"closure_narrative_outline,omitempty"`
}

func (f *Finding) validate(index int) error {
	if f.ID == "" {
		return fmt.Errorf("finding %d: missing id", index)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("finding %d: invalid type %q", index, f.Type)
	}
	if !f.Severity.Valid() {
		return fmt.Errorf("finding %d: invalid severity %q", index, f.Severity)
	}
	if f.Description == "" {
		return fmt.Errorf("finding %d: missing description", index)
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("finding %d: confidence %v out of range", index, f.Confidence)
	}
	return nil
}

// FirstPrinciples decomposes the document's problems from root causes up.
type FirstPrinciples struct {
	ProblemStatement       string   `json:"problem_statement,omitempty"`
	Decomposition          []string `json:"decomposition,omitempty"`
	CausalFactors          []string `json:"causal_factors,omitempty"`
	RegulatoryExpectations []string `json:"regulatory_expectations,omitempty"`
	Risks                  []string `json:"risks,omitempty"`
}

// RemediationPhase groups remediation goals into an execution stage.
type RemediationPhase struct {
	Phase string   `json:"phase"`
	Goals []string `json:"goals,omitempty"`
	Notes string   `json:"notes,omitempty"`
}

// RemediationTimeline buckets actions by regulatory response horizon.
type RemediationTimeline struct {
	ThirtyDays []string `json:"30_days,omitempty"`
	SixtyDays  []string `json:"60_days,omitempty"`
	NinetyDays []string `json:"90_days,omitempty"`
}

// RemediationGuidance is the optional action-plan block of a result.
type RemediationGuidance struct {
	QuickWins          []string             `json:"quick_wins,omitempty"`
	CriticalActions    []string             `json:"critical_actions,omitempty"`
	Phases             []RemediationPhase   `json:"phases,omitempty"`
	Owners             []string             `json:"owners,omitempty"`
	Timeline           *RemediationTimeline `json:"timeline,omitempty"`
	AcceptanceCriteria []string             `json:"acceptance_criteria,omitempty"`
	MonitoringMetrics  []string             `json:"monitoring_metrics,omitempty"`
	RequiredArtifacts  []string             `json:"required_artifacts,omitempty"`
}

// AnalysisResult is the structured output of a document analysis run.
type AnalysisResult struct {
	Summary           string   `json:"summary"`
	Findings          []Finding `json:"findings"`
	TotalFindings     int      `json:"total_findings"`
	CriticalDeadlines []string `json:"critical_deadlines"`
	Confidence        float64  `json:"confidence"`

	FirstPrinciples         *FirstPrinciples     `json:"first_principles,omitempty"`
	RemediationGuidance     *RemediationGuidance `json:"remediation_guidance,omitempty"`
	OverallRiskLevel        string               `json:"overall_risk_level,omitempty"`
	Urgency                 string               `json:"urgency,omitempty"`
	KeyRegulatoryCitations  []string             `json:"key_regulatory_citations,omitempty"`
}

// Validate checks structural conformance and normalizes derived fields.
// Confidence and severity values are passed through unmodified apart from
// type and range checks.
func (r *AnalysisResult) Validate() error {
	if r.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", r.Confidence)
	}
	for i := range r.Findings {
		if err := r.Findings[i].validate(i); err != nil {
			return err
		}
	}
	r.TotalFindings = len(r.Findings)
	return nil
}
