package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vigil-labs/vigil/pkg/inference"
)

func testSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockClient struct {
	respondFn func(ctx context.Context, req inference.Request) (*inference.Response, error)
	streamFn  func(ctx context.Context, req inference.Request) (inference.Stream, error)
	calls     int
	requests  []inference.Request
}

func (m *mockClient) Respond(ctx context.Context, req inference.Request) (*inference.Response, error) {
	m.calls++
	m.requests = append(m.requests, req)
	return m.respondFn(ctx, req)
}

func (m *mockClient) Stream(ctx context.Context, req inference.Request) (inference.Stream, error) {
	return m.streamFn(ctx, req)
}

const validResult = `{
  "summary": "Examination report with three findings requiring response.",
  "findings": [
    {"id": "finding-1", "type": "BSA/AML", "severity": "Matter Requiring Attention",
     "description": "Suspicious activity monitoring thresholds not reviewed annually.",
     "extracted_text": "The bank has not reviewed SAR monitoring thresholds since 2022.",
     "response_required": true, "confidence": 0.9},
    {"id": "finding-2", "type": "Lending", "severity": "Deficiency",
     "description": "Loan review scope excludes participations.",
     "extracted_text": "Loan review procedures exclude purchased participations.",
     "response_required": true, "confidence": 0.8},
    {"id": "finding-3", "type": "IT", "severity": "Recommendation",
     "description": "Patch management reporting could be consolidated.",
     "extracted_text": "Management should consider consolidated patch reporting.",
     "response_required": false, "confidence": 0.75}
  ],
  "critical_deadlines": ["Board response due within 30 days of receipt"],
  "confidence": 0.82
}`

func TestAnalyzeDocument(t *testing.T) {
	client := &mockClient{
		respondFn: func(ctx context.Context, req inference.Request) (*inference.Response, error) {
			return &inference.Response{ID: "resp_1", Content: validResult}, nil
		},
	}
	analyzer := NewAnalyzer(client, testSlog())

	result, err := analyzer.AnalyzeDocument(context.Background(), "extracted text")
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if result.TotalFindings != 3 {
		t.Errorf("expected total_findings 3, got %d", result.TotalFindings)
	}
	if result.Confidence != 0.82 {
		t.Errorf("expected confidence 0.82, got %v", result.Confidence)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 inference call, got %d", client.calls)
	}
	if !client.requests[0].JSONObject {
		t.Error("expected structured output request")
	}
}

func TestAnalyzeRetriesMalformedOutputOnce(t *testing.T) {
	responses := []string{"not json at all", validResult}
	client := &mockClient{}
	client.respondFn = func(ctx context.Context, req inference.Request) (*inference.Response, error) {
		return &inference.Response{Content: responses[client.calls-1]}, nil
	}
	analyzer := NewAnalyzer(client, testSlog())

	result, err := analyzer.AnalyzeDocument(context.Background(), "extracted text")
	if err != nil {
		t.Fatalf("AnalyzeDocument: %v", err)
	}
	if result.TotalFindings != 3 {
		t.Errorf("expected total_findings 3, got %d", result.TotalFindings)
	}
	if client.calls != 2 {
		t.Errorf("expected exactly 2 inference calls, got %d", client.calls)
	}
	if client.requests[0].Input != client.requests[1].Input {
		t.Error("retry must reuse the original input")
	}
}

func TestAnalyzeSchemaViolationAfterSecondFailure(t *testing.T) {
	client := &mockClient{
		respondFn: func(ctx context.Context, req inference.Request) (*inference.Response, error) {
			return &inference.Response{Content: "still not json"}, nil
		},
	}
	analyzer := NewAnalyzer(client, testSlog())

	_, err := analyzer.AnalyzeDocument(context.Background(), "extracted text")
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
	if client.calls != 2 {
		t.Errorf("expected exactly 2 inference calls, got %d", client.calls)
	}
}

func TestAnalyzeInvalidEnumIsSchemaViolation(t *testing.T) {
	client := &mockClient{
		respondFn: func(ctx context.Context, req inference.Request) (*inference.Response, error) {
			return &inference.Response{Content: `{
				"summary": "s",
				"findings": [{"id": "f1", "type": "Cyber", "severity": "Deficiency",
					"description": "d", "extracted_text": "e", "response_required": true, "confidence": 0.5}],
				"critical_deadlines": [],
				"confidence": 0.5
			}`}, nil
		},
	}
	analyzer := NewAnalyzer(client, testSlog())

	_, err := analyzer.AnalyzeDocument(context.Background(), "text")
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation for unknown finding type, got %v", err)
	}
}

func TestAnalyzeTransportErrorIsNotRetried(t *testing.T) {
	client := &mockClient{
		respondFn: func(ctx context.Context, req inference.Request) (*inference.Response, error) {
			return nil, inference.ErrUnavailable
		},
	}
	analyzer := NewAnalyzer(client, testSlog())

	_, err := analyzer.AnalyzeDocument(context.Background(), "text")
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("transport failures must not be retried, got %d calls", client.calls)
	}
}

func TestValidateRequirementAggregatesEvidence(t *testing.T) {
	client := &mockClient{
		respondFn: func(ctx context.Context, req inference.Request) (*inference.Response, error) {
			return &inference.Response{Content: `{
				"status": "partially_satisfied",
				"rationale": "The policy covers monitoring but omits model validation.",
				"evidence_assessments": [
					{"document_id": "doc-1", "relevance": "direct"},
					{"document_id": "doc-2", "relevance": "partial", "notes": "outdated version"}
				],
				"gaps": ["model validation schedule"],
				"confidence": 0.7
			}`}, nil
		},
	}
	analyzer := NewAnalyzer(client, testSlog())

	verdict, err := analyzer.ValidateRequirement(context.Background(), "Provide the BSA monitoring policy", []EvidenceText{
		{DocumentID: "doc-1", Name: "policy.pdf", Text: "policy text"},
		{DocumentID: "doc-2", Name: "appendix.pdf", Text: "appendix text"},
	})
	if err != nil {
		t.Fatalf("ValidateRequirement: %v", err)
	}
	if verdict.Status != VerdictPartiallySatisfied {
		t.Errorf("unexpected status %q", verdict.Status)
	}
	if client.calls != 1 {
		t.Errorf("all evidence must aggregate into one inference call, got %d", client.calls)
	}

	input := client.requests[0].Input
	for _, fragment := range []string{"Provide the BSA monitoring policy", "doc-1", "policy text", "doc-2", "appendix text"} {
		if !strings.Contains(input, fragment) {
			t.Errorf("aggregated input missing %q", fragment)
		}
	}
}

func TestValidateRequirementUnknownRelevanceIsSchemaViolation(t *testing.T) {
	client := &mockClient{
		respondFn: func(ctx context.Context, req inference.Request) (*inference.Response, error) {
			return &inference.Response{Content: `{
				"status": "satisfied",
				"rationale": "r",
				"evidence_assessments": [{"document_id": "doc-1", "relevance": "tangential"}],
				"gaps": [],
				"confidence": 0.8
			}`}, nil
		},
	}
	analyzer := NewAnalyzer(client, testSlog())

	_, err := analyzer.ValidateRequirement(context.Background(), "requirement", []EvidenceText{
		{DocumentID: "doc-1", Name: "policy.pdf", Text: "policy text"},
	})
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation for unknown relevance, got %v", err)
	}
	if client.calls != 2 {
		t.Errorf("expected one retry before rejection, got %d calls", client.calls)
	}
}

func TestVerdictValidate(t *testing.T) {
	tests := []struct {
		name    string
		verdict ValidationVerdict
		wantErr bool
	}{
		{"valid", ValidationVerdict{Status: VerdictSatisfied, Rationale: "r", Confidence: 0.9}, false},
		{"unknown status", ValidationVerdict{Status: "maybe", Rationale: "r", Confidence: 0.9}, true},
		{"missing rationale", ValidationVerdict{Status: VerdictSatisfied, Confidence: 0.9}, true},
		{"confidence out of range", ValidationVerdict{Status: VerdictSatisfied, Rationale: "r", Confidence: 1.2}, true},
		{"valid relevance", ValidationVerdict{Status: VerdictSatisfied, Rationale: "r", Confidence: 0.9,
			EvidenceAssessments: []EvidenceAssessment{{DocumentID: "d1", Relevance: RelevancePartial}}}, false},
		{"unknown relevance", ValidationVerdict{Status: VerdictSatisfied, Rationale: "r", Confidence: 0.9,
			EvidenceAssessments: []EvidenceAssessment{{DocumentID: "d1", Relevance: "tangential"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verdict.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
