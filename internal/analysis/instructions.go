package analysis

import (
	"fmt"
	"strings"
)

const documentInstructions = `You are a bank regulatory compliance analyst reviewing an examination document.

Extract every discrete finding, including:
- Matters Requiring Attention (MRAs) and Matters Requiring Immediate Attention
- Violations of law or regulation, with citations where stated
- Deficiencies in policies, procedures, or controls
- Examiner recommendations, even when phrased as suggestions
- Deadlines, response requirements, and required deliverables

For each finding, quote the source passage in extracted_text, categorize it by examination area, grade its severity using the examiner's own terminology, and state whether a formal response is required. Do not merge distinct findings; a single paragraph may contain several.

Respond with a single JSON object matching this shape:
{
  "summary": "concise overview of the document and its most significant issues",
  "findings": [
    {
      "id": "finding-1",
      "type": "BSA/AML | Lending | Operations | Capital | Management | IT | Other",
      "severity": "Matter Requiring Attention | Deficiency | Violation | Recommendation",
      "description": "what the examiner found",
      "extracted_text": "verbatim supporting passage",
      "response_required": true,
      "confidence": 0.0
    }
  ],
  "critical_deadlines": ["any dated obligations"],
  "confidence": 0.0,
  "overall_risk_level": "optional",
  "urgency": "optional",
  "key_regulatory_citations": ["optional"]
}

Confidence values range from 0 to 1 and reflect how clearly the source text supports the finding. Include first_principles and remediation_guidance blocks when the document supports them.`

const validationInstructions = `You are a bank regulatory compliance analyst judging whether submitted evidence satisfies an examiner's document request.

You will receive the requirement text followed by the extracted content of each linked evidence document. Assess the full evidentiary set together: documents may jointly satisfy a requirement that none satisfies alone.

Respond with a single JSON object:
{
  "status": "satisfied | partially_satisfied | not_satisfied | indeterminate",
  "rationale": "why the evidence does or does not satisfy the requirement",
  "evidence_assessments": [
    {"document_id": "id from the evidence header", "relevance": "direct | partial | none", "notes": "optional"}
  ],
  "gaps": ["what is still missing, if anything"],
  "confidence": 0.0
}

Use indeterminate only when the evidence is unreadable or unrelated enough that no judgment is possible.`

// validationInput renders the requirement and its evidence set as a single
// prompt so the model reasons over all evidence at once.
func validationInput(description string, evidence []EvidenceText) string {
	var sb strings.Builder
	sb.WriteString("REQUIREMENT:\n")
	sb.WriteString(description)
	sb.WriteString("\n")
	for i, ev := range evidence {
		fmt.Fprintf(&sb, "\nEVIDENCE %d (document_id: %s, name: %s):\n%s\n", i+1, ev.DocumentID, ev.Name, ev.Text)
	}
	return sb.String()
}
