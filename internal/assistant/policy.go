package assistant

import "strings"

// searchTriggers are phrases that indicate the turn needs information the
// model is unlikely to hold, so the search tool runs before generation.
var searchTriggers = []string{
	"latest",
	"current guidance",
	"recent enforcement",
	"recent regulatory",
	"search for",
	"look up",
	"news",
}

// wantsSearch decides, inside the turn, whether the external search tool
// should run. The client never triggers it directly.
func wantsSearch(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range searchTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// artifactKeywords maps phrases in the generated answer to the structured
// artifact each one implies.
var artifactKeywords = []struct {
	keyword  string
	artifact Artifact
}{
	{"remediation plan", Artifact{Type: "mra-remediation-plan", Title: "MRA Remediation Plan"}},
	{"compliance report", Artifact{Type: "compliance-report", Title: "Compliance Report"}},
	{"checklist", Artifact{Type: "compliance-checklist", Title: "Compliance Checklist"}},
	{"requirements matrix", Artifact{Type: "compliance-checklist", Title: "Requirements Matrix"}},
}

// detectArtifacts scans the accumulated answer for implied side-products.
func detectArtifacts(content string) []Artifact {
	lower := strings.ToLower(content)

	var (
		found []Artifact
		seen  = map[string]bool{}
	)
	for _, entry := range artifactKeywords {
		if strings.Contains(lower, entry.keyword) && !seen[entry.artifact.Type] {
			seen[entry.artifact.Type] = true
			found = append(found, entry.artifact)
		}
	}
	return found
}
