package analysis

// TaskProfile selects the prompt template and model-tuning parameters for
// one analyzer task. Profiles are explicit values passed per invocation,
// never ambient state.
type TaskProfile struct {
	Name            string
	Instructions    string
	MaxOutputTokens int64
	ReasoningEffort string
	Verbosity       string
}

// DocumentProfile is the task profile for full regulatory document analysis.
func DocumentProfile() TaskProfile {
	return TaskProfile{
		Name:            "document-analysis",
		Instructions:    documentInstructions,
		MaxOutputTokens: 12000,
		ReasoningEffort: "medium",
		Verbosity:       "medium",
	}
}

// ValidationProfile is the task profile for requirement evidence validation.
func ValidationProfile() TaskProfile {
	return TaskProfile{
		Name:            "requirement-validation",
		Instructions:    validationInstructions,
		MaxOutputTokens: 6000,
		ReasoningEffort: "medium",
		Verbosity:       "low",
	}
}
