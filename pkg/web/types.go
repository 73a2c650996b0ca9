package web

// RecommendAgentsRequest asks for the ranked agent set for a phase.
type RecommendAgentsRequest struct {
	Phase      string `json:"phase"      validate:"required"`
	Complexity string `json:"complexity" validate:"omitempty,oneof=low medium high"`
}

// StartWorkflowRequest creates a workflow instance for the caller.
type StartWorkflowRequest struct {
	ProjectID   *string        `json:"project_id,omitempty"`
	ProjectName string         `json:"project_name" validate:"required"`
	Context     map[string]any `json:"context,omitempty"`
}

// TransitionWorkflowRequest moves an instance to its next phase.
type TransitionWorkflowRequest struct {
	NextPhase          string   `json:"next_phase" validate:"required"`
	CompletionCriteria []string `json:"completion_criteria,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}
