package models

// TemplateDefinition describes a document template shipped with the framework.
// Like agent definitions, templates are catalog-level and immutable; a reload
// replaces the whole collection.
type TemplateDefinition struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Phase string `json:"phase"`

	// Tracks lists the workflow kinds this template applies to.
	Tracks []WorkflowType `json:"tracks"`

	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AppliesToTrack reports whether the template is usable on the given track.
func (t *TemplateDefinition) AppliesToTrack(track WorkflowType) bool {
	for _, tr := range t.Tracks {
		if tr == track {
			return true
		}
	}

	return false
}
