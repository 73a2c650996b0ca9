package models

import "time"

// Catalog is an immutable snapshot of every loaded framework definition.
// The catalog store replaces snapshots wholesale, so concurrent readers never
// observe a partially updated catalog.
type Catalog struct {
	Agents    []*AgentDefinition    `json:"agents"`
	Templates []*TemplateDefinition `json:"templates"`
	Workflows []*WorkflowDefinition `json:"workflows"`
	Config    map[string]any        `json:"config"`
	LoadedAt  time.Time             `json:"loaded_at"`
}

// AgentByID returns the agent with the given identifier, or nil.
func (c *Catalog) AgentByID(id string) *AgentDefinition {
	for _, a := range c.Agents {
		if a.ID == id {
			return a
		}
	}

	return nil
}

// TemplatesByType returns every template with the given type tag.
func (c *Catalog) TemplatesByType(templateType string) []*TemplateDefinition {
	matched := make([]*TemplateDefinition, 0)

	for _, t := range c.Templates {
		if t.Type == templateType {
			matched = append(matched, t)
		}
	}

	return matched
}

// WorkflowByType returns the workflow definition for the given kind, or nil.
func (c *Catalog) WorkflowByType(workflowType WorkflowType) *WorkflowDefinition {
	for _, w := range c.Workflows {
		if w.Type == workflowType {
			return w
		}
	}

	return nil
}
