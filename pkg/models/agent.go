// Package models defines the domain model for the BMad framework catalog:
// agent, template and workflow definitions plus persisted workflow instances.
package models

// ComplexityTier classifies project complexity for agent selection.
type ComplexityTier string

const (
	ComplexityLow    ComplexityTier = "low"
	ComplexityMedium ComplexityTier = "medium"
	ComplexityHigh   ComplexityTier = "high"
)

// Seniority levels carried by an agent definition. They drive the
// role-alignment bonuses during selection.
const (
	SeniorityManager = "manager"
	SenioritySenior  = "senior"
)

// AgentDefinition describes a single BMad agent. Definitions are built fresh
// on every catalog load and are immutable afterwards; a reload replaces the
// whole collection rather than mutating entries in place.
type AgentDefinition struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Role                string   `json:"role"`
	Description         string   `json:"description"`
	Capabilities        []string `json:"capabilities"`
	ContextRequirements []string `json:"context_requirements"`

	// Phases this agent is relevant to. An empty set means the agent
	// applies to every phase.
	Phases []string `json:"phases"`

	// SpecialistFor lists the phases where this agent counts as a phase
	// specialist. ComplexityFit lists the tiers where the agent earns the
	// complexity bonus. Seniority is empty, "manager" or "senior".
	SpecialistFor []string         `json:"specialist_for,omitempty"`
	ComplexityFit []ComplexityTier `json:"complexity_fit,omitempty"`
	Seniority     string           `json:"seniority,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// CoversPhase reports whether the agent is relevant to the given phase.
// An empty phase set means "all phases".
func (a *AgentDefinition) CoversPhase(phase string) bool {
	if len(a.Phases) == 0 {
		return true
	}

	for _, p := range a.Phases {
		if p == phase {
			return true
		}
	}

	return false
}

// DeclaresPhase reports whether the phase is explicitly listed on the agent,
// as opposed to being covered via the empty "all phases" set.
func (a *AgentDefinition) DeclaresPhase(phase string) bool {
	for _, p := range a.Phases {
		if p == phase {
			return true
		}
	}

	return false
}

// SpecialistIn reports whether the agent is a declared specialist for the phase.
func (a *AgentDefinition) SpecialistIn(phase string) bool {
	for _, p := range a.SpecialistFor {
		if p == phase {
			return true
		}
	}

	return false
}

// FitsComplexity reports whether the agent earns the complexity bonus at the tier.
func (a *AgentDefinition) FitsComplexity(tier ComplexityTier) bool {
	for _, t := range a.ComplexityFit {
		if t == tier {
			return true
		}
	}

	return false
}
