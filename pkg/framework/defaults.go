package framework

import "github.com/bmadhq/platform/pkg/models"

// Default catalog metadata for the agents shipped with the framework. Agent
// files may override any of these via front matter; the tables only fill
// fields the file leaves empty, so adding a new agent definition does not
// require touching selection code.

// defaultAgentPhases maps known agent identifiers to their home phases.
// Unknown identifiers keep an empty phase set, meaning "all phases".
var defaultAgentPhases = map[string][]string{
	"analyst":     {"analysis"},
	"ux-designer": {"analysis"},
	"pm":          {"planning"},
	"sm":          {"planning"},
	"architect":   {"solutioning"},
	"tech-writer": {"solutioning"},
	"dev":         {"implementation"},
	"tea":         {"implementation"},
}

// phaseSpecialists lists the two specialist agents per phase.
var phaseSpecialists = map[string][]string{
	"analysis":       {"analyst", "ux-designer"},
	"planning":       {"pm", "sm"},
	"solutioning":    {"architect", "tech-writer"},
	"implementation": {"dev", "tea"},
}

// complexitySpecialists lists the agents preferred at the extreme tiers.
var complexitySpecialists = map[models.ComplexityTier][]string{
	models.ComplexityHigh: {"architect", "tea"},
	models.ComplexityLow:  {"pm", "dev"},
}

// defaultSeniority marks the manager agent and the senior agent.
var defaultSeniority = map[string]string{
	"pm":        models.SeniorityManager,
	"architect": models.SenioritySenior,
}

var defaultContextRequirements = []string{"project_context", "user_requirements"}

// applyDefaults fills declarative selection metadata for fields the agent
// file did not set.
func applyDefaults(agent *models.AgentDefinition) {
	if len(agent.Phases) == 0 {
		agent.Phases = append(agent.Phases, defaultAgentPhases[agent.ID]...)
	}

	if len(agent.SpecialistFor) == 0 {
		for phase, specialists := range phaseSpecialists {
			for _, id := range specialists {
				if id == agent.ID {
					agent.SpecialistFor = append(agent.SpecialistFor, phase)
				}
			}
		}
	}

	if len(agent.ComplexityFit) == 0 {
		for tier, specialists := range complexitySpecialists {
			for _, id := range specialists {
				if id == agent.ID {
					agent.ComplexityFit = append(agent.ComplexityFit, tier)
				}
			}
		}
	}

	if agent.Seniority == "" {
		agent.Seniority = defaultSeniority[agent.ID]
	}

	if len(agent.ContextRequirements) == 0 {
		agent.ContextRequirements = append([]string(nil), defaultContextRequirements...)
	}
}
