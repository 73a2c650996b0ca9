// Package selector ranks agent definitions for a project phase, complexity
// tier and requesting role using a deterministic additive score.
package selector

import (
	"sort"
	"strings"

	"github.com/bmadhq/platform/pkg/models"
)

// Score weights. All bonuses are additive; an unknown phase or role simply
// fails every bonus check and degrades to phase-membership-only scoring.
const (
	phaseRelevanceBonus   = 50
	phaseSpecialistBonus  = 30
	complexityFitBonus    = 20
	managerAlignmentBonus = 15
	seniorAlignmentBonus  = 10
)

// Selection caps per complexity tier. High complexity is uncapped.
const (
	lowComplexityLimit    = 2
	mediumComplexityLimit = 3
)

// ScoredAgent pairs an agent definition with its context score.
type ScoredAgent struct {
	Agent *models.AgentDefinition `json:"agent"`
	Score int                     `json:"score"`
}

// Select filters the catalog agents down to those covering the phase, scores
// them, and returns them in descending score order truncated to the tier's
// window. Ties keep catalog order. An empty result is not an error.
func Select(agents []*models.AgentDefinition, phase string, tier models.ComplexityTier, role string) []ScoredAgent {
	candidates := make([]ScoredAgent, 0, len(agents))

	for _, agent := range agents {
		if !agent.CoversPhase(phase) {
			continue
		}

		candidates = append(candidates, ScoredAgent{
			Agent: agent,
			Score: Score(agent, phase, tier, role),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	switch tier {
	case models.ComplexityLow:
		if len(candidates) > lowComplexityLimit {
			candidates = candidates[:lowComplexityLimit]
		}
	case models.ComplexityMedium:
		if len(candidates) > mediumComplexityLimit {
			candidates = candidates[:mediumComplexityLimit]
		}
	case models.ComplexityHigh:
		// No cap beyond the filtered candidate set.
	}

	return candidates
}

// Score computes the context-relevance score for one agent.
func Score(agent *models.AgentDefinition, phase string, tier models.ComplexityTier, role string) int {
	score := 0

	if agent.DeclaresPhase(phase) {
		score += phaseRelevanceBonus
	}

	if agent.SpecialistIn(phase) {
		score += phaseSpecialistBonus
	}

	if (tier == models.ComplexityHigh || tier == models.ComplexityLow) && agent.FitsComplexity(tier) {
		score += complexityFitBonus
	}

	if isManagerRole(role) && agent.Seniority == models.SeniorityManager {
		score += managerAlignmentBonus
	}

	if isAdminRole(role) && (agent.Seniority == models.SeniorityManager || agent.Seniority == models.SenioritySenior) {
		score += seniorAlignmentBonus
	}

	return score
}

// IDs extracts the agent identifiers from a ranked selection, capped to the
// given size. A non-positive cap keeps every entry.
func IDs(selection []ScoredAgent, cap int) []string {
	if cap > 0 && len(selection) > cap {
		selection = selection[:cap]
	}

	ids := make([]string, 0, len(selection))
	for _, s := range selection {
		ids = append(ids, s.Agent.ID)
	}

	return ids
}

func isManagerRole(role string) bool {
	return strings.EqualFold(role, "project_manager")
}

func isAdminRole(role string) bool {
	return strings.EqualFold(role, "admin")
}
