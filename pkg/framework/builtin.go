package framework

import (
	"time"

	"github.com/bmadhq/platform/pkg/models"
)

// frameworkVersion tags every built-in definition and loaded agent.
const frameworkVersion = "6.0.0"

func builtinTemplates(loadedAt time.Time) []*models.TemplateDefinition {
	allTracks := []models.WorkflowType{
		models.WorkflowQuickFlow,
		models.WorkflowBMadMethod,
		models.WorkflowBrownfield,
	}
	fullTracks := []models.WorkflowType{
		models.WorkflowBMadMethod,
		models.WorkflowBrownfield,
	}

	templates := []*models.TemplateDefinition{
		{
			ID:     "project-brief",
			Name:   "Project Brief",
			Type:   "PROJECT_BRIEF",
			Phase:  "analysis",
			Tracks: allTracks,
			Content: "# Project Brief Template\n\n## Project Overview\n\n## Objectives\n\n" +
				"## Scope\n\n## Success Criteria\n\n## Constraints\n\n## Stakeholders",
			Metadata: map[string]any{"required": true, "complexity": "basic"},
		},
		{
			ID:     "prd",
			Name:   "Product Requirements Document",
			Type:   "PRD",
			Phase:  "analysis",
			Tracks: fullTracks,
			Content: "# Product Requirements Document\n\n## Executive Summary\n\n## Product Vision\n\n" +
				"## User Stories\n\n## Functional Requirements\n\n## Non-Functional Requirements\n\n" +
				"## Technical Constraints",
			Metadata: map[string]any{"required": true, "complexity": "advanced"},
		},
		{
			ID:     "architecture",
			Name:   "Technical Architecture",
			Type:   "ARCHITECTURE",
			Phase:  "solutioning",
			Tracks: fullTracks,
			Content: "# Technical Architecture Document\n\n## System Overview\n\n## Architecture Principles\n\n" +
				"## System Components\n\n## Data Flow\n\n## Security Architecture\n\n" +
				"## Deployment Architecture",
			Metadata: map[string]any{"required": true, "complexity": "advanced"},
		},
		{
			ID:     "user-stories",
			Name:   "User Stories",
			Type:   "USER_STORIES",
			Phase:  "planning",
			Tracks: allTracks,
			Content: "# User Stories\n\n## Epic 1: [Epic Name]\n\n### Story 1.1: [Story Name]\n" +
				"**As a** [user type]\n**I want** [functionality]\n**So that** [benefit]\n\n" +
				"#### Acceptance Criteria\n- [ ] Criterion 1\n- [ ] Criterion 2",
			Metadata: map[string]any{"required": true, "complexity": "intermediate"},
		},
		{
			ID:     "test-plan",
			Name:   "Test Plan",
			Type:   "TEST_PLAN",
			Phase:  "implementation",
			Tracks: fullTracks,
			Content: "# Test Plan\n\n## Test Strategy\n\n## Test Scope\n\n## Test Cases\n\n" +
				"## Test Environment\n\n## Test Schedule\n\n## Risk Assessment",
			Metadata: map[string]any{"required": false, "complexity": "intermediate"},
		},
	}

	for _, t := range templates {
		t.Metadata["source"] = "bmad_framework"
		t.Metadata["version"] = frameworkVersion
		t.Metadata["loaded_at"] = loadedAt.UTC().Format(time.RFC3339)
	}

	return templates
}

func builtinWorkflows() []*models.WorkflowDefinition {
	return []*models.WorkflowDefinition{
		{
			ID:     "quick-flow",
			Name:   "Quick Flow",
			Type:   models.WorkflowQuickFlow,
			Phases: []string{"analysis", "planning", "implementation"},
			PhaseTransitions: map[string][]string{
				"analysis":       {"planning"},
				"planning":       {"implementation"},
				"implementation": {},
			},
			Metadata: map[string]any{
				"description": "Rapid development track for simple projects",
				"complexity":  "low",
				"duration":    "1-2 weeks",
				"agent_count": "2-3",
			},
		},
		{
			ID:     "bmad-method",
			Name:   "BMad Method",
			Type:   models.WorkflowBMadMethod,
			Phases: []string{"analysis", "planning", "solutioning", "implementation"},
			PhaseTransitions: map[string][]string{
				"analysis":       {"planning"},
				"planning":       {"solutioning"},
				"solutioning":    {"implementation"},
				"implementation": {},
			},
			Metadata: map[string]any{
				"description": "Full BMad v6 methodology for complex projects",
				"complexity":  "high",
				"duration":    "4-12 weeks",
				"agent_count": "6-12",
			},
		},
		{
			ID:     "brownfield",
			Name:   "Brownfield",
			Type:   models.WorkflowBrownfield,
			Phases: []string{"analysis", "planning", "solutioning", "implementation"},
			PhaseTransitions: map[string][]string{
				"analysis":       {"planning"},
				"planning":       {"solutioning"},
				"solutioning":    {"implementation"},
				"implementation": {},
			},
			Metadata: map[string]any{
				"description": "Legacy system modernization track",
				"complexity":  "high",
				"duration":    "8-24 weeks",
				"agent_count": "8-12",
			},
		},
	}
}

func defaultConfig() map[string]any {
	return map[string]any{
		"project_name":     "BMad_v6_Platform",
		"user_skill_level": "intermediate",
		"bmad_folder":      "bmm",
		"version":          frameworkVersion,
	}
}
