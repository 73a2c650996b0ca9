package framework

import (
	"fmt"
	"strings"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Agent files carry their definition as YAML front matter delimited by "---"
// lines. The front matter is validated against a JSON schema before use so a
// malformed file fails loudly instead of producing a half-parsed agent.

const frontMatterDelimiter = "---"

const agentSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"name":                 {"type": "string"},
		"role":                 {"type": "string"},
		"description":          {"type": "string"},
		"phases":               {"type": "array", "items": {"type": "string"}},
		"capabilities":         {"type": "array", "items": {"type": "string"}},
		"context_requirements": {"type": "array", "items": {"type": "string"}},
		"specialist_for":       {"type": "array", "items": {"type": "string"}},
		"complexity_fit": {
			"type": "array",
			"items": {"type": "string", "enum": ["low", "medium", "high"]}
		},
		"seniority": {"type": "string", "enum": ["", "manager", "senior"]}
	}
}`

var agentSchema = gojsonschema.NewStringLoader(agentSchemaJSON)

type agentFrontMatter struct {
	Name                string   `yaml:"name"`
	Role                string   `yaml:"role"`
	Description         string   `yaml:"description"`
	Phases              []string `yaml:"phases"`
	Capabilities        []string `yaml:"capabilities"`
	ContextRequirements []string `yaml:"context_requirements"`
	SpecialistFor       []string `yaml:"specialist_for"`
	ComplexityFit       []string `yaml:"complexity_fit"`
	Seniority           string   `yaml:"seniority"`
}

// hasFrontMatter reports whether the file opens with a front matter block.
func hasFrontMatter(content string) bool {
	firstLine, _, _ := strings.Cut(content, "\n")

	return strings.TrimRight(firstLine, "\r") == frontMatterDelimiter
}

// splitFrontMatter separates the front matter block from the document body.
func splitFrontMatter(content string) (frontMatter, body string, err error) {
	_, rest, _ := strings.Cut(content, "\n")

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == frontMatterDelimiter {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}

	return "", "", fmt.Errorf("front matter block is not terminated")
}

// parseFrontMatterAgent builds an agent definition from a front matter file.
func parseFrontMatterAgent(id, content string) (*models.AgentDefinition, error) {
	raw, _, err := splitFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", id, err)
	}

	var document map[string]any
	if err := yaml.Unmarshal([]byte(raw), &document); err != nil {
		return nil, fmt.Errorf("agent %s: invalid front matter: %w", id, err)
	}

	result, err := gojsonschema.Validate(agentSchema, gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("agent %s: schema validation: %w", id, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("agent %s: invalid definition: %s", id, strings.Join(details, "; "))
	}

	var fm agentFrontMatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("agent %s: invalid front matter: %w", id, err)
	}

	agent := &models.AgentDefinition{
		ID:                  id,
		Name:                fm.Name,
		Role:                fm.Role,
		Description:         fm.Description,
		Capabilities:        fm.Capabilities,
		ContextRequirements: fm.ContextRequirements,
		SpecialistFor:       fm.SpecialistFor,
		Seniority:           fm.Seniority,
	}

	for _, p := range fm.Phases {
		agent.Phases = append(agent.Phases, strings.ToLower(strings.TrimSpace(p)))
	}

	for _, tier := range fm.ComplexityFit {
		agent.ComplexityFit = append(agent.ComplexityFit, models.ComplexityTier(tier))
	}

	return agent, nil
}
