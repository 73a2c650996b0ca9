package framework

import (
	"strings"

	"github.com/bmadhq/platform/pkg/models"
)

// Legacy agent files have no front matter; their metadata is recovered by
// scanning the markdown itself. The scan is tolerant: anything it cannot find
// stays empty and is later filled by applyDefaults.

func parseMarkdownAgent(id, content string) *models.AgentDefinition {
	agent := &models.AgentDefinition{ID: id}

	lines := strings.Split(content, "\n")

	var description strings.Builder

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch {
		case strings.HasPrefix(line, "# "):
			if agent.Name == "" {
				agent.Name = strings.TrimSpace(line[2:])
			}

		case strings.HasPrefix(line, "## Role") || strings.HasPrefix(line, "## Overview"):
			// First non-blank line under the heading is the role.
			for j := i + 1; j < len(lines); j++ {
				if text := strings.TrimSpace(lines[j]); text != "" {
					agent.Role = text

					break
				}
			}

		case strings.HasPrefix(line, "## Description") || strings.HasPrefix(line, "## Purpose"):
			// Description is bounded to the next few non-heading lines.
			for j := i + 1; j < len(lines) && j < i+5; j++ {
				text := strings.TrimSpace(lines[j])
				if text == "" || strings.HasPrefix(text, "#") {
					continue
				}

				if description.Len() > 0 {
					description.WriteByte(' ')
				}

				description.WriteString(text)
			}

		case strings.Contains(line, "Phases:") || strings.Contains(line, "Phase:"):
			agent.Phases = append(agent.Phases, parsePhaseList(line)...)

		case isCapabilitiesHeading(line):
			i = collectBullets(lines, i, &agent.Capabilities)

		case isContextHeading(line):
			i = collectBullets(lines, i, &agent.ContextRequirements)
		}
	}

	agent.Description = description.String()

	return agent
}

// parsePhaseList extracts the comma-separated phase names after "Phase(s):".
func parsePhaseList(line string) []string {
	_, after, found := strings.Cut(line, "Phases:")
	if !found {
		_, after, found = strings.Cut(line, "Phase:")
	}

	if !found {
		return nil
	}

	var phases []string

	for _, p := range strings.Split(after, ",") {
		p = strings.ToLower(strings.TrimSpace(strings.Trim(p, "*")))
		if p != "" {
			phases = append(phases, p)
		}
	}

	return phases
}

func isCapabilitiesHeading(line string) bool {
	return strings.HasPrefix(line, "#") &&
		(strings.Contains(line, "Capabilities") || strings.Contains(line, "Responsibilities"))
}

func isContextHeading(line string) bool {
	return strings.HasPrefix(line, "#") && strings.Contains(line, "Context Requirements")
}

// collectBullets gathers the bullet list immediately following a heading at
// index start, skipping blank lines before the first bullet. It returns the
// index of the last consumed line.
func collectBullets(lines []string, start int, into *[]string) int {
	i := start + 1

	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	for i < len(lines) {
		text := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(text, "- ") {
			break
		}

		*into = append(*into, strings.TrimSpace(text[2:]))
		i++
	}

	return i - 1
}
