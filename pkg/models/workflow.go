package models

import (
	"errors"
	"fmt"
)

// WorkflowType identifies one of the built-in workflow kinds.
type WorkflowType string

const (
	WorkflowQuickFlow  WorkflowType = "quick_flow"
	WorkflowBMadMethod WorkflowType = "bmad_method"
	WorkflowBrownfield WorkflowType = "brownfield"
)

// WorkflowTypes returns the closed set of built-in workflow kinds.
func WorkflowTypes() []WorkflowType {
	return []WorkflowType{WorkflowQuickFlow, WorkflowBMadMethod, WorkflowBrownfield}
}

// WorkflowDefinition is a static workflow description: an ordered phase list
// plus an explicit phase-transition adjacency map. The first declared phase is
// the initial phase; phases with an empty transition set are terminal.
type WorkflowDefinition struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   WorkflowType `json:"type"`
	Phases []string     `json:"phases"`

	// PhaseTransitions maps each phase to the phases directly reachable
	// from it. The terminal phase maps to an empty list.
	PhaseTransitions map[string][]string `json:"phase_transitions"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// InitialPhase returns the first declared phase, or "" for an empty definition.
func (w *WorkflowDefinition) InitialPhase() string {
	if len(w.Phases) == 0 {
		return ""
	}

	return w.Phases[0]
}

// HasPhase reports whether the phase belongs to this workflow.
func (w *WorkflowDefinition) HasPhase(phase string) bool {
	for _, p := range w.Phases {
		if p == phase {
			return true
		}
	}

	return false
}

// CanTransition reports whether moving from one phase to another is an
// explicitly enumerated edge.
func (w *WorkflowDefinition) CanTransition(from, to string) bool {
	for _, next := range w.PhaseTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether the phase has no outgoing transitions.
func (w *WorkflowDefinition) IsTerminal(phase string) bool {
	return len(w.PhaseTransitions[phase]) == 0
}

// Validate checks the structural invariants of a workflow definition: a
// non-empty duplicate-free phase list, a transition map closed over the
// declared phases, at least one outgoing edge per non-terminal phase, and an
// acyclic transition graph.
func (w *WorkflowDefinition) Validate() error {
	if w.Type == "" {
		return errors.New("workflow definition requires a type")
	}

	if len(w.Phases) == 0 {
		return fmt.Errorf("workflow %s declares no phases", w.Type)
	}

	seen := make(map[string]bool, len(w.Phases))
	for _, p := range w.Phases {
		if seen[p] {
			return fmt.Errorf("workflow %s declares phase %q twice", w.Type, p)
		}

		seen[p] = true
	}

	for from, targets := range w.PhaseTransitions {
		if !seen[from] {
			return fmt.Errorf("workflow %s maps transitions for unknown phase %q", w.Type, from)
		}

		for _, to := range targets {
			if !seen[to] {
				return fmt.Errorf("workflow %s allows transition %q -> %q to an unknown phase", w.Type, from, to)
			}
		}
	}

	terminal := 0

	for _, p := range w.Phases {
		if len(w.PhaseTransitions[p]) == 0 {
			terminal++
		}
	}

	if terminal == 0 {
		return fmt.Errorf("workflow %s has no terminal phase", w.Type)
	}

	if w.hasCycle() {
		return fmt.Errorf("workflow %s transition graph contains a cycle", w.Type)
	}

	return nil
}

// hasCycle runs a depth-first search over the transition graph.
func (w *WorkflowDefinition) hasCycle() bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make(map[string]int, len(w.Phases))

	var visit func(phase string) bool

	visit = func(phase string) bool {
		switch state[phase] {
		case visiting:
			return true
		case done:
			return false
		}

		state[phase] = visiting

		for _, next := range w.PhaseTransitions[phase] {
			if visit(next) {
				return true
			}
		}

		state[phase] = done

		return false
	}

	for _, p := range w.Phases {
		if visit(p) {
			return true
		}
	}

	return false
}
