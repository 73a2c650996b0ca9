// Package framework loads the BMad framework catalog: agent definitions from
// disk plus the built-in template and workflow catalogs.
package framework

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmadhq/platform/pkg/models"
	"gopkg.in/yaml.v3"
)

// LoadError reports which catalog section failed to build.
type LoadError struct {
	Section string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s failed: %v", e.Section, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads the framework directory and assembles a catalog snapshot.
// Loads are idempotent and side-effect-free on the source files.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a loader rooted at the framework directory. Agent files
// live under <path>/agents, the optional config at <path>/config.yaml.
func NewLoader(logger *slog.Logger, path string) *Loader {
	return &Loader{
		path:   path,
		logger: logger.With("module", "framework"),
	}
}

// Load builds a fresh catalog. Agent directory I/O errors abort the whole
// load; the built-in template and workflow catalogs cannot fail outside of a
// programming error, which Validate catches defensively.
func (l *Loader) Load(ctx context.Context) (*models.Catalog, error) {
	loadedAt := time.Now().UTC()

	agents, err := l.loadAgents(ctx, loadedAt)
	if err != nil {
		return nil, &LoadError{Section: "agents", Err: err}
	}

	workflows := builtinWorkflows()
	for _, w := range workflows {
		if err := w.Validate(); err != nil {
			return nil, &LoadError{Section: "workflows", Err: err}
		}
	}

	catalog := &models.Catalog{
		Agents:    agents,
		Templates: builtinTemplates(loadedAt),
		Workflows: workflows,
		Config:    l.loadConfig(ctx),
		LoadedAt:  loadedAt,
	}

	l.logger.InfoContext(ctx, "Framework catalog loaded",
		"agents", len(catalog.Agents),
		"templates", len(catalog.Templates),
		"workflows", len(catalog.Workflows),
	)

	return catalog, nil
}

func (l *Loader) loadAgents(ctx context.Context, loadedAt time.Time) ([]*models.AgentDefinition, error) {
	agentsDir := filepath.Join(l.path, "agents")

	entries, err := os.ReadDir(agentsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent directory %s: %w", agentsDir, err)
	}

	agents := make([]*models.AgentDefinition, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(agentsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read agent file %s: %w", entry.Name(), err)
		}

		id := strings.TrimSuffix(entry.Name(), ".md")
		content := string(raw)

		var agent *models.AgentDefinition

		if hasFrontMatter(content) {
			agent, err = parseFrontMatterAgent(id, content)
			if err != nil {
				return nil, err
			}
		} else {
			agent = parseMarkdownAgent(id, content)
		}

		l.finishAgent(agent, loadedAt)
		agents = append(agents, agent)

		l.logger.DebugContext(ctx, "Loaded agent definition", "agent", agent.ID)
	}

	return agents, nil
}

// finishAgent fills display fallbacks, declarative selection defaults and
// load metadata.
func (l *Loader) finishAgent(agent *models.AgentDefinition, loadedAt time.Time) {
	if agent.Name == "" {
		agent.Name = agent.ID
	}

	if agent.Role == "" {
		agent.Role = fmt.Sprintf("BMad v6 %s agent", agent.ID)
	}

	applyDefaults(agent)

	agent.Metadata = map[string]any{
		"source":    "bmm_framework",
		"version":   frameworkVersion,
		"loaded_at": loadedAt.UTC().Format(time.RFC3339),
	}
}

// loadConfig reads the optional framework config. Any failure degrades to the
// built-in defaults with a warning.
func (l *Loader) loadConfig(ctx context.Context) map[string]any {
	raw, err := os.ReadFile(filepath.Join(l.path, "config.yaml"))
	if err != nil {
		l.logger.WarnContext(ctx, "Framework config not readable, using defaults", "error", err)

		return defaultConfig()
	}

	var config map[string]any
	if err := yaml.Unmarshal(raw, &config); err != nil {
		l.logger.WarnContext(ctx, "Framework config not parsable, using defaults", "error", err)

		return defaultConfig()
	}

	return config
}
