package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/persistence"
)

// InstanceRepository handles workflow-instance database operations.
type InstanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewInstanceRepository(db *sql.DB, logger *slog.Logger) *InstanceRepository {
	return &InstanceRepository{db: db, logger: logger}
}

const instanceColumns = `
	id
  , owner_id
  , project_id
  , project_name
  , workflow_type
  , current_phase
  , phase_progress
  , active_agents
  , context
  , version
  , created_at
  , updated_at
`

func (r *InstanceRepository) Create(ctx context.Context, instance *models.WorkflowInstance) error {
	if instance.Version == 0 {
		instance.Version = 1
	}

	progress, agents, instanceContext, err := encodeInstanceJSON(instance)
	if err != nil {
		return persistence.NewInstanceError("Create", instance.ID, err)
	}

	query := `
		INSERT INTO workflow_instances (` + instanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		instance.ID,
		instance.OwnerID,
		instance.ProjectID,
		instance.ProjectName,
		string(instance.Type),
		instance.CurrentPhase,
		progress,
		agents,
		instanceContext,
		instance.Version,
		instance.CreatedAt,
		instance.UpdatedAt,
	)
	if err != nil {
		return persistence.NewInstanceError("Create", instance.ID, err)
	}

	return nil
}

func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM workflow_instances WHERE id = $1`

	instance, err := scanInstance(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewInstanceError("GetByID", id, persistence.ErrInstanceNotFound)
		}

		return nil, persistence.NewInstanceError("GetByID", id, err)
	}

	return instance, nil
}

func (r *InstanceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.WorkflowInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM workflow_instances
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	instances := make([]*models.WorkflowInstance, 0)

	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}

		instances = append(instances, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instances: %w", err)
	}

	return instances, nil
}

// Update writes the instance guarded by the version column. RowsAffected of
// zero means either the row is gone or another writer got there first.
func (r *InstanceRepository) Update(ctx context.Context, instance *models.WorkflowInstance) error {
	progress, agents, instanceContext, err := encodeInstanceJSON(instance)
	if err != nil {
		return persistence.NewInstanceError("Update", instance.ID, err)
	}

	query := `
		UPDATE workflow_instances
		SET current_phase = $1
		  , phase_progress = $2
		  , active_agents = $3
		  , context = $4
		  , updated_at = $5
		  , version = version + 1
		WHERE id = $6 AND version = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		instance.CurrentPhase,
		progress,
		agents,
		instanceContext,
		instance.UpdatedAt,
		instance.ID,
		instance.Version,
	)
	if err != nil {
		return persistence.NewInstanceError("Update", instance.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewInstanceError("Update", instance.ID, err)
	}

	if affected == 0 {
		if _, err := r.GetByID(ctx, instance.ID); err != nil {
			return persistence.NewInstanceError("Update", instance.ID, persistence.ErrInstanceNotFound)
		}

		return persistence.NewInstanceError("Update", instance.ID, persistence.ErrStaleInstance)
	}

	instance.Version++

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (*models.WorkflowInstance, error) {
	var (
		instance        models.WorkflowInstance
		workflowType    string
		progress        []byte
		agents          []byte
		instanceContext []byte
	)

	err := row.Scan(
		&instance.ID,
		&instance.OwnerID,
		&instance.ProjectID,
		&instance.ProjectName,
		&workflowType,
		&instance.CurrentPhase,
		&progress,
		&agents,
		&instanceContext,
		&instance.Version,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	instance.Type = models.WorkflowType(workflowType)

	if err := json.Unmarshal(progress, &instance.PhaseProgress); err != nil {
		return nil, fmt.Errorf("failed to decode phase progress: %w", err)
	}

	if err := json.Unmarshal(agents, &instance.ActiveAgents); err != nil {
		return nil, fmt.Errorf("failed to decode active agents: %w", err)
	}

	if err := json.Unmarshal(instanceContext, &instance.Context); err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}

	return &instance, nil
}

func encodeInstanceJSON(instance *models.WorkflowInstance) (progress, agents, instanceContext []byte, err error) {
	if instance.PhaseProgress == nil {
		instance.PhaseProgress = map[string]models.PhaseCompletion{}
	}

	if instance.ActiveAgents == nil {
		instance.ActiveAgents = []string{}
	}

	if instance.Context == nil {
		instance.Context = map[string]any{}
	}

	progress, err = json.Marshal(instance.PhaseProgress)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode phase progress: %w", err)
	}

	agents, err = json.Marshal(instance.ActiveAgents)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode active agents: %w", err)
	}

	instanceContext, err = json.Marshal(instance.Context)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode context: %w", err)
	}

	return progress, agents, instanceContext, nil
}
