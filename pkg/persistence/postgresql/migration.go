package postgresql

// migrations returns the ordered schema migration set.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflow_instances (
				id UUID PRIMARY KEY,
				owner_id TEXT NOT NULL,
				project_id TEXT,
				project_name TEXT NOT NULL,
				workflow_type TEXT NOT NULL,
				current_phase TEXT NOT NULL,
				phase_progress JSONB NOT NULL DEFAULT '{}',
				active_agents JSONB NOT NULL DEFAULT '[]',
				context JSONB NOT NULL DEFAULT '{}',
				version BIGINT NOT NULL DEFAULT 1,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_workflow_instances_owner
				ON workflow_instances (owner_id, created_at DESC);

			CREATE TABLE IF NOT EXISTS telemetry_events (
				id UUID PRIMARY KEY,
				event_type TEXT NOT NULL,
				user_id TEXT NOT NULL,
				data JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_telemetry_events_type
				ON telemetry_events (event_type, created_at DESC);
		`,
	}
}
