package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// tables is the DDL in dependency order. The {{...}} markers are replaced by
// the dialect's column types.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id {{pk}},
		owner_id {{fk}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'planning',
		start_date {{ts}},
		end_date {{ts}},
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id {{pk}},
		project_id {{fk}} NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'todo',
		progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
		estimated_hours {{float}},
		actual_hours {{float}},
		deadline {{ts}},
		last_progress_update {{ts}},
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS forecast_logs (
		id {{pk}},
		task_id {{fk}} NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		risk_level TEXT NOT NULL,
		risk_percentage {{float}} NOT NULL DEFAULT 0,
		predicted_delay_days INTEGER NOT NULL DEFAULT 0,
		analysis TEXT NOT NULL DEFAULT '',
		recommendations TEXT,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_logs (
		id {{pk}},
		project_id {{fk}} NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		scenario TEXT NOT NULL,
		affected_task_ids {{json}} NOT NULL DEFAULT '[]',
		total_delay_days INTEGER NOT NULL DEFAULT 0,
		analysis TEXT NOT NULL DEFAULT '',
		recommendations TEXT,
		simulated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_forecast_logs_task ON forecast_logs(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_simulation_logs_project ON simulation_logs(project_id)`,
}

var dialects = map[string]*strings.Replacer{
	DriverPostgres: strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{fk}}", "BIGINT",
		"{{ts}}", "TIMESTAMPTZ",
		"{{float}}", "DOUBLE PRECISION",
		"{{json}}", "JSONB",
	),
	DriverSQLite: strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{fk}}", "INTEGER",
		"{{ts}}", "TIMESTAMP",
		"{{float}}", "REAL",
		"{{json}}", "TEXT",
	),
}

// Statements returns the DDL for driver.
func Statements(driver string) ([]string, error) {
	r, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = r.Replace(t)
	}
	return out, nil
}

// ApplySchema creates every table and index that does not exist yet. It runs
// in one transaction and can be repeated safely.
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	stmts, err := Statements(db.DriverName())
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}
