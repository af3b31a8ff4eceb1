package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"baureport/internal/model"
)

type migrationStep struct {
	Name string
	SQL  string
}

// partitionSteps builds the schema steps for one report table. All steps are
// idempotent: tables and indexes are created IF NOT EXISTS, later columns are
// added IF NOT EXISTS. Nothing here may drop or truncate data.
func partitionSteps(table string) []migrationStep {
	return []migrationStep{
		{
			Name: "create_table_" + table,
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id             UUID        PRIMARY KEY,
  client_code    TEXT        NOT NULL,
  client_name    TEXT        NOT NULL DEFAULT '',
  employees_json TEXT        NOT NULL DEFAULT '[]',
  report_number  INTEGER     NOT NULL CHECK (report_number > 0),
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  file_name      TEXT        NOT NULL DEFAULT '',
  storage_path   TEXT        NOT NULL DEFAULT '',
  file_url       TEXT        NOT NULL DEFAULT ''
);`, table),
		},
		{
			// The real uniqueness guarantee for the numbering namespace.
			// Allocation reads can race; this index settles the winner.
			Name: "create_unique_index_" + table + "_number",
			SQL: fmt.Sprintf(
				`CREATE UNIQUE INDEX IF NOT EXISTS uq_%s_client_number ON %s (client_code, report_number);`,
				table, table),
		},
		{
			Name: "add_column_" + table + "_work_date",
			SQL:  fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS work_date TEXT NOT NULL DEFAULT '';`, table),
		},
		{
			Name: "add_column_" + table + "_work_hours",
			SQL:  fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS work_hours TEXT NOT NULL DEFAULT '';`, table),
		},
		{
			Name: "add_column_" + table + "_extra_notes",
			SQL:  fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS extra_notes TEXT NOT NULL DEFAULT '';`, table),
		},
		{
			Name: "create_index_" + table + "_client_code",
			SQL:  fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_client_code ON %s (client_code);`, table, table),
		},
	}
}

// EnsureMigrated sets up the schema for every report partition. A failure is
// fatal for startup; per-request code never touches migrations.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	for _, docType := range model.AllDocumentTypes {
		table := docType.TableName()
		for _, step := range partitionSteps(table) {
			stepStart := time.Now()
			_, err := db.ExecContext(ctx, step.SQL)
			if err != nil {
				logJSON(loc, map[string]any{
					"component":        "database",
					"event":            "db_migration_failed",
					"status":           "error",
					"migration_step":   step.Name,
					"error_message":    err.Error(),
					"db_host":          dbHost,
					"duration_ms":      time.Since(start).Milliseconds(),
					"step_duration_ms": time.Since(stepStart).Milliseconds(),
				})
				return fmt.Errorf("migration step %s failed: %w", step.Name, err)
			}

			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_step",
				"status":           "success",
				"migration_step":   step.Name,
				"db_host":          dbHost,
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
		}
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
