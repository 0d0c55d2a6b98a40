// internal/common/database/schema.go
package database

import (
	"context"
	"fmt"
)

// AssessmentsTable holds one row per processed submission.
const AssessmentsTable = "assessments"

var assessmentSchema = []string{
	`CREATE TABLE IF NOT EXISTS assessments (
		id               UUID PRIMARY KEY,
		email            TEXT NOT NULL,
		first_name       TEXT NOT NULL DEFAULT '',
		last_name        TEXT NOT NULL DEFAULT '',
		company_name     TEXT NOT NULL DEFAULT '',
		company_industry TEXT NOT NULL DEFAULT '',
		data             JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_email ON assessments (email)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments (created_at DESC)`,
}

// EnsureAssessmentSchema creates the assessments table and its indexes if missing.
func (c *PostgresClient) EnsureAssessmentSchema(ctx context.Context) error {
	for _, stmt := range assessmentSchema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply assessment schema: %w", err)
		}
	}
	return nil
}
