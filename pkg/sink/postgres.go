package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"course-search/pkg/db"
	"course-search/pkg/domain"
)

// Postgres persists extracted records into a Postgres table, so a relational
// copy of the extraction output is available to downstream tooling. Works
// against any db.DBProvider (direct Postgres or Supabase).
type Postgres struct {
	pg db.DBProvider
}

// NewPostgres creates a Postgres record sink.
func NewPostgres(pg db.DBProvider) (*Postgres, error) {
	if pg == nil {
		return nil, fmt.Errorf("postgres provider is required")
	}
	return &Postgres{pg: pg}, nil
}

// SaveRecords ensures the schema and inserts all records in one transaction.
func (s *Postgres) SaveRecords(ctx context.Context, records []domain.ContentRecord) error {
	if s.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	if err := s.insertRecordsTx(ctx, records); err != nil {
		return err
	}

	log.Printf("Saved %d records to Postgres", len(records))
	return nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	// Source paths are provenance keys, not unique, so rows get a
	// surrogate key and each run appends a fresh snapshot.
	const ddl = `
CREATE TABLE IF NOT EXISTS content_record (
  id BIGSERIAL PRIMARY KEY,
  course_id TEXT NOT NULL,
  block_type TEXT NOT NULL,
  display_name TEXT NOT NULL DEFAULT '',
  module TEXT NOT NULL DEFAULT '',
  section TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  text TEXT NOT NULL,
  extracted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

	if _, err := s.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create content_record table: %w", err)
	}
	return nil
}

// insertRecordsTx inserts a batch of records within a transaction.
func (s *Postgres) insertRecordsTx(ctx context.Context, records []domain.ContentRecord) error {
	tx, err := s.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertQuery = `
INSERT INTO content_record (course_id, block_type, display_name, module, section, source, text)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		m := r.Metadata
		if _, err := stmt.ExecContext(ctx, m.CourseID, m.BlockType, m.DisplayName, m.Module, m.Section, m.Source, r.Text); err != nil {
			return fmt.Errorf("insert record source=%q: %w", m.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
