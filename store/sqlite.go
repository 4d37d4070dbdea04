package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lixenwraith/composure/metrics"
)

// SQLite keeps one row per record with the JSON payload of the persisted schema
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at dbPath
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer, the session appends once
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS assessments (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  recorded_at TEXT NOT NULL,
  composite REAL NOT NULL,
  payload TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create assessments table: %w", err)
	}
	return nil
}

// Append inserts rec as a new row
func (s *SQLite) Append(ctx context.Context, rec metrics.AssessmentRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	const stmt = `INSERT INTO assessments (id, recorded_at, composite, payload) VALUES (?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, stmt,
		uuid.New().String(),
		time.Now().UTC().Format(time.RFC3339),
		rec.NeuroticismScore,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// Load returns all rows in insertion order, skipping rows that do not decode
func (s *SQLite) Load(ctx context.Context) ([]metrics.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM assessments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	records := []metrics.AssessmentRecord{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		var rec metrics.AssessmentRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			log.Printf("store: skipping unreadable assessment %s: %v", id, err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return records, nil
}

// Close releases the database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}
