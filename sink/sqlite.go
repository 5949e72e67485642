package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hrtools/onboardbot/types"
)

// SQLite persists records into an employees table.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode so the API's reads don't block saves.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		designation TEXT NOT NULL,
		salary REAL NOT NULL,
		created_at INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, records []types.EmployeeRecord) Outcome {
	if len(records) == 0 {
		return Outcome{Message: "No data to save.", OK: true}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
	}
	now := time.Now().Unix()
	for _, rec := range records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO employees (name, phone, designation, salary, created_at) VALUES (?, ?, ?, ?, ?)`,
			rec.Name, rec.Phone, rec.Designation, rec.Salary, now,
		)
		if err != nil {
			_ = tx.Rollback()
			return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
	}
	return Outcome{Message: saveMessage(len(records), "the database"), OK: true}
}

func (s *SQLite) Load(ctx context.Context) ([]types.EmployeeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, phone, designation, salary FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []types.EmployeeRecord
	for rows.Next() {
		var rec types.EmployeeRecord
		if err := rows.Scan(&rec.Name, &rec.Phone, &rec.Designation, &rec.Salary); err != nil {
			return nil, fmt.Errorf("scan employee row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employee rows: %w", err)
	}
	return out, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func saveMessage(n int, where string) string {
	return fmt.Sprintf("Successfully saved %d employee(s) to %s.", n, where)
}
