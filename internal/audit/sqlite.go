package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/torii-sec/mamori/internal/models"
)

// SQLiteSink archives audit entries to a SQLite database so the trail
// survives process restarts and in-memory log truncation.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens or creates the archive database at dbPath.
// Parent directories are created if they do not exist.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at TIMESTAMP NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_events(recorded_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Write archives a single entry.
func (s *SQLiteSink) Write(entry models.AuditEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO audit_events (recorded_at, severity, message) VALUES (?, ?, ?)`,
		entry.Time, string(entry.Severity), entry.Message,
	)
	return err
}

// Recent returns up to n archived entries, most recent first.
func (s *SQLiteSink) Recent(n int) ([]models.AuditEntry, error) {
	rows, err := s.db.Query(
		`SELECT recorded_at, severity, message FROM audit_events
		 ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var sev string
		if err := rows.Scan(&e.Time, &sev, &e.Message); err != nil {
			return nil, err
		}
		e.Severity = models.Severity(sev)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
