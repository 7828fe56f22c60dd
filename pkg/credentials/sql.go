package credentials

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// memoryDSN keeps the table in process memory; credentials are not meant
// to outlive the process.
const memoryDSN = ":memory:"

// SQLStore keeps credentials in an in-memory SQLite database.
type SQLStore struct {
	db *sql.DB
}

// NewSQL opens an in-memory SQLite database and creates the schema.
func NewSQL() (*SQLStore, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("credentials: open db: %w", err)
	}
	// Every pooled connection to :memory: would get its own empty database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &SQLStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credentials: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS credentials (
		username   TEXT NOT NULL PRIMARY KEY CHECK(length(username) > 0),
		password   TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("credentials: create schema: %w", err)
	}
	return nil
}

// Authenticate inserts the row if absent, then compares. Rows are never
// updated, so the comparison after a lost insert race still sees the
// winner's password.
func (s *SQLStore) Authenticate(username, password string) (Result, error) {
	ctx := context.Background()

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO credentials (username, password) VALUES (?, ?)",
		username, password)
	if err != nil {
		return Rejected, fmt.Errorf("credentials: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Rejected, fmt.Errorf("credentials: rows affected: %w", err)
	}
	if n == 1 {
		return Registered, nil
	}

	var stored string
	err = s.db.QueryRowContext(ctx,
		"SELECT password FROM credentials WHERE username = ?", username).Scan(&stored)
	if err != nil {
		return Rejected, fmt.Errorf("credentials: lookup: %w", err)
	}
	if stored != password {
		return Rejected, nil
	}
	return Authenticated, nil
}

// Count returns the number of registered usernames.
func (s *SQLStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM credentials").Scan(&n); err != nil {
		return 0, fmt.Errorf("credentials: count: %w", err)
	}
	return n, nil
}

// Close closes the database; all credentials are gone afterwards.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
