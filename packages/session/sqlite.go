package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const createTable = `CREATE TABLE IF NOT EXISTS sessions (
	owner    TEXT PRIMARY KEY,
	id       TEXT NOT NULL,
	cookies  TEXT NOT NULL,
	pub_key  TEXT NOT NULL,
	saved_at INTEGER NOT NULL
)`

// SQLiteStore persists sessions in a SQLite database
type SQLiteStore struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewSQLiteStore opens the database named by connectionString and creates
// the sessions table if needed.
// Supported formats:
// - sqlite://path/to/sessions.db
// - sqlite:./sessions.db
// - a bare file path
func NewSQLiteStore(connectionString string) (*SQLiteStore, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to session database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, owner string, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	cookies, err := json.Marshal(sess.Cookies)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (owner, id, cookies, pub_key, saved_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			id = excluded.id,
			cookies = excluded.cookies,
			pub_key = excluded.pub_key,
			saved_at = excluded.saved_at`,
		owner, sess.ID, string(cookies), sess.Key, sess.SavedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, owner string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var (
		sess    Session
		cookies string
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, cookies, pub_key, saved_at FROM sessions WHERE owner = ?`, owner,
	).Scan(&sess.ID, &cookies, &sess.Key, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal([]byte(cookies), &sess.Cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookies: %w", err)
	}
	sess.SavedAt = time.Unix(savedAt, 0)

	return &sess, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Owners lists every owner with a saved session
func (s *SQLiteStore) Owners(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT owner FROM sessions ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return owners, nil
}

func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	switch {
	case connStr == "":
		return "", fmt.Errorf("empty session database connection string")
	case strings.HasPrefix(connStr, "sqlite://"):
		return strings.TrimPrefix(connStr, "sqlite://"), nil
	case strings.HasPrefix(connStr, "sqlite:"):
		return strings.TrimPrefix(connStr, "sqlite:"), nil
	case strings.Contains(connStr, "://"):
		return "", fmt.Errorf("unsupported session database scheme: %s", connStr[:strings.Index(connStr, "://")])
	}
	return connStr, nil
}
