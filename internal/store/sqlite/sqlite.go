package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS banned_nicks (
	nick       TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS muted_nicks (
	nick       TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadBans returns every banned nickname.
func (s *SQLiteStore) LoadBans(ctx context.Context) ([]string, error) {
	return s.loadNicks(ctx, "banned_nicks")
}

// LoadMutes returns every muted nickname.
func (s *SQLiteStore) LoadMutes(ctx context.Context) ([]string, error) {
	return s.loadNicks(ctx, "muted_nicks")
}

// AddBan records a ban. Idempotent.
func (s *SQLiteStore) AddBan(ctx context.Context, nick string) error {
	return s.addNick(ctx, "banned_nicks", nick)
}

// RemoveBan lifts a ban. Removing an absent nick is not an error.
func (s *SQLiteStore) RemoveBan(ctx context.Context, nick string) error {
	return s.removeNick(ctx, "banned_nicks", nick)
}

// AddMute records a mute. Idempotent.
func (s *SQLiteStore) AddMute(ctx context.Context, nick string) error {
	return s.addNick(ctx, "muted_nicks", nick)
}

// RemoveMute lifts a mute. Removing an absent nick is not an error.
func (s *SQLiteStore) RemoveMute(ctx context.Context, nick string) error {
	return s.removeNick(ctx, "muted_nicks", nick)
}

func (s *SQLiteStore) loadNicks(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT nick FROM "+table+" ORDER BY nick")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var nicks []string
	for rows.Next() {
		var nick string
		if err := rows.Scan(&nick); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		nicks = append(nicks, nick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return nicks, nil
}

func (s *SQLiteStore) addNick(ctx context.Context, table, nick string) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO "+table+" (nick) VALUES (?)", nick)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) removeNick(ctx context.Context, table, nick string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE nick = ?", nick)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}
