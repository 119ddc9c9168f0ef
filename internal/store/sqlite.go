// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Persists bot records with automatic schema creation and offline reset

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist, and any bot left
// in a non-offline state by a previous process is reset to offline.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Sessions do not survive the process, so neither does connection state.
	if _, err := db.Exec(`UPDATE bots SET state = ?`, StateOffline); err != nil {
		db.Close()
		return nil, fmt.Errorf("resetting connection states: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS bots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			token TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT 'offline',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ListBots returns all registered bots ordered by creation time.
func (s *SQLiteStore) ListBots(ctx context.Context) ([]*BotRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, token, state FROM bots ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing bots: %w", err)
	}
	defer rows.Close()

	var bots []*BotRecord
	for rows.Next() {
		b := &BotRecord{}
		var state string
		if err := rows.Scan(&b.ID, &b.Name, &b.Token, &state); err != nil {
			return nil, fmt.Errorf("scanning bot row: %w", err)
		}
		b.State = ConnectionState(state)
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

// GetBot returns a bot by id, or ErrNotFound.
func (s *SQLiteStore) GetBot(ctx context.Context, id string) (*BotRecord, error) {
	b := &BotRecord{}
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, token, state FROM bots WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Token, &state)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting bot: %w", err)
	}
	b.State = ConnectionState(state)
	return b, nil
}

// CreateBot inserts a new bot record.
func (s *SQLiteStore) CreateBot(ctx context.Context, bot *BotRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bots (id, name, token, state) VALUES (?, ?, ?, ?)`,
		bot.ID, bot.Name, bot.Token, string(bot.State))
	if err != nil {
		return fmt.Errorf("inserting bot: %w", err)
	}
	return nil
}

// UpdateBot applies a partial update and returns the updated record.
func (s *SQLiteStore) UpdateBot(ctx context.Context, id string, upd BotUpdate) (*BotRecord, error) {
	b, err := s.GetBot(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Token != nil {
		b.Token = *upd.Token
	}
	if upd.State != nil {
		b.State = *upd.State
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE bots SET name = ?, token = ?, state = ? WHERE id = ?`,
		b.Name, b.Token, string(b.State), id)
	if err != nil {
		return nil, fmt.Errorf("updating bot: %w", err)
	}
	return b, nil
}

// DeleteBot removes a bot record.
func (s *SQLiteStore) DeleteBot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting bot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting bot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
