package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dailytrivia/internal/core"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps games and the ledger in one SQLite database so a commit
// is a single database transaction.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite store requires a database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *SQLiteStore) initialize() error {
	gamesTable := `
	CREATE TABLE IF NOT EXISTS games (
		date TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME
	);`

	// Ledger rowid order is insertion order.
	ledgerTable := `
	CREATE TABLE IF NOT EXISTS used_clues (
		entry TEXT PRIMARY KEY,
		clue TEXT NOT NULL,
		answer TEXT NOT NULL,
		game_id TEXT,
		used_at DATETIME
	);`

	tables := []string{gamesTable, ledgerTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// HasGame reports whether a game row exists for the date.
func (s *SQLiteStore) HasGame(ctx context.Context, date string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM games WHERE date = ?", date).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query game: %w", err)
	}
	return count > 0, nil
}

// GetGame loads the game stored for the date.
func (s *SQLiteStore) GetGame(ctx context.Context, date string) (*core.Game, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM games WHERE date = ?", date).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", date, ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game: %w", err)
	}

	var game core.Game
	if err := json.Unmarshal([]byte(payload), &game); err != nil {
		return nil, fmt.Errorf("failed to decode game for %s: %w", date, err)
	}
	return &game, nil
}

// ListGames returns every stored game ordered by date.
func (s *SQLiteStore) ListGames(ctx context.Context) ([]core.Game, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM games ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []core.Game
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		var game core.Game
		if err := json.Unmarshal([]byte(payload), &game); err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// UsedKeys returns the ledger in insertion order.
func (s *SQLiteStore) UsedKeys(ctx context.Context) ([]core.ClueKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT clue, answer FROM used_clues ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var keys []core.ClueKey
	for rows.Next() {
		var key core.ClueKey
		if err := rows.Scan(&key.Clue, &key.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Commit stores the game and its ledger entries in one transaction.
func (s *SQLiteStore) Commit(ctx context.Context, game core.Game, keys []core.ClueKey) error {
	if err := validateGame(game); err != nil {
		return err
	}

	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO games (date, id, payload, created_at) VALUES (?, ?, ?, ?)",
		game.Date, game.ID, string(payload), now,
	); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO used_clues (entry, clue, answer, game_id, used_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, key.String(), key.Clue, key.Answer, game.ID, now); err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Stats returns game and ledger counts.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&stats.Games); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM used_clues").Scan(&stats.LedgerEntries); err != nil {
		return nil, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	if stats.Games > 0 {
		if err := s.db.QueryRowContext(ctx, "SELECT MIN(date), MAX(date) FROM games").Scan(&stats.FirstDate, &stats.LastDate); err != nil {
			return nil, fmt.Errorf("failed to query date range: %w", err)
		}
	}
	return stats, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
