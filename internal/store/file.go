package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dailytrivia/internal/core"
	"dailytrivia/internal/logger"
)

// FileStore keeps one JSON file per game, named <date>.json, and the ledger
// as a JSON array of "<clue>|<answer>" strings.
type FileStore struct {
	gamesDir   string
	ledgerPath string
	mu         sync.Mutex
}

// NewFileStore creates a file store, creating the games directory and the
// ledger's parent directory.
func NewFileStore(gamesDir, ledgerPath string) (*FileStore, error) {
	if gamesDir == "" || ledgerPath == "" {
		return nil, fmt.Errorf("file store requires a games directory and a ledger path")
	}
	if err := os.MkdirAll(gamesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create games directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ledgerPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &FileStore{gamesDir: gamesDir, ledgerPath: ledgerPath}, nil
}

func (s *FileStore) gamePath(date string) string {
	return filepath.Join(s.gamesDir, date+".json")
}

// HasGame reports whether a game file exists for the date.
func (s *FileStore) HasGame(_ context.Context, date string) (bool, error) {
	_, err := os.Stat(s.gamePath(date))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat game file: %w", err)
}

// GetGame reads the game stored for the date.
func (s *FileStore) GetGame(_ context.Context, date string) (*core.Game, error) {
	data, err := os.ReadFile(s.gamePath(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", date, ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}

	var game core.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to parse game file for %s: %w", date, err)
	}
	return &game, nil
}

// ListGames returns every stored game ordered by date. Unreadable files are
// skipped with a warning.
func (s *FileStore) ListGames(ctx context.Context) ([]core.Game, error) {
	entries, err := os.ReadDir(s.gamesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read games directory: %w", err)
	}

	var games []core.Game
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		game, err := s.GetGame(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			logger.Warn("Skipping unreadable game file", "file", name, "error", err)
			continue
		}
		games = append(games, *game)
	}
	sortGames(games)
	return games, nil
}

// UsedKeys reads the ledger. A missing ledger is empty.
func (s *FileStore) UsedKeys(_ context.Context) ([]core.ClueKey, error) {
	entries, err := s.readLedger()
	if err != nil {
		return nil, err
	}

	keys := make([]core.ClueKey, 0, len(entries))
	for _, entry := range entries {
		key, err := core.ParseClueKey(entry)
		if err != nil {
			return nil, fmt.Errorf("corrupt ledger %s: %w", s.ledgerPath, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *FileStore) readLedger() ([]string, error) {
	data, err := os.ReadFile(s.ledgerPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", s.ledgerPath, err)
	}
	return entries, nil
}

// Commit writes the game file, then the extended ledger. Both writes go
// through a temp file and rename. If the ledger write fails the game file is
// restored to its previous state.
func (s *FileStore) Commit(ctx context.Context, game core.Game, keys []core.ClueKey) error {
	if err := validateGame(game); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLedger()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e] = true
	}
	for _, key := range keys {
		entry := key.String()
		if !seen[entry] {
			seen[entry] = true
			entries = append(entries, entry)
		}
	}
	if entries == nil {
		entries = []string{}
	}

	gameData, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}
	ledgerData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	gameData = append(gameData, '\n')
	ledgerData = append(ledgerData, '\n')

	path := s.gamePath(game.Date)
	previous, err := os.ReadFile(path)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing game file: %w", err)
	}

	if err := writeFileAtomic(path, gameData); err != nil {
		return fmt.Errorf("failed to write game file: %w", err)
	}
	if err := writeFileAtomic(s.ledgerPath, ledgerData); err != nil {
		if hadPrevious {
			_ = writeFileAtomic(path, previous)
		} else {
			_ = os.Remove(path)
		}
		return fmt.Errorf("failed to write ledger, game rolled back: %w", err)
	}
	return nil
}

// Stats returns game and ledger counts.
func (s *FileStore) Stats(ctx context.Context) (*Stats, error) {
	games, err := s.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.readLedger()
	if err != nil {
		return nil, err
	}
	return statsFromGames(games, len(entries)), nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
