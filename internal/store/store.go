// Package store persists generated games and the used-clue ledger.
//
// A commit writes one game and extends the ledger as a single logical
// transaction: readers never observe the game without its ledger entries.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"dailytrivia/internal/core"
)

// ErrGameNotFound is returned when no game exists for a date.
var ErrGameNotFound = errors.New("game not found")

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is implemented by every backend.
type Store interface {
	HasGame(ctx context.Context, date string) (bool, error)
	GetGame(ctx context.Context, date string) (*core.Game, error)
	ListGames(ctx context.Context) ([]core.Game, error)
	UsedKeys(ctx context.Context) ([]core.ClueKey, error)
	Commit(ctx context.Context, game core.Game, keys []core.ClueKey) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Stats summarizes store contents.
type Stats struct {
	Games         int    `json:"games"`
	LedgerEntries int    `json:"ledger_entries"`
	FirstDate     string `json:"first_date,omitempty"`
	LastDate      string `json:"last_date,omitempty"`
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	GamesDir   string // file backend
	LedgerPath string // file backend
	SQLitePath string // sqlite backend
}

// Open creates the configured backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		s, err := NewFileStore(opts.GamesDir, opts.LedgerPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// statsFromGames builds Stats from a date-sorted game list.
func statsFromGames(games []core.Game, ledgerEntries int) *Stats {
	stats := &Stats{Games: len(games), LedgerEntries: ledgerEntries}
	if len(games) > 0 {
		stats.FirstDate = games[0].Date
		stats.LastDate = games[len(games)-1].Date
	}
	return stats
}

func sortGames(games []core.Game) {
	sort.Slice(games, func(i, j int) bool { return games[i].Date < games[j].Date })
}

func validateGame(game core.Game) error {
	if game.Date == "" {
		return fmt.Errorf("game %s has no date", game.ID)
	}
	if game.ID == "" {
		return fmt.Errorf("game for %s has no id", game.Date)
	}
	return nil
}
