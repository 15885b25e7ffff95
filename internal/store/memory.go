package store

import (
	"context"
	"fmt"
	"sync"

	"dailytrivia/internal/core"
)

// MemoryStore is an in-process store used for dry runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	games  map[string]core.Game
	ledger []core.ClueKey
	seen   map[core.ClueKey]bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]core.Game),
		seen:  make(map[core.ClueKey]bool),
	}
}

// NewMemoryStoreFrom creates a store holding the given games and ledger.
func NewMemoryStoreFrom(games []core.Game, ledger []core.ClueKey) *MemoryStore {
	s := NewMemoryStore()
	for _, g := range games {
		s.games[g.Date] = g
	}
	s.appendKeys(ledger)
	return s
}

func (s *MemoryStore) HasGame(_ context.Context, date string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[date]
	return ok, nil
}

func (s *MemoryStore) GetGame(_ context.Context, date string) (*core.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[date]
	if !ok {
		return nil, fmt.Errorf("%s: %w", date, ErrGameNotFound)
	}
	return &game, nil
}

func (s *MemoryStore) ListGames(_ context.Context) ([]core.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]core.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	sortGames(games)
	return games, nil
}

func (s *MemoryStore) UsedKeys(_ context.Context) ([]core.ClueKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ClueKey(nil), s.ledger...), nil
}

func (s *MemoryStore) Commit(ctx context.Context, game core.Game, keys []core.ClueKey) error {
	if err := validateGame(game); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.Date] = game
	s.appendKeys(keys)
	return nil
}

func (s *MemoryStore) appendKeys(keys []core.ClueKey) {
	for _, key := range keys {
		if !s.seen[key] {
			s.seen[key] = true
			s.ledger = append(s.ledger, key)
		}
	}
}

func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	games, _ := s.ListGames(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statsFromGames(games, len(s.ledger)), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
