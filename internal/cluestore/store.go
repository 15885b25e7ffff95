// Package cluestore provides the in-memory view over the clue archive and the
// set of clues already used by earlier games.
package cluestore

import (
	"sort"

	"dailytrivia/internal/core"
)

// Store is a read-only view over archive clues plus the used-clue set.
// It holds no business logic.
type Store struct {
	clues []core.Clue
	used  map[core.ClueKey]struct{}
}

// New builds a store. Duplicate (clue, answer) pairs keep their first occurrence.
func New(clues []core.Clue, used []core.ClueKey) *Store {
	seen := make(map[core.ClueKey]struct{}, len(clues))
	deduped := make([]core.Clue, 0, len(clues))
	for _, c := range clues {
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, c)
	}

	usedSet := make(map[core.ClueKey]struct{}, len(used))
	for _, k := range used {
		usedSet[k] = struct{}{}
	}

	return &Store{clues: deduped, used: usedSet}
}

// Len returns the number of distinct clues in the archive.
func (s *Store) Len() int {
	return len(s.clues)
}

// UsedCount returns the number of ledger entries.
func (s *Store) UsedCount() int {
	return len(s.used)
}

// UsedInArchive returns the number of distinct archive clues found in the
// ledger. Ledger entries for rewritten text do not count.
func (s *Store) UsedInArchive() int {
	n := 0
	for _, c := range s.clues {
		if s.IsUsed(c.Key()) {
			n++
		}
	}
	return n
}

// IsUsed reports whether the pair appears in the ledger.
func (s *Store) IsUsed(key core.ClueKey) bool {
	_, ok := s.used[key]
	return ok
}

// Available returns unused non-final clues in archive order.
func (s *Store) Available() []core.Clue {
	return s.filter(func(c core.Clue) bool { return !c.IsFinal() })
}

// AvailableFinal returns unused final-round clues in archive order.
func (s *Store) AvailableFinal() []core.Clue {
	return s.filter(func(c core.Clue) bool { return c.IsFinal() })
}

func (s *Store) filter(keep func(core.Clue) bool) []core.Clue {
	var out []core.Clue
	for _, c := range s.clues {
		if !keep(c) || s.IsUsed(c.Key()) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Categories returns the sorted distinct categories of the given clues.
func Categories(clues []core.Clue) []string {
	set := make(map[string]struct{})
	for _, c := range clues {
		set[c.Category] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByCategory groups clues by category, preserving input order within a group.
func ByCategory(clues []core.Clue) map[string][]core.Clue {
	groups := make(map[string][]core.Clue)
	for _, c := range clues {
		groups[c.Category] = append(groups[c.Category], c)
	}
	return groups
}
