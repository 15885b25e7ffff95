// Package selection picks one category per round at the round's target
// difficulty and assembles the chosen clues into rounds.
package selection

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"dailytrivia/internal/core"
	"dailytrivia/internal/difficulty"
)

// ErrInsufficientCategories is returned when no unused category has enough
// clues left for a round.
var ErrInsufficientCategories = errors.New("no category has enough clues for this round")

// roundTargets is the target tier of each round, by round index.
var roundTargets = [core.RoundsPerGame]core.Tier{
	core.TierEasy, core.TierEasy,
	core.TierMedium, core.TierMedium,
	core.TierHard, core.TierHard,
	core.TierExpert, core.TierExpert,
}

// TargetTier returns the target tier for a zero-based round index. Indexes
// past the schedule use its last tier.
func TargetTier(roundIndex int) core.Tier {
	if roundIndex < 0 {
		return roundTargets[0]
	}
	if roundIndex >= len(roundTargets) {
		return roundTargets[len(roundTargets)-1]
	}
	return roundTargets[roundIndex]
}

// FallbackTiers returns the tiers acceptable for a target, primary first.
// Fallbacks only ever step down to an easier tier.
func FallbackTiers(target core.Tier) []core.Tier {
	switch target {
	case core.TierExpert:
		return []core.Tier{core.TierExpert, core.TierHard}
	case core.TierHard:
		return []core.Tier{core.TierHard, core.TierMedium}
	case core.TierMedium:
		return []core.Tier{core.TierMedium, core.TierEasy}
	default:
		return []core.Tier{core.TierEasy}
	}
}

// relaxedTiers returns every tier, fallbacks first, then the rest ordered by
// distance from the target with easier tiers winning ties.
func relaxedTiers(target core.Tier) []core.Tier {
	tiers := FallbackTiers(target)
	seen := make(map[core.Tier]bool, len(core.Tiers))
	for _, t := range tiers {
		seen[t] = true
	}

	var rest []core.Tier
	for _, t := range core.Tiers {
		if !seen[t] {
			rest = append(rest, t)
		}
	}
	rank := target.Rank()
	sort.SliceStable(rest, func(i, j int) bool {
		return abs(rest[i].Rank()-rank) < abs(rest[j].Rank()-rank)
	})
	return append(tiers, rest...)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Selection is the outcome of one round's category choice.
type Selection struct {
	Category string
	Clues    []core.Clue
	Relaxed  bool // Category was found only by searching all tiers
}

// Selector chooses categories round by round for one game. It is not safe
// for concurrent use.
type Selector struct {
	rng      *rand.Rand
	order    []string
	pools    map[string]map[core.Tier][]core.Clue
	usedCats map[string]bool
	picked   map[core.ClueKey]bool
}

// NewSelector groups clues by category and tier and shuffles the category
// order once with rng.
func NewSelector(clues []core.Clue, rng *rand.Rand) *Selector {
	s := &Selector{
		rng:      rng,
		pools:    make(map[string]map[core.Tier][]core.Clue),
		usedCats: make(map[string]bool),
		picked:   make(map[core.ClueKey]bool),
	}

	for _, clue := range clues {
		_, tier := difficulty.Score(clue)
		byTier, ok := s.pools[clue.Category]
		if !ok {
			byTier = make(map[core.Tier][]core.Clue)
			s.pools[clue.Category] = byTier
			s.order = append(s.order, clue.Category)
		}
		byTier[tier] = append(byTier[tier], clue)
	}

	sort.Strings(s.order)
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	return s
}

// Next selects a category and three clues for the zero-based round index.
// The chosen category and clues are not offered again by this selector.
func (s *Selector) Next(roundIndex int) (Selection, error) {
	target := TargetTier(roundIndex)

	tiers := FallbackTiers(target)
	category, ok := s.firstMatch(tiers)
	relaxed := false
	if !ok {
		tiers = relaxedTiers(target)
		category, ok = s.firstMatch(tiers)
		relaxed = true
	}
	if !ok {
		return Selection{}, fmt.Errorf("round %d (target %s): %w", roundIndex+1, target, ErrInsufficientCategories)
	}

	s.usedCats[category] = true

	var candidates []core.Clue
	for _, tier := range tiers {
		candidates = append(candidates, s.remaining(category, tier)...)
		if len(candidates) >= core.QuestionsPerRound {
			break
		}
	}

	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	chosen := candidates[:core.QuestionsPerRound]
	for _, clue := range chosen {
		s.picked[clue.Key()] = true
	}

	return Selection{Category: category, Clues: chosen, Relaxed: relaxed}, nil
}

// firstMatch returns the first unused category, in shuffled order, with at
// least a round's worth of clues across the given tiers.
func (s *Selector) firstMatch(tiers []core.Tier) (string, bool) {
	for _, category := range s.order {
		if s.usedCats[category] {
			continue
		}
		count := 0
		for _, tier := range tiers {
			count += len(s.remaining(category, tier))
		}
		if count >= core.QuestionsPerRound {
			return category, true
		}
	}
	return "", false
}

func (s *Selector) remaining(category string, tier core.Tier) []core.Clue {
	var out []core.Clue
	for _, clue := range s.pools[category][tier] {
		if !s.picked[clue.Key()] {
			out = append(out, clue)
		}
	}
	return out
}
