// Package difficulty maps archived clues to a 0-100 difficulty score and a
// discrete tier. Scoring is pure: the same clue always yields the same result.
package difficulty

import "dailytrivia/internal/core"

// valueRange is the known value range of a show round and the slice of the
// 0-100 scale it maps onto.
type valueRange struct {
	minValue, maxValue int
	minScore, maxScore float64
}

var ranges = map[core.RoundOrigin]valueRange{
	core.OriginFirst:  {minValue: 200, maxValue: 1000, minScore: 0, maxScore: 20},
	core.OriginSecond: {minValue: 400, maxValue: 2000, minScore: 20, maxScore: 60},
}

// FinalScore is the fixed score of final-round clues.
const FinalScore = 80.0

// Tier boundaries on the score scale.
const (
	easyBelow   = 10.0
	mediumBelow = 30.0
	hardBelow   = 50.0
)

// Score returns the numeric score and tier of a clue.
func Score(clue core.Clue) (float64, core.Tier) {
	s := ScoreValue(clue.Origin, clue.Value)
	return s, TierFor(s)
}

// ScoreValue maps a value linearly within its origin's range. Values outside
// the range, including 0, clamp to the range ends.
func ScoreValue(origin core.RoundOrigin, value int) float64 {
	if origin == core.OriginFinal {
		return FinalScore
	}
	r, ok := ranges[origin]
	if !ok {
		return 0
	}
	v := min(max(value, r.minValue), r.maxValue)
	frac := float64(v-r.minValue) / float64(r.maxValue-r.minValue)
	return r.minScore + frac*(r.maxScore-r.minScore)
}

// TierFor buckets a score into a tier.
func TierFor(score float64) core.Tier {
	switch {
	case score < easyBelow:
		return core.TierEasy
	case score < mediumBelow:
		return core.TierMedium
	case score < hardBelow:
		return core.TierHard
	default:
		return core.TierExpert
	}
}

// Average returns the tier of the mean score of the given clues.
func Average(clues []core.Clue) (float64, core.Tier) {
	if len(clues) == 0 {
		return 0, TierFor(0)
	}
	var total float64
	for _, c := range clues {
		s, _ := Score(c)
		total += s
	}
	mean := total / float64(len(clues))
	return mean, TierFor(mean)
}
