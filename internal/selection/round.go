package selection

import (
	"fmt"

	"dailytrivia/internal/core"
	"dailytrivia/internal/difficulty"
)

// AssembleRound projects the chosen clues into a round. The round difficulty
// is the tier of the clues' average score, which can differ from the target
// tier when fallback tiers were used.
func AssembleRound(number int, clues []core.Clue) (core.Round, error) {
	if len(clues) != core.QuestionsPerRound {
		return core.Round{}, fmt.Errorf("round %d needs %d clues, got %d", number, core.QuestionsPerRound, len(clues))
	}

	questions := make([]core.GeneratedQuestion, len(clues))
	for i, clue := range clues {
		if clue.Category != clues[0].Category {
			return core.Round{}, fmt.Errorf("round %d mixes categories %q and %q", number, clues[0].Category, clue.Category)
		}
		questions[i] = core.GeneratedQuestion{
			Clue:     clue.Text,
			Answer:   clue.Answer,
			Category: clue.Category,
		}
	}

	_, tier := difficulty.Average(clues)
	return core.Round{
		RoundNumber: number,
		Difficulty:  tier,
		Questions:   questions,
	}, nil
}
