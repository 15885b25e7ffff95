package render

import (
	"strings"
	"testing"

	"dailytrivia/internal/core"
)

func sampleGame() core.Game {
	game := core.Game{ID: "game-1", Date: "2026-03-01"}
	for r := 1; r <= core.RoundsPerGame; r++ {
		game.Rounds = append(game.Rounds, core.Round{
			RoundNumber: r,
			Difficulty:  core.TierMedium,
			Questions: []core.GeneratedQuestion{
				{Clue: "Red planet", Answer: "Mars", Category: "SPACE"},
				{Clue: "Ringed planet", Answer: "Saturn", Category: "SPACE"},
				{Clue: "Largest planet", Answer: "Jupiter", Category: "SPACE"},
			},
		})
	}
	game.FinalTrivia = core.FinalTrivia{Category: "EXPLORERS", Question: "First to circle the globe", Answer: "Magellan's crew"}
	return game
}

func TestGame_HidesAnswersByDefault(t *testing.T) {
	out := Game(sampleGame(), Options{})

	for _, want := range []string{"2026-03-01", "Round 1: SPACE", "Red planet", "Final: EXPLORERS", "medium"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q", want)
		}
	}
	if strings.Contains(out, "Jupiter") || strings.Contains(out, "Magellan") {
		t.Error("Answers should be hidden")
	}
}

func TestGame_ShowAnswers(t *testing.T) {
	out := Game(sampleGame(), Options{ShowAnswers: true})
	if !strings.Contains(out, "Jupiter") || !strings.Contains(out, "Magellan") {
		t.Error("Answers should be shown")
	}
}

func TestGameList(t *testing.T) {
	if out := GameList(nil); !strings.Contains(out, "No games") {
		t.Errorf("Unexpected empty list output: %q", out)
	}

	out := GameList([]core.Game{sampleGame()})
	if !strings.Contains(out, "game-1") || !strings.Contains(out, "SPACE") {
		t.Errorf("Unexpected list output: %q", out)
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleGame())

	if !strings.HasPrefix(out, "# Daily Trivia - 2026-03-01") {
		t.Errorf("Unexpected heading: %q", strings.SplitN(out, "\n", 2)[0])
	}
	if strings.Count(out, "## Round ") != core.RoundsPerGame {
		t.Errorf("Expected %d round headings", core.RoundsPerGame)
	}
	if !strings.Contains(out, "*Magellan's crew*") {
		t.Error("Final answer missing")
	}
}
