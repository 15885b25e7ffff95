package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClueKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  ClueKey
	}{
		{"simple", ClueKey{Clue: "This planet is red", Answer: "Mars"}},
		{"pipe in clue", ClueKey{Clue: "A | B", Answer: "pipe"}},
		{"empty answer", ClueKey{Clue: "Nothing", Answer: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseClueKey(tt.key.String())
			if err != nil {
				t.Fatalf("ParseClueKey failed: %v", err)
			}
			if parsed != tt.key {
				t.Errorf("Expected %+v, got %+v", tt.key, parsed)
			}
		})
	}
}

func TestParseClueKey_MissingSeparator(t *testing.T) {
	if _, err := ParseClueKey("no separator here"); err == nil {
		t.Error("Expected error for entry without separator")
	}
}

func TestTierRank(t *testing.T) {
	if TierEasy.Rank() != 0 || TierExpert.Rank() != 3 {
		t.Errorf("Unexpected ranks: easy=%d expert=%d", TierEasy.Rank(), TierExpert.Rank())
	}
	if Tier("impossible").Rank() != -1 {
		t.Error("Unknown tier should rank -1")
	}
}

func TestGameKeysIncludesFinal(t *testing.T) {
	game := Game{
		Rounds: []Round{{
			RoundNumber: 1,
			Difficulty:  TierEasy,
			Questions: []GeneratedQuestion{
				{Clue: "c1", Answer: "a1", Category: "CAT"},
				{Clue: "c2", Answer: "a2", Category: "CAT"},
			},
		}},
		FinalTrivia: FinalTrivia{Category: "FINAL", Question: "fq", Answer: "fa"},
	}

	keys := game.Keys()
	if len(keys) != 3 {
		t.Fatalf("Expected 3 keys, got %d", len(keys))
	}
	if keys[2] != (ClueKey{Clue: "fq", Answer: "fa"}) {
		t.Errorf("Expected final key last, got %+v", keys[2])
	}
}

func TestGameJSONFieldOrder(t *testing.T) {
	game := Game{
		ID:   "id-1",
		Date: "2026-01-02",
		Rounds: []Round{{
			RoundNumber: 1,
			Difficulty:  TierEasy,
			Questions:   []GeneratedQuestion{{Clue: "c", Answer: "a", Category: "CAT"}},
		}},
		FinalTrivia: FinalTrivia{Category: "F", Question: "q", Answer: "a"},
	}

	data, err := json.Marshal(game)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	out := string(data)
	order := []string{`"id"`, `"date"`, `"rounds"`, `"roundNumber"`, `"difficulty"`, `"questions"`, `"finalTrivia"`}
	last := -1
	for _, field := range order {
		idx := strings.Index(out, field)
		if idx < 0 {
			t.Fatalf("Field %s missing from %s", field, out)
		}
		if idx < last {
			t.Errorf("Field %s out of order in %s", field, out)
		}
		last = idx
	}
}
