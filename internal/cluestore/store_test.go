package cluestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dailytrivia/internal/core"
)

const sampleArchive = `[
  {"clue": "This <i>Hamlet</i> prince is from here", "answer": "Denmark", "category": "SHAKESPEARE", "value": 200, "round": "Jeopardy", "airDate": "2004-01-02", "gameId": "g1"},
  {"clue": "AT&amp;T was once called this", "answer": "Bell", "category": "PHONES", "value": "$1,200", "round": "Double Jeopardy", "airDate": "2004-01-02", "gameId": "g1"},
  {"clue": "Final clue text", "answer": "Final answer", "category": "HISTORY", "value": null, "round": "Final Jeopardy", "airDate": "2004-01-02", "gameId": "g1"},
  {"clue": "Tiebreaker clue", "answer": "x", "category": "TB", "value": 0, "round": "Tiebreaker", "airDate": "2004-01-02", "gameId": "g1"},
  {"clue": "   ", "answer": "empty", "category": "EMPTY", "value": 400, "round": "Jeopardy", "airDate": "2004-01-02", "gameId": "g1"},
  {"clue": "It\\'s   spaced   out", "answer": "Space", "category": "SPACE", "value": 400, "round": "Jeopardy", "airDate": "2004-01-02", "gameId": "g2"}
]`

func TestParse(t *testing.T) {
	clues, err := Parse(strings.NewReader(sampleArchive))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(clues) != 4 {
		t.Fatalf("Expected 4 usable clues, got %d: %+v", len(clues), clues)
	}

	if clues[0].Text != "This Hamlet prince is from here" {
		t.Errorf("Expected markup stripped, got %q", clues[0].Text)
	}
	if clues[0].Origin != core.OriginFirst {
		t.Errorf("Expected FIRST origin, got %s", clues[0].Origin)
	}
	if clues[1].Text != "AT&T was once called this" {
		t.Errorf("Expected entity decoded, got %q", clues[1].Text)
	}
	if clues[1].Value != 1200 {
		t.Errorf("Expected value 1200 from dollar string, got %d", clues[1].Value)
	}
	if clues[2].Origin != core.OriginFinal || clues[2].Value != 0 {
		t.Errorf("Expected final clue with zero value, got %+v", clues[2])
	}
	if clues[3].Text != "It's spaced out" {
		t.Errorf("Expected whitespace collapsed, got %q", clues[3].Text)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare less-than before letter", "If x<y and y<z, then x is this relative to z", "If x<y and y<z, then x is this relative to z"},
		{"spaced comparison", "5 < 7 is true", "5 < 7 is true"},
		{"entity", "Tom &amp; Jerry", "Tom & Jerry"},
		{"numeric entity", "Caf&#233; society", "Café society"},
		{"bare ampersand", "AT&T began as this company", "AT&T began as this company"},
		{"tags", "This <i>Hamlet</i> prince", "This Hamlet prince"},
		{"tags around comparison", "<b>x<y</b> holds here", "x<y holds here"},
		{"escaped quote", `It\'s   here`, "It's here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_KeepsComparisons(t *testing.T) {
	archive := `[{"clue": "If x<y and y<z, then x is this relative to z", "answer": "Less", "category": "MATH", "value": 400, "round": "Jeopardy"}]`

	clues, err := Parse(strings.NewReader(archive))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(clues) != 1 || clues[0].Text != "If x<y and y<z, then x is this relative to z" {
		t.Errorf("Expected clue text intact, got %+v", clues)
	}
}

func TestParse_SkipsSeparatorInAnswer(t *testing.T) {
	archive := `[
  {"clue": "Either of these", "answer": "A|B", "category": "LOGIC", "value": 400, "round": "Jeopardy"},
  {"clue": "Pipe | in clue", "answer": "Plain", "category": "LOGIC", "value": 400, "round": "Jeopardy"}
]`

	clues, err := Parse(strings.NewReader(archive))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(clues) != 1 || clues[0].Answer != "Plain" {
		t.Fatalf("Expected only the clue with a plain answer, got %+v", clues)
	}

	parsed, err := core.ParseClueKey(clues[0].Key().String())
	if err != nil {
		t.Fatalf("ParseClueKey failed: %v", err)
	}
	if parsed != clues[0].Key() {
		t.Errorf("Expected ledger entry to round-trip, got %+v", parsed)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse(strings.NewReader("{not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clues.json")
	if err := os.WriteFile(path, []byte(sampleArchive), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	clues, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(clues) != 4 {
		t.Errorf("Expected 4 clues, got %d", len(clues))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing archive")
	}
}

func TestStoreAvailability(t *testing.T) {
	clues := []core.Clue{
		{Text: "q1", Answer: "a1", Category: "A", Origin: core.OriginFirst, Value: 200},
		{Text: "q1", Answer: "a1", Category: "A-DUP", Origin: core.OriginFirst, Value: 400},
		{Text: "q2", Answer: "a2", Category: "B", Origin: core.OriginSecond, Value: 800},
		{Text: "q3", Answer: "a3", Category: "C", Origin: core.OriginFinal},
		{Text: "q4", Answer: "a4", Category: "D", Origin: core.OriginFinal},
	}
	used := []core.ClueKey{{Clue: "q2", Answer: "a2"}, {Clue: "q4", Answer: "a4"}}

	store := New(clues, used)

	if store.Len() != 4 {
		t.Errorf("Expected duplicates collapsed to 4 clues, got %d", store.Len())
	}
	if store.UsedCount() != 2 {
		t.Errorf("Expected 2 used entries, got %d", store.UsedCount())
	}

	available := store.Available()
	if len(available) != 1 || available[0].Category != "A" {
		t.Errorf("Expected only first-occurrence q1 available, got %+v", available)
	}

	finals := store.AvailableFinal()
	if len(finals) != 1 || finals[0].Text != "q3" {
		t.Errorf("Expected only q3 as final, got %+v", finals)
	}

	if !store.IsUsed(core.ClueKey{Clue: "q2", Answer: "a2"}) {
		t.Error("Expected q2 to be used")
	}
}

func TestUsedInArchive(t *testing.T) {
	clues := []core.Clue{
		{Text: "q1", Answer: "a1", Category: "A", Origin: core.OriginFirst},
		{Text: "q2", Answer: "a2", Category: "B", Origin: core.OriginSecond},
	}
	// The rewritten pair is in the ledger but not in the archive.
	used := []core.ClueKey{
		{Clue: "q1", Answer: "a1"},
		{Clue: "q1 rewritten", Answer: "a1"},
	}

	store := New(clues, used)
	if store.UsedCount() != 2 {
		t.Errorf("Expected 2 ledger entries, got %d", store.UsedCount())
	}
	if store.UsedInArchive() != 1 {
		t.Errorf("Expected 1 archive clue used, got %d", store.UsedInArchive())
	}
}

func TestCategoriesAndGrouping(t *testing.T) {
	clues := []core.Clue{
		{Text: "1", Category: "ZOO"},
		{Text: "2", Category: "ART"},
		{Text: "3", Category: "ZOO"},
	}

	names := Categories(clues)
	if len(names) != 2 || names[0] != "ART" || names[1] != "ZOO" {
		t.Errorf("Expected sorted [ART ZOO], got %v", names)
	}

	groups := ByCategory(clues)
	if len(groups["ZOO"]) != 2 || groups["ZOO"][0].Text != "1" {
		t.Errorf("Expected ZOO group in input order, got %+v", groups["ZOO"])
	}
}
