package core

import (
	"fmt"
	"strings"
)

// RoundOrigin is the show round a clue originally aired in. It is not the
// round of the generated game.
type RoundOrigin string

const (
	OriginFirst  RoundOrigin = "FIRST"  // First (single-value) round
	OriginSecond RoundOrigin = "SECOND" // Second (double-value) round
	OriginFinal  RoundOrigin = "FINAL"  // Final round, one clue per show
)

// Tier is a difficulty bucket derived from a clue's value and origin.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
	TierExpert Tier = "expert"
)

// Tiers lists every tier from easiest to hardest.
var Tiers = []Tier{TierEasy, TierMedium, TierHard, TierExpert}

// Rank returns the position of the tier in Tiers, or -1 for an unknown tier.
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// Clue represents one archived trivia item.
type Clue struct {
	Text         string      `json:"clue"`     // Clue text shown to the player
	Answer       string      `json:"answer"`   // Expected answer
	Category     string      `json:"category"` // Category the clue aired under
	Value        int         `json:"value"`    // Monetary value, 0 if none
	Origin       RoundOrigin `json:"round"`    // Show round the clue came from
	SourceGameID string      `json:"gameId"`   // Provenance only
	AirDate      string      `json:"airDate"`  // Provenance only
}

// Key returns the deduplication key of the clue.
func (c Clue) Key() ClueKey {
	return ClueKey{Clue: c.Text, Answer: c.Answer}
}

// IsFinal reports whether the clue came from a final round.
func (c Clue) IsFinal() bool {
	return c.Origin == OriginFinal
}

// ClueKey is the (clue, answer) pair used for deduplication. No stronger
// identity exists because archive provenance is not unique.
type ClueKey struct {
	Clue   string
	Answer string
}

// String encodes the key in the ledger format "<clue>|<answer>".
func (k ClueKey) String() string {
	return k.Clue + "|" + k.Answer
}

// ParseClueKey decodes a ledger entry. The answer is everything after the last
// separator so clue text containing "|" still round-trips. Answers must not
// contain "|"; the archive loader skips clues whose answer does.
func ParseClueKey(s string) (ClueKey, error) {
	idx := strings.LastIndex(s, "|")
	if idx < 0 {
		return ClueKey{}, fmt.Errorf("invalid ledger entry %q: missing separator", s)
	}
	return ClueKey{Clue: s[:idx], Answer: s[idx+1:]}, nil
}

// GeneratedQuestion is the projection of a Clue used inside a Game.
type GeneratedQuestion struct {
	Clue     string `json:"clue"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// Round is a group of same-category questions within a Game.
type Round struct {
	RoundNumber int                 `json:"roundNumber"` // 1..RoundsPerGame
	Difficulty  Tier                `json:"difficulty"`  // Realized difficulty of the three questions
	Questions   []GeneratedQuestion `json:"questions"`   // Exactly QuestionsPerRound entries
}

// Category returns the shared category of the round's questions.
func (r Round) Category() string {
	if len(r.Questions) == 0 {
		return ""
	}
	return r.Questions[0].Category
}

// FinalTrivia is the closing clue of a Game.
type FinalTrivia struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Game is one generated daily game. Field order is part of the output format.
type Game struct {
	ID          string      `json:"id"`          // Unique identifier
	Date        string      `json:"date"`        // ISO calendar date, unique across games
	Rounds      []Round     `json:"rounds"`      // Exactly RoundsPerGame rounds
	FinalTrivia FinalTrivia `json:"finalTrivia"` // Final clue
}

// Keys returns the (clue, answer) pairs that appear in the game.
func (g Game) Keys() []ClueKey {
	keys := make([]ClueKey, 0, len(g.Rounds)*QuestionsPerRound+1)
	for _, round := range g.Rounds {
		for _, q := range round.Questions {
			keys = append(keys, ClueKey{Clue: q.Clue, Answer: q.Answer})
		}
	}
	if g.FinalTrivia.Question != "" {
		keys = append(keys, ClueKey{Clue: g.FinalTrivia.Question, Answer: g.FinalTrivia.Answer})
	}
	return keys
}

// Categories returns the round categories in order.
func (g Game) Categories() []string {
	categories := make([]string, len(g.Rounds))
	for i, round := range g.Rounds {
		categories[i] = round.Category()
	}
	return categories
}

const (
	// RoundsPerGame is the number of rounds in a generated game.
	RoundsPerGame = 8
	// QuestionsPerRound is the number of questions in each round.
	QuestionsPerRound = 3
	// DateLayout is the ISO calendar date layout used for game dates.
	DateLayout = "2006-01-02"
)
