package eligibility

import (
	"context"
	"regexp"
	"strings"
)

// wordplayCategories match category names whose clues only make sense with
// the category shown (anagrams, letter games, quoted hints).
var wordplayCategories = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"anagram", regexp.MustCompile(`(?i)anagram`)},
	{"rhyme time", regexp.MustCompile(`(?i)rhyme\s*time`)},
	{"before & after", regexp.MustCompile(`(?i)before\s*(&|and)\s*after`)},
	{"crossword", regexp.MustCompile(`(?i)crossword`)},
	{"spelling", regexp.MustCompile(`(?i)\bspell(ing|ed)?\b`)},
	{"letter game", regexp.MustCompile(`(?i)\d+[- ]letter|\b(add|drop|change|missing|first|last) (a )?letters?\b`)},
	{"starts/ends with", regexp.MustCompile(`(?i)\b(starts|begins|ends) (with|in)\b`)},
	{"homophones", regexp.MustCompile(`(?i)homophone`)},
	{"hidden words", regexp.MustCompile(`(?i)hidden (word|words|answer)`)},
	{"palindromes", regexp.MustCompile(`(?i)palindrome`)},
	{"backwards", regexp.MustCompile(`(?i)backwards?`)},
	{"vowels", regexp.MustCompile(`(?i)vowel`)},
	{"puns", regexp.MustCompile(`(?i)\bpuns?\b|wordplay`)},
	{"quoted hint", regexp.MustCompile(`["“”]`)},
}

// themePhrases match clue text that refers to the category or the show's
// framing rather than standing alone.
var themePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(this|the|our) category\b`),
	regexp.MustCompile(`(?i)\beach (correct )?(response|answer)\b`),
	regexp.MustCompile(`(?i)\b(all|every) (the )?(responses|answers)\b`),
	regexp.MustCompile(`(?i)\bwe('re| are| will|'ll)? (give|giving) you\b`),
	regexp.MustCompile(`(?i)\byou'll (need|get)\b`),
	regexp.MustCompile(`(?i)\b(response|answer)s? (will )?(contains?|begins?|ends?|rhymes?)\b`),
	regexp.MustCompile(`(?i)\bin quotes\b`),
	regexp.MustCompile(`(?i)\bhint:`),
}

var nonLetters = regexp.MustCompile(`[^a-z0-9 ]+`)

// minCategoryMention is the shortest category name considered when looking
// for the category mentioned inside the clue.
const minCategoryMention = 4

// HeuristicClassifier is the local substitute for an LLM classifier.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates the local classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify disqualifies wordplay categories and flags theme-dependent phrasing.
func (h *HeuristicClassifier) Classify(_ context.Context, req Request) (Verdict, error) {
	if name, ok := WordplayCategory(req.Category); ok {
		return Verdict{ShouldDisqualify: true, Reason: "wordplay category: " + name}, nil
	}
	if phrase, ok := DependsOnCategory(req); ok {
		return Verdict{DependsOnCategory: true, Reason: "category-dependent phrasing: " + phrase}, nil
	}
	return Verdict{}, nil
}

// WordplayCategory reports whether the category name matches a known
// wordplay pattern and returns the pattern name.
func WordplayCategory(category string) (string, bool) {
	for _, wp := range wordplayCategories {
		if wp.pattern.MatchString(category) {
			return wp.name, true
		}
	}
	return "", false
}

// DependsOnCategory reports whether the clue text mentions its category or
// uses theme framing, returning the matched phrase.
func DependsOnCategory(req Request) (string, bool) {
	for _, p := range themePhrases {
		if m := p.FindString(req.Clue); m != "" {
			return m, true
		}
	}

	category := normalize(req.Category)
	if len(category) < minCategoryMention {
		return "", false
	}
	clue := " " + normalize(req.Clue) + " "
	if strings.Contains(clue, " "+category+" ") {
		return req.Category, true
	}
	return "", false
}

func normalize(s string) string {
	s = nonLetters.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}
