package cluestore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"dailytrivia/internal/core"
	"dailytrivia/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

// Archive round names mapped to clue origins.
var roundNames = map[string]core.RoundOrigin{
	"jeopardy":        core.OriginFirst,
	"double jeopardy": core.OriginSecond,
	"final jeopardy":  core.OriginFinal,
}

// record is one entry of the archive JSON file.
type record struct {
	Clue     string      `json:"clue"`
	Answer   string      `json:"answer"`
	Category string      `json:"category"`
	Value    dollarValue `json:"value"`
	Round    string      `json:"round"`
	AirDate  string      `json:"airDate"`
	GameID   string      `json:"gameId"`
}

// dollarValue accepts 400, "400", "$1,200" or null.
type dollarValue int

func (v *dollarValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*v = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.NewReplacer("$", "", ",", "").Replace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		*v = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid clue value %s: %w", string(data), err)
	}
	*v = dollarValue(n)
	return nil
}

// Load reads an archive file.
func Load(path string) ([]core.Clue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	clues, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse archive %s: %w", path, err)
	}
	return clues, nil
}

// Parse decodes archive records, cleans their text and drops records that
// are unusable (empty clue or answer, unknown round).
func Parse(r io.Reader) ([]core.Clue, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}

	clues := make([]core.Clue, 0, len(records))
	skipped := 0
	for _, rec := range records {
		origin, ok := roundNames[strings.ToLower(strings.TrimSpace(rec.Round))]
		if !ok {
			skipped++
			continue
		}

		clue := core.Clue{
			Text:         CleanText(rec.Clue),
			Answer:       CleanText(rec.Answer),
			Category:     CleanText(rec.Category),
			Value:        int(rec.Value),
			Origin:       origin,
			SourceGameID: rec.GameID,
			AirDate:      rec.AirDate,
		}
		if clue.Text == "" || clue.Answer == "" {
			skipped++
			continue
		}
		if strings.Contains(clue.Answer, "|") {
			// Ledger entries split on the last "|", so such answers never match.
			logger.Warn("Skipping clue with separator in answer", "category", clue.Category, "answer", clue.Answer)
			skipped++
			continue
		}
		clues = append(clues, clue)
	}

	if skipped > 0 {
		logger.Warn("Skipped unusable archive records", "skipped", skipped, "kept", len(clues))
	}
	return clues, nil
}

var escapes = strings.NewReplacer(`\'`, `'`, `\"`, `"`)

// markup matches real tags and entities. A bare "<" as in "x<y" is text.
var markup = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>|&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)

// CleanText strips residual markup and entities and collapses whitespace.
// Text without markup is left as is apart from whitespace.
func CleanText(s string) string {
	s = escapes.Replace(s)
	if markup.MatchString(s) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(escapeBareLT(s))); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// escapeBareLT escapes every "<" that does not open a markup match so the
// HTML parser keeps it as text.
func escapeBareLT(s string) string {
	var sb strings.Builder
	last := 0
	for _, m := range markup.FindAllStringIndex(s, -1) {
		sb.WriteString(strings.ReplaceAll(s[last:m[0]], "<", "&lt;"))
		sb.WriteString(s[m[0]:m[1]])
		last = m[1]
	}
	sb.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return sb.String()
}
