// Package render formats games for the terminal and for markdown export.
package render

import (
	"fmt"
	"strings"

	"dailytrivia/internal/core"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	roundStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1).Width(72)
	headStyle   = lipgloss.NewStyle().Bold(true)
	answerStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	finalStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder(), true).Padding(0, 1).Width(72)

	tierColors = map[core.Tier]lipgloss.Color{
		core.TierEasy:   lipgloss.Color("10"),
		core.TierMedium: lipgloss.Color("11"),
		core.TierHard:   lipgloss.Color("208"),
		core.TierExpert: lipgloss.Color("9"),
	}
)

// Options controls what a game view shows.
type Options struct {
	ShowAnswers bool
}

// Game renders a styled terminal view of a game.
func Game(game core.Game, opts Options) string {
	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("Daily Trivia - %s", game.Date)))

	for _, round := range game.Rounds {
		tier := lipgloss.NewStyle().Foreground(tierColors[round.Difficulty]).Render(string(round.Difficulty))
		var body strings.Builder
		body.WriteString(headStyle.Render(fmt.Sprintf("Round %d: %s", round.RoundNumber, round.Category())))
		body.WriteString("  " + tier + "\n")
		for i, q := range round.Questions {
			body.WriteString(fmt.Sprintf("%d. %s", i+1, q.Clue))
			if opts.ShowAnswers {
				body.WriteString("\n   " + answerStyle.Render(q.Answer))
			}
			if i < len(round.Questions)-1 {
				body.WriteString("\n")
			}
		}
		sections = append(sections, roundStyle.Render(body.String()))
	}

	final := headStyle.Render("Final: "+game.FinalTrivia.Category) + "\n" + game.FinalTrivia.Question
	if opts.ShowAnswers {
		final += "\n   " + answerStyle.Render(game.FinalTrivia.Answer)
	}
	sections = append(sections, finalStyle.Render(final))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// GameList renders one line per game: date, id and round categories.
func GameList(games []core.Game) string {
	if len(games) == 0 {
		return "No games generated yet.\n"
	}

	var sb strings.Builder
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n", headStyle.Render(g.Date), g.ID, strings.Join(g.Categories(), ", ")))
	}
	return sb.String()
}

// Markdown renders a game as a markdown document with answers under each
// question.
func Markdown(game core.Game) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Daily Trivia - %s\n\n", game.Date))
	for _, round := range game.Rounds {
		sb.WriteString(fmt.Sprintf("## Round %d: %s (%s)\n\n", round.RoundNumber, round.Category(), round.Difficulty))
		for i, q := range round.Questions {
			sb.WriteString(fmt.Sprintf("%d. %s\n   - *%s*\n", i+1, q.Clue, q.Answer))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Final: %s\n\n", game.FinalTrivia.Category))
	sb.WriteString(game.FinalTrivia.Question + "\n\n")
	sb.WriteString(fmt.Sprintf("*%s*\n", game.FinalTrivia.Answer))
	return sb.String()
}
