package handlers

import (
	"context"
	"fmt"
	"io"

	"dailytrivia/internal/render"
	"dailytrivia/internal/schedule"

	"github.com/spf13/cobra"
)

// NewGamesCmd creates the games inspection command
func NewGamesCmd(opts *rootOptions) *cobra.Command {
	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "Inspect generated games",
	}

	gamesCmd.AddCommand(newGamesListCmd(opts))
	gamesCmd.AddCommand(newGamesShowCmd(opts))

	return gamesCmd
}

func newGamesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List generated games by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGamesList(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func newGamesShowCmd(opts *rootOptions) *cobra.Command {
	var answers, markdown bool

	cmd := &cobra.Command{
		Use:   "show <date>",
		Short: "Show the game for a date",
		Long: `Show the game generated for a date.

Examples:
  dailytrivia games show 2026-03-01
  dailytrivia games show 2026-03-01 --answers
  dailytrivia games show 2026-03-01 --markdown > game.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGamesShow(cmd.Context(), opts, args[0], answers, markdown, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&answers, "answers", "a", false, "Show answers")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print markdown (always includes answers)")
	return cmd
}

func runGamesList(ctx context.Context, opts *rootOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openStore(opts.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	games, err := s.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	_, err = fmt.Fprint(out, render.GameList(games))
	return err
}

func runGamesShow(ctx context.Context, opts *rootOptions, date string, answers, markdown bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return err
	}

	s, err := openStore(opts.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	game, err := s.GetGame(ctx, date)
	if err != nil {
		return err
	}

	if markdown {
		_, err = fmt.Fprint(out, render.Markdown(*game))
		return err
	}
	_, err = fmt.Fprintln(out, render.Game(*game, render.Options{ShowAnswers: answers}))
	return err
}
