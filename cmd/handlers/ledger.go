package handlers

import (
	"context"
	"fmt"
	"io"

	"dailytrivia/internal/cluestore"
	"dailytrivia/internal/core"
	"dailytrivia/internal/difficulty"

	"github.com/spf13/cobra"
)

// NewLedgerCmd creates the used-clue ledger command
func NewLedgerCmd(opts *rootOptions) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the used-clue ledger",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show ledger size and remaining clues by tier and origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerStats(cmd.Context(), opts, cmd.OutOrStdout())
		},
	})

	return ledgerCmd
}

// ledgerReport counts what is left in the archive.
type ledgerReport struct {
	ArchiveClues int
	UsedClues    int // Archive clues found in the ledger
	Available    int
	ByTier       map[core.Tier]int
	ByOrigin     map[core.RoundOrigin]int
	Categories   int
	Playable     int // Categories with enough unused clues for a round
}

func buildLedgerReport(clues *cluestore.Store) ledgerReport {
	report := ledgerReport{
		ArchiveClues: clues.Len(),
		UsedClues:    clues.UsedInArchive(),
		ByTier:       make(map[core.Tier]int),
		ByOrigin:     make(map[core.RoundOrigin]int),
	}

	available := clues.Available()
	finals := clues.AvailableFinal()
	for _, c := range append(available, finals...) {
		_, tier := difficulty.Score(c)
		report.ByTier[tier]++
		report.ByOrigin[c.Origin]++
	}
	report.Available = len(available) + len(finals)
	groups := cluestore.ByCategory(available)
	report.Categories = len(groups)
	for _, group := range groups {
		if len(group) >= core.QuestionsPerRound {
			report.Playable++
		}
	}
	return report
}

func runLedgerStats(ctx context.Context, opts *rootOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	archive, err := loadArchive(opts.cfg)
	if err != nil {
		return err
	}

	s, err := openStore(opts.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	used, err := s.UsedKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read store stats: %w", err)
	}

	report := buildLedgerReport(cluestore.New(archive, used))

	fmt.Fprintln(out, "📊 Ledger Statistics")
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Games:            %d", stats.Games)
	if stats.Games > 0 {
		fmt.Fprintf(out, " (%s to %s)", stats.FirstDate, stats.LastDate)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Ledger entries:   %d\n", stats.LedgerEntries)
	fmt.Fprintf(out, "Archive clues:    %d\n", report.ArchiveClues)
	fmt.Fprintf(out, "Used in archive:  %d\n", report.UsedClues)
	fmt.Fprintf(out, "Available:        %d in %d categories (%d with %d+ clues)\n",
		report.Available, report.Categories, report.Playable, core.QuestionsPerRound)

	fmt.Fprintln(out, "\nBy tier:")
	for _, tier := range core.Tiers {
		fmt.Fprintf(out, "  %-8s %d\n", tier, report.ByTier[tier])
	}
	fmt.Fprintln(out, "\nBy origin:")
	for _, origin := range []core.RoundOrigin{core.OriginFirst, core.OriginSecond, core.OriginFinal} {
		fmt.Fprintf(out, "  %-8s %d\n", origin, report.ByOrigin[origin])
	}

	remaining := report.Available - report.ByOrigin[core.OriginFinal]
	perGame := core.RoundsPerGame * core.QuestionsPerRound
	fmt.Fprintf(out, "\nGames left (at most): %d\n", min(remaining/perGame, report.ByOrigin[core.OriginFinal]))
	return nil
}
