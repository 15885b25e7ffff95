package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dailytrivia/internal/cluestore"
	"dailytrivia/internal/core"
	"dailytrivia/internal/eligibility"

	"github.com/spf13/cobra"
)

// NewScreenCmd creates the eligibility screening command
func NewScreenCmd(opts *rootOptions) *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Run eligibility screening over available clues",
		Long: `Run the eligibility filter over a sample of unused clues and print each
decision. Nothing is written. Useful for tuning heuristics and prompts.

Examples:
  dailytrivia screen --limit 50
  dailytrivia screen --category "RHYME TIME"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd.Context(), opts, category, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only screen clues from this category (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 25, "Maximum number of clues to screen (0 = all)")
	return cmd
}

// sampleClues filters by category and caps the count, keeping archive order.
func sampleClues(clues []core.Clue, category string, limit int) []core.Clue {
	var out []core.Clue
	for _, c := range clues {
		if category != "" && !strings.EqualFold(c.Category, category) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func describeDecision(clue core.Clue, d eligibility.Decision) string {
	status := "KEEP"
	switch {
	case d.Drop:
		status = "DROP"
	case d.RewrittenText != "":
		status = "REWRITE"
	case d.Flagged:
		status = "FLAG"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-7s [%s] %s (%s)\n", status, clue.Category, clue.Text, clue.Answer))
	if d.Reason != "" {
		sb.WriteString(fmt.Sprintf("        reason: %s\n", d.Reason))
	}
	if d.RewrittenText != "" {
		sb.WriteString(fmt.Sprintf("        rewrite: %s\n", d.RewrittenText))
	}
	return sb.String()
}

func runScreen(ctx context.Context, opts *rootOptions, category string, limit int, out io.Writer) error {
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

	clues := cluestore.New(archive, used)
	sample := sampleClues(append(clues.Available(), clues.AvailableFinal()...), category, limit)
	if len(sample) == 0 {
		_, err := fmt.Fprintln(out, "No unused clues match.")
		return err
	}

	tracker := newTracker(opts.cfg)
	defer func() { _ = tracker.Close() }()

	screening, err := buildFilter(ctx, opts.cfg, tracker)
	if err != nil {
		return err
	}

	decisions, err := screening.filter.EvaluateAll(ctx, sample)
	if err != nil {
		return err
	}
	for i, d := range decisions {
		fmt.Fprint(out, describeDecision(sample[i], d))
	}

	stats := screening.filter.Stats()
	fmt.Fprintf(out, "\n%s screening: %d evaluated, %d dropped, %d flagged, %d rewritten, %d classifier errors, %d rewriter errors\n",
		screening.mode, stats.Evaluated, stats.Dropped, stats.Flagged, stats.Rewritten, stats.ClassifierErrors, stats.RewriterErrors)
	return nil
}
