package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"dailytrivia/internal/generator"
	"dailytrivia/internal/logger"
	"dailytrivia/internal/schedule"
	"dailytrivia/internal/store"

	"github.com/spf13/cobra"
)

type generateFlags struct {
	date   string
	seed   uint64
	dryRun bool
	json   bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Generate for this date (YYYY-MM-DD); default is the next free date")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed for reproducible selection (default from config, 0 = random)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Assemble the game without saving it or updating the ledger")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the full game JSON instead of the game id")
}

func runGenerate(ctx context.Context, opts *rootOptions, flags *generateFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.cfg

	req := generator.Request{}
	if flags.date != "" {
		date, err := schedule.ParseDate(flags.date)
		if err != nil {
			return err
		}
		req.Date = &date
	}

	if !flags.dryRun {
		lock := store.NewLock(cfg.App.LockFile)
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("Failed to release lock", "error", err)
			}
		}()
	}

	clues, err := loadArchive(cfg)
	if err != nil {
		return err
	}

	gameStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = gameStore.Close() }()

	tracker := newTracker(cfg)
	defer func() { _ = tracker.Close() }()

	screening, err := buildFilter(ctx, cfg, tracker)
	if err != nil {
		return err
	}

	seed := flags.seed
	if seed == 0 {
		seed = cfg.Generation.Seed
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	gen := generator.New(clues, gameStore, screening.filter, generator.Options{
		Rand:                rng,
		Now:                 time.Now,
		CandidateCategories: cfg.Eligibility.CandidateCategories,
		DryRun:              flags.dryRun,
		Tracker:             tracker,
	})

	result, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	stats := result.Stats
	logger.Info("Generation finished",
		"game_id", result.GameID,
		"date", result.Date,
		"existing", result.Existing,
		"screening", screening.mode,
		"evaluated", stats.Filter.Evaluated,
		"dropped", stats.Filter.Dropped,
		"flagged", stats.Filter.Flagged,
		"rewritten", stats.Filter.Rewritten,
		"classifier_errors", stats.Filter.ClassifierErrors,
		"rewriter_errors", stats.Filter.RewriterErrors,
		"relaxed_rounds", stats.RelaxedRounds,
		"duration", stats.Duration)

	if flags.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Game); err != nil {
			return fmt.Errorf("failed to encode game: %w", err)
		}
		return nil
	}

	_, err = fmt.Fprintln(stdout, result.GameID)
	return err
}
