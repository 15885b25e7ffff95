package handlers

import (
	"context"
	"fmt"

	"dailytrivia/internal/cluestore"
	"dailytrivia/internal/config"
	"dailytrivia/internal/core"
	"dailytrivia/internal/eligibility"
	"dailytrivia/internal/llm"
	"dailytrivia/internal/logger"
	"dailytrivia/internal/observability"
	"dailytrivia/internal/store"
)

func openStore(cfg *config.Config) (store.Store, error) {
	s, err := store.Open(store.Options{
		Backend:    cfg.Storage.Backend,
		GamesDir:   cfg.Storage.GamesDir,
		LedgerPath: cfg.Storage.LedgerPath,
		SQLitePath: cfg.Storage.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	return s, nil
}

func loadArchive(cfg *config.Config) ([]core.Clue, error) {
	clues, err := cluestore.Load(cfg.Archive.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded clue archive", "path", cfg.Archive.Path, "clues", len(clues))
	return clues, nil
}

// screening describes which eligibility path was selected.
type screening struct {
	filter *eligibility.Filter
	mode   string // "llm" or "heuristic"
}

// buildFilter selects the eligibility collaborators once. A usable Gemini key
// selects the LLM classifier and rewriter; otherwise the local heuristics run
// with no rewriter.
func buildFilter(ctx context.Context, cfg *config.Config, tracker llm.CallTracker) (*screening, error) {
	opts := eligibility.Options{
		CallTimeout: cfg.Eligibility.CallTimeoutDuration(),
		Concurrency: cfg.Eligibility.Concurrency,
	}

	if !cfg.HasGeminiKey() {
		logger.Info("No Gemini API key configured, using heuristic clue screening")
		return &screening{filter: eligibility.NewFilter(eligibility.NewHeuristicClassifier(), nil, opts), mode: "heuristic"}, nil
	}

	client, err := llm.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	pacer := eligibility.NewPacer(cfg.Eligibility.PaceIntervalDuration())
	classifier := eligibility.NewLLMClassifier(llm.NewTracedClient(client, tracker, "classification"), pacer)

	var rewriter eligibility.Rewriter
	if cfg.Eligibility.Rewrite {
		rewriter = eligibility.NewLLMRewriter(llm.NewTracedClient(client, tracker, "rewrite"), pacer)
	}

	logger.Info("Using LLM clue screening", "model", client.GetModelName(), "rewrite", cfg.Eligibility.Rewrite)
	return &screening{filter: eligibility.NewFilter(classifier, rewriter, opts), mode: "llm"}, nil
}

func newTracker(cfg *config.Config) *observability.PostHogClient {
	tracker, err := observability.NewPostHogClient(cfg.Observability.PostHog)
	if err != nil {
		logger.Warn("Analytics disabled", "error", err)
		tracker, _ = observability.NewPostHogClient(config.PostHogConfig{})
	}
	return tracker
}
