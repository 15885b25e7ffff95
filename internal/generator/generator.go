// Package generator assembles one daily game from the clue archive and
// records its clues in the used-clue ledger.
//
// A run moves through ALLOCATING_DATE, SELECTING_QUESTIONS, SELECTING_FINAL,
// ASSEMBLING and PERSISTING to DONE, or to FAILED from any step. Nothing is
// written before PERSISTING.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"dailytrivia/internal/cluestore"
	"dailytrivia/internal/core"
	"dailytrivia/internal/eligibility"
	"dailytrivia/internal/logger"
	"dailytrivia/internal/schedule"
	"dailytrivia/internal/selection"

	"github.com/google/uuid"
)

// State is a step of a generation run.
type State string

const (
	StateAllocatingDate     State = "ALLOCATING_DATE"
	StateSelectingQuestions State = "SELECTING_QUESTIONS"
	StateSelectingFinal     State = "SELECTING_FINAL"
	StateAssembling         State = "ASSEMBLING"
	StatePersisting         State = "PERSISTING"
	StateDone               State = "DONE"
	StateFailed             State = "FAILED"
)

// MinQuestions is the number of eligible clues a game needs.
const MinQuestions = core.RoundsPerGame * core.QuestionsPerRound

// GameStore is the persistence the generator needs.
type GameStore interface {
	HasGame(ctx context.Context, date string) (bool, error)
	GetGame(ctx context.Context, date string) (*core.Game, error)
	UsedKeys(ctx context.Context) ([]core.ClueKey, error)
	Commit(ctx context.Context, game core.Game, keys []core.ClueKey) error
}

// Tracker receives generation outcomes. It is optional.
type Tracker interface {
	TrackGameGenerated(ctx context.Context, gameID, date string, durationMs int64, properties map[string]any) error
	TrackGenerationFailed(ctx context.Context, state string, round int, reason string) error
}

// Options configures a Generator.
type Options struct {
	Rand                *rand.Rand       // Random source for all shuffles; nil seeds from the runtime
	Now                 func() time.Time // Clock for date allocation; nil uses time.Now
	CandidateCategories int              // Evaluate only this many shuffled categories, 0 = all
	DryRun              bool             // Assemble without committing
	Tracker             Tracker
}

// Request parameters of one run.
type Request struct {
	Date *time.Time // Specific date, nil for the next free date
}

// Stats describes one run.
type Stats struct {
	ArchiveClues    int               `json:"archive_clues"`
	UsedClues       int               `json:"used_clues"`
	Candidates      int               `json:"candidates"`
	Eligible        int               `json:"eligible"`
	FinalsEvaluated int               `json:"finals_evaluated"`
	RelaxedRounds   int               `json:"relaxed_rounds"`
	Filter          eligibility.Stats `json:"filter"`
	Duration        time.Duration     `json:"duration"`
}

// Properties flattens the stats for analytics events.
func (s Stats) Properties() map[string]any {
	return map[string]any{
		"archive_clues":     s.ArchiveClues,
		"used_clues":        s.UsedClues,
		"candidates":        s.Candidates,
		"eligible":          s.Eligible,
		"finals_evaluated":  s.FinalsEvaluated,
		"relaxed_rounds":    s.RelaxedRounds,
		"evaluated":         s.Filter.Evaluated,
		"dropped":           s.Filter.Dropped,
		"flagged":           s.Filter.Flagged,
		"rewritten":         s.Filter.Rewritten,
		"classifier_errors": s.Filter.ClassifierErrors,
		"rewriter_errors":   s.Filter.RewriterErrors,
	}
}

// Result of a run.
type Result struct {
	GameID   string
	Date     string
	Existing bool       // Requested date already had a game, nothing was written
	Game     *core.Game // Generated or existing game
	Stats    Stats
}

// Generator assembles games. A Generator runs one generation at a time;
// callers serialize runs.
type Generator struct {
	clues  []core.Clue
	store  GameStore
	filter *eligibility.Filter
	opts   Options
	rng    *rand.Rand
}

// New creates a generator over the archive clues.
func New(clues []core.Clue, store GameStore, filter *eligibility.Filter, opts Options) *Generator {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if filter == nil {
		filter = eligibility.NewFilter(nil, nil, eligibility.DefaultOptions())
	}
	return &Generator{
		clues:  clues,
		store:  store,
		filter: filter,
		opts:   opts,
		rng:    rng,
	}
}

// run carries per-run state between steps.
type run struct {
	state    State
	date     string
	clues    *cluestore.Store
	eligible []core.Clue
	origin   map[core.ClueKey]core.ClueKey // shown key -> archive key
	final    core.Clue
	game     core.Game
	stats    Stats
}

// Generate runs the state machine once.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	r := &run{origin: make(map[core.ClueKey]core.ClueKey)}

	result, err := g.generate(ctx, req, r)
	r.stats.Filter = g.filter.Stats()
	r.stats.Duration = time.Since(start)

	if err != nil {
		genErr := g.fail(r, err)
		g.trackFailure(ctx, genErr)
		return nil, genErr
	}

	result.Stats = r.stats
	if !result.Existing {
		g.trackSuccess(ctx, result)
	}
	return result, nil
}

func (g *Generator) generate(ctx context.Context, req Request, r *run) (*Result, error) {
	g.enter(r, StateAllocatingDate)
	date, exists, err := schedule.NewAllocator(g.store, g.opts.Now).NextAvailable(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	r.date = date
	if exists {
		existing, err := g.store.GetGame(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing game: %w", err)
		}
		g.enter(r, StateDone)
		logger.Info("Game already exists for date", "date", date, "game_id", existing.ID)
		return &Result{GameID: existing.ID, Date: date, Existing: true, Game: existing}, nil
	}

	g.enter(r, StateSelectingQuestions)
	if err := g.selectQuestions(ctx, r); err != nil {
		return nil, err
	}

	g.enter(r, StateSelectingFinal)
	if err := g.selectFinal(ctx, r); err != nil {
		return nil, err
	}

	g.enter(r, StateAssembling)
	if err := g.assemble(r); err != nil {
		return nil, err
	}

	g.enter(r, StatePersisting)
	if g.opts.DryRun {
		logger.Info("Dry run, skipping commit", "date", date, "game_id", r.game.ID)
	} else if err := g.store.Commit(ctx, r.game, g.ledgerKeys(r)); err != nil {
		return nil, fmt.Errorf("failed to persist game: %w", err)
	}

	g.enter(r, StateDone)
	game := r.game
	return &Result{GameID: game.ID, Date: date, Game: &game}, nil
}

func (g *Generator) enter(r *run, state State) {
	r.state = state
	logger.Debug("Generation state", "state", string(state), "date", r.date)
}

func (g *Generator) fail(r *run, err error) *Error {
	failedIn := r.state
	r.state = StateFailed

	var genErr *Error
	if !errors.As(err, &genErr) {
		genErr = &Error{State: failedIn, Err: err}
	}
	logger.Error("Generation failed", genErr.Err, "state", string(genErr.State), "round", genErr.Round)
	return genErr
}

// selectQuestions loads the ledger, evaluates the unused non-final clues and
// keeps the eligible ones in shown form.
func (g *Generator) selectQuestions(ctx context.Context, r *run) error {
	used, err := g.store.UsedKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	r.clues = cluestore.New(g.clues, used)
	r.stats.ArchiveClues = r.clues.Len()
	r.stats.UsedClues = r.clues.UsedCount()

	candidates := g.narrow(r.clues.Available())
	r.stats.Candidates = len(candidates)
	if len(candidates) < MinQuestions {
		return fmt.Errorf("%w: %d unused clues, need %d", ErrNotEnoughQuestions, len(candidates), MinQuestions)
	}

	decisions, err := g.filter.EvaluateAll(ctx, candidates)
	if err != nil {
		return fmt.Errorf("eligibility screening interrupted: %w", err)
	}

	for i, decision := range decisions {
		if decision.Drop {
			continue
		}
		if shown, ok := g.admit(r, candidates[i], decision); ok {
			r.eligible = append(r.eligible, shown)
		}
	}
	r.stats.Eligible = len(r.eligible)

	logger.Info("Screened candidate clues",
		"candidates", len(candidates),
		"eligible", len(r.eligible),
		"used", r.stats.UsedClues)

	if len(r.eligible) < MinQuestions {
		return fmt.Errorf("%w: %d eligible, need %d", ErrNotEnoughQuestions, len(r.eligible), MinQuestions)
	}
	return nil
}

// admit applies a decision and records the archive key of a rewritten clue.
// A shown key that is already used or already admitted is rejected.
func (g *Generator) admit(r *run, clue core.Clue, decision eligibility.Decision) (core.Clue, bool) {
	shown := decision.Apply(clue)
	key := shown.Key()
	if _, dup := r.origin[key]; dup {
		return core.Clue{}, false
	}
	if shown.Text != clue.Text && r.clues.IsUsed(key) {
		return core.Clue{}, false
	}
	r.origin[key] = clue.Key()
	return shown, true
}

// narrow keeps the clues of the first N shuffled categories.
func (g *Generator) narrow(clues []core.Clue) []core.Clue {
	n := g.opts.CandidateCategories
	categories := cluestore.Categories(clues)
	if n <= 0 || n >= len(categories) {
		return clues
	}

	g.rng.Shuffle(len(categories), func(i, j int) {
		categories[i], categories[j] = categories[j], categories[i]
	})
	keep := make(map[string]bool, n)
	for _, c := range categories[:n] {
		keep[c] = true
	}

	var out []core.Clue
	for _, clue := range clues {
		if keep[clue.Category] {
			out = append(out, clue)
		}
	}
	logger.Debug("Narrowed candidate categories", "kept", n, "total", len(categories), "clues", len(out))
	return out
}

// selectFinal evaluates shuffled final clues one at a time until one is
// eligible.
func (g *Generator) selectFinal(ctx context.Context, r *run) error {
	finals := r.clues.AvailableFinal()
	g.rng.Shuffle(len(finals), func(i, j int) {
		finals[i], finals[j] = finals[j], finals[i]
	})

	for _, clue := range finals {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.stats.FinalsEvaluated++
		decision := g.filter.Evaluate(ctx, clue)
		if decision.Drop {
			continue
		}
		if shown, ok := g.admit(r, clue, decision); ok {
			r.final = shown
			return nil
		}
	}
	return fmt.Errorf("%w: %d final clues evaluated", ErrNoFinalClue, len(finals))
}

func (g *Generator) assemble(r *run) error {
	selector := selection.NewSelector(r.eligible, g.rng)

	rounds := make([]core.Round, 0, core.RoundsPerGame)
	for i := 0; i < core.RoundsPerGame; i++ {
		sel, err := selector.Next(i)
		if err != nil {
			return &Error{State: StateAssembling, Round: i + 1, Err: err}
		}
		if sel.Relaxed {
			r.stats.RelaxedRounds++
			logger.Debug("Round used relaxed tier search", "round", i+1, "category", sel.Category)
		}

		round, err := selection.AssembleRound(i+1, sel.Clues)
		if err != nil {
			return &Error{State: StateAssembling, Round: i + 1, Err: err}
		}
		rounds = append(rounds, round)
	}

	r.game = core.Game{
		ID:     uuid.NewString(),
		Date:   r.date,
		Rounds: rounds,
		FinalTrivia: core.FinalTrivia{
			Category: r.final.Category,
			Question: r.final.Text,
			Answer:   r.final.Answer,
		},
	}
	return nil
}

// ledgerKeys returns every shown pair of the game plus the archive pair of
// each rewritten clue.
func (g *Generator) ledgerKeys(r *run) []core.ClueKey {
	shown := r.game.Keys()
	keys := make([]core.ClueKey, 0, len(shown))
	for _, key := range shown {
		keys = append(keys, key)
		if original, ok := r.origin[key]; ok && original != key {
			keys = append(keys, original)
		}
	}
	return keys
}

func (g *Generator) trackSuccess(ctx context.Context, result *Result) {
	if g.opts.Tracker == nil || g.opts.DryRun {
		return
	}
	if err := g.opts.Tracker.TrackGameGenerated(ctx, result.GameID, result.Date, result.Stats.Duration.Milliseconds(), result.Stats.Properties()); err != nil {
		logger.Warn("Failed to track game generation", "error", err)
	}
}

func (g *Generator) trackFailure(ctx context.Context, genErr *Error) {
	if g.opts.Tracker == nil {
		return
	}
	if err := g.opts.Tracker.TrackGenerationFailed(ctx, string(genErr.State), genErr.Round, genErr.Err.Error()); err != nil {
		logger.Warn("Failed to track generation failure", "error", err)
	}
}
