// Package eligibility decides whether an archived clue can be shown out of
// context: kept verbatim, rewritten to drop its dependence on the category,
// or dropped entirely.
//
// The filter consults a Classifier and an optional Rewriter. Both are
// capabilities injected at startup: an LLM-backed pair when credentials are
// configured, the local HeuristicClassifier with no rewriter otherwise. Any
// collaborator failure is fail-open: the clue is kept with its original text.
package eligibility

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"dailytrivia/internal/core"
	"dailytrivia/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Request is the payload sent to classifier and rewriter collaborators.
type Request struct {
	Category string `json:"category"`
	Clue     string `json:"clue"`
	Answer   string `json:"answer"`
}

// NewRequest builds a collaborator request from a clue.
func NewRequest(clue core.Clue) Request {
	return Request{Category: clue.Category, Clue: clue.Text, Answer: clue.Answer}
}

// Verdict is a classifier response.
type Verdict struct {
	ShouldDisqualify  bool   `json:"shouldDisqualify"`
	Reason            string `json:"reason,omitempty"`
	DependsOnCategory bool   `json:"dependsOnCategory,omitempty"`
}

// Classifier decides whether a clue must be disqualified.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Verdict, error)
}

// Rewriter produces replacement clue text that keeps the same answer and
// difficulty without relying on the category.
type Rewriter interface {
	Rewrite(ctx context.Context, req Request) (string, error)
}

// Decision is the outcome of evaluating one clue.
type Decision struct {
	Drop          bool   // Clue must not be used
	Reason        string // Why the clue was dropped or flagged
	Flagged       bool   // Clue depends on its category
	RewrittenText string // Replacement text, empty to keep the original
}

// Apply returns the clue as it should be shown.
func (d Decision) Apply(clue core.Clue) core.Clue {
	if d.RewrittenText != "" {
		clue.Text = d.RewrittenText
	}
	return clue
}

// Options configures a Filter.
type Options struct {
	CallTimeout time.Duration // Per collaborator call, 0 = no timeout
	Concurrency int           // Parallel evaluations in EvaluateAll, minimum 1
}

// DefaultOptions returns sensible defaults for a remote classifier.
func DefaultOptions() Options {
	return Options{
		CallTimeout: 20 * time.Second,
		Concurrency: 4,
	}
}

// Stats counts filter outcomes. Fail-open events show up as errors here and
// in the logs, never as dropped clues.
type Stats struct {
	Evaluated        int64 `json:"evaluated"`
	Dropped          int64 `json:"dropped"`
	Flagged          int64 `json:"flagged"`
	Rewritten        int64 `json:"rewritten"`
	ClassifierErrors int64 `json:"classifier_errors"`
	RewriterErrors   int64 `json:"rewriter_errors"`
}

type counters struct {
	evaluated, dropped, flagged, rewritten, classifierErrors, rewriterErrors atomic.Int64
}

// Filter evaluates clue eligibility.
type Filter struct {
	classifier Classifier
	rewriter   Rewriter
	opts       Options
	stats      counters
}

// NewFilter creates a filter. A nil classifier selects the local heuristic
// classifier; a nil rewriter keeps flagged clues unchanged.
func NewFilter(classifier Classifier, rewriter Rewriter, opts Options) *Filter {
	if classifier == nil {
		classifier = NewHeuristicClassifier()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Filter{
		classifier: classifier,
		rewriter:   rewriter,
		opts:       opts,
	}
}

// Evaluate decides whether a clue is usable. It never fails: collaborator
// errors keep the clue with its original text.
func (f *Filter) Evaluate(ctx context.Context, clue core.Clue) Decision {
	f.stats.evaluated.Add(1)
	log := logger.Get().With("category", clue.Category, "answer", clue.Answer)
	req := NewRequest(clue)

	verdict, err := f.classify(ctx, req)
	if err != nil {
		f.stats.classifierErrors.Add(1)
		log.Warn("Classifier failed, keeping clue", "error", err)
		return Decision{}
	}

	if verdict.ShouldDisqualify {
		f.stats.dropped.Add(1)
		log.Debug("Clue disqualified", "reason", verdict.Reason)
		return Decision{Drop: true, Reason: verdict.Reason}
	}

	reason := verdict.Reason
	flagged := verdict.DependsOnCategory
	if !flagged {
		if phrase, ok := DependsOnCategory(req); ok {
			flagged = true
			reason = "category-dependent phrasing: " + phrase
		}
	}
	if !flagged {
		return Decision{}
	}

	f.stats.flagged.Add(1)
	decision := Decision{Flagged: true, Reason: reason}
	if f.rewriter == nil {
		return decision
	}

	text, err := f.rewrite(ctx, req)
	if err != nil {
		f.stats.rewriterErrors.Add(1)
		log.Warn("Rewriter failed, keeping original clue text", "error", err)
		return decision
	}

	text = strings.TrimSpace(text)
	if text == "" || text == clue.Text {
		return decision
	}

	f.stats.rewritten.Add(1)
	log.Debug("Clue rewritten", "original", clue.Text, "rewritten", text)
	decision.RewrittenText = text
	return decision
}

// EvaluateAll evaluates clues with bounded concurrency. Decisions are returned
// in input order. The only error is cancellation of ctx.
func (f *Filter) EvaluateAll(ctx context.Context, clues []core.Clue) ([]Decision, error) {
	decisions := make([]Decision, len(clues))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, clue := range clues {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decisions[i] = f.Evaluate(gctx, clue)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// Stats returns a snapshot of the filter counters.
func (f *Filter) Stats() Stats {
	return Stats{
		Evaluated:        f.stats.evaluated.Load(),
		Dropped:          f.stats.dropped.Load(),
		Flagged:          f.stats.flagged.Load(),
		Rewritten:        f.stats.rewritten.Load(),
		ClassifierErrors: f.stats.classifierErrors.Load(),
		RewriterErrors:   f.stats.rewriterErrors.Load(),
	}
}

func (f *Filter) classify(ctx context.Context, req Request) (Verdict, error) {
	ctx, cancel := f.callContext(ctx)
	defer cancel()
	return f.classifier.Classify(ctx, req)
}

func (f *Filter) rewrite(ctx context.Context, req Request) (string, error) {
	ctx, cancel := f.callContext(ctx)
	defer cancel()
	return f.rewriter.Rewrite(ctx, req)
}

func (f *Filter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.opts.CallTimeout)
}
