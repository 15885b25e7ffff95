package eligibility

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dailytrivia/internal/core"
)

type mockClassifier struct {
	verdicts map[string]Verdict // keyed by clue text
	err      error
	delay    time.Duration
}

func (m *mockClassifier) Classify(ctx context.Context, req Request) (Verdict, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		}
	}
	if m.err != nil {
		return Verdict{}, m.err
	}
	return m.verdicts[req.Clue], nil
}

type mockRewriter struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (m *mockRewriter) Rewrite(_ context.Context, _ Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.text, m.err
}

func testClue(category, text, answer string) core.Clue {
	return core.Clue{Text: text, Answer: answer, Category: category, Value: 400, Origin: core.OriginFirst}
}

func TestEvaluate_HeuristicDropsAnagramCategory(t *testing.T) {
	filter := NewFilter(nil, nil, Options{})

	decision := filter.Evaluate(context.Background(), testClue("ANAGRAMS", "Tinsel becomes this word for quiet", "silent"))
	if !decision.Drop {
		t.Fatalf("Expected anagram clue to be dropped, got %+v", decision)
	}

	stats := filter.Stats()
	if stats.Evaluated != 1 || stats.Dropped != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestEvaluate_HeuristicKeepsPlainClue(t *testing.T) {
	filter := NewFilter(nil, nil, Options{})

	decision := filter.Evaluate(context.Background(), testClue("WORLD CAPITALS", "This city on the Seine is the capital of France", "Paris"))
	if decision.Drop || decision.Flagged {
		t.Errorf("Expected plain clue to be kept unflagged, got %+v", decision)
	}
	if decision.RewrittenText != "" {
		t.Errorf("Expected no rewrite, got %q", decision.RewrittenText)
	}
}

func TestEvaluate_ClassifierErrorFailsOpen(t *testing.T) {
	filter := NewFilter(&mockClassifier{err: errors.New("service unavailable")}, nil, Options{})

	decision := filter.Evaluate(context.Background(), testClue("ANAGRAMS", "Tinsel", "silent"))
	if decision.Drop {
		t.Error("Classifier failure must keep the clue")
	}
	if filter.Stats().ClassifierErrors != 1 {
		t.Errorf("Expected 1 classifier error, got %d", filter.Stats().ClassifierErrors)
	}
}

func TestEvaluate_ClassifierTimeoutFailsOpen(t *testing.T) {
	classifier := &mockClassifier{delay: time.Second}
	filter := NewFilter(classifier, nil, Options{CallTimeout: 10 * time.Millisecond})

	start := time.Now()
	decision := filter.Evaluate(context.Background(), testClue("HISTORY", "He crossed the Rubicon", "Caesar"))
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Evaluate did not honor the call timeout")
	}
	if decision.Drop {
		t.Error("Timed-out classification must keep the clue")
	}
}

func TestEvaluate_RewritesFlaggedClue(t *testing.T) {
	clue := testClue("U.S. PRESIDENTS", "This category's 16th member gave the Gettysburg Address", "Lincoln")
	classifier := &mockClassifier{verdicts: map[string]Verdict{
		clue.Text: {DependsOnCategory: true, Reason: "refers to category"},
	}}
	rewriter := &mockRewriter{text: "This 16th U.S. president gave the Gettysburg Address"}
	filter := NewFilter(classifier, rewriter, Options{})

	decision := filter.Evaluate(context.Background(), clue)
	if decision.Drop || !decision.Flagged {
		t.Fatalf("Expected flagged kept clue, got %+v", decision)
	}
	if decision.RewrittenText != rewriter.text {
		t.Errorf("Expected rewritten text %q, got %q", rewriter.text, decision.RewrittenText)
	}

	applied := decision.Apply(clue)
	if applied.Text != rewriter.text || applied.Answer != clue.Answer {
		t.Errorf("Apply produced %+v", applied)
	}
}

func TestEvaluate_RewriterErrorKeepsOriginal(t *testing.T) {
	clue := testClue("OPERA", "In this category, Verdi wrote this Egyptian opera", "Aida")
	rewriter := &mockRewriter{err: errors.New("quota exceeded")}
	filter := NewFilter(&mockClassifier{}, rewriter, Options{})

	decision := filter.Evaluate(context.Background(), clue)
	if decision.Drop {
		t.Fatal("Rewriter failure must keep the clue")
	}
	if !decision.Flagged {
		t.Error("Expected phrase detection to flag the clue")
	}
	if decision.RewrittenText != "" {
		t.Errorf("Expected original text kept, got %q", decision.RewrittenText)
	}
	if got := decision.Apply(clue).Text; got != clue.Text {
		t.Errorf("Expected original text, got %q", got)
	}
	if filter.Stats().RewriterErrors != 1 {
		t.Errorf("Expected 1 rewriter error, got %d", filter.Stats().RewriterErrors)
	}
}

func TestEvaluate_UnflaggedClueSkipsRewriter(t *testing.T) {
	rewriter := &mockRewriter{text: "should not be used"}
	filter := NewFilter(&mockClassifier{}, rewriter, Options{})

	filter.Evaluate(context.Background(), testClue("SCIENCE", "H2O is the formula for this", "water"))
	if rewriter.calls != 0 {
		t.Errorf("Expected rewriter not to be called, got %d calls", rewriter.calls)
	}
}

func TestEvaluate_BlankRewriteKeepsOriginal(t *testing.T) {
	clue := testClue("OPERA", "In this category, Verdi wrote this Egyptian opera", "Aida")
	filter := NewFilter(&mockClassifier{}, &mockRewriter{text: "   "}, Options{})

	decision := filter.Evaluate(context.Background(), clue)
	if decision.RewrittenText != "" {
		t.Errorf("Expected blank rewrite to be ignored, got %q", decision.RewrittenText)
	}
}

func TestEvaluateAll_PreservesOrder(t *testing.T) {
	clues := []core.Clue{
		testClue("ANAGRAMS", "Tinsel", "silent"),
		testClue("SCIENCE", "H2O is the formula for this", "water"),
		testClue("RHYME TIME", "A fat cat", "fat cat"),
		testClue("GEOGRAPHY", "The longest river in Africa", "the Nile"),
	}
	filter := NewFilter(nil, nil, Options{Concurrency: 3})

	decisions, err := filter.EvaluateAll(context.Background(), clues)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if len(decisions) != len(clues) {
		t.Fatalf("Expected %d decisions, got %d", len(clues), len(decisions))
	}

	expectDrop := []bool{true, false, true, false}
	for i, want := range expectDrop {
		if decisions[i].Drop != want {
			t.Errorf("Decision %d: expected drop=%v, got %+v", i, want, decisions[i])
		}
	}
}

func TestEvaluateAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	filter := NewFilter(nil, nil, Options{})
	if _, err := filter.EvaluateAll(ctx, []core.Clue{testClue("SCIENCE", "x", "y")}); err == nil {
		t.Error("Expected error for canceled context")
	}
}
