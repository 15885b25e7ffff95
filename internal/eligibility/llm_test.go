package eligibility

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dailytrivia/internal/llm"
)

type mockLLMClient struct {
	response string
	err      error
	prompts  []string
	options  []llm.TextGenerationOptions
}

func (m *mockLLMClient) GenerateText(_ context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, options)
	return m.response, m.err
}

func TestLLMClassifier_ParsesStructuredResponse(t *testing.T) {
	client := &mockLLMClient{response: "```json\n{\"shouldDisqualify\": true, \"dependsOnCategory\": false, \"reason\": \"anagram\"}\n```"}
	classifier := NewLLMClassifier(client, nil)

	verdict, err := classifier.Classify(context.Background(), Request{Category: "ANAGRAMS", Clue: "Tinsel", Answer: "silent"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !verdict.ShouldDisqualify || verdict.Reason != "anagram" {
		t.Errorf("Unexpected verdict: %+v", verdict)
	}

	if !strings.Contains(client.prompts[0], "Category: ANAGRAMS") {
		t.Error("Prompt should include the category")
	}
	if client.options[0].ResponseSchema == nil {
		t.Error("Expected a response schema")
	}
}

func TestLLMClassifier_MalformedResponse(t *testing.T) {
	classifier := NewLLMClassifier(&mockLLMClient{response: "not json"}, nil)

	if _, err := classifier.Classify(context.Background(), Request{Clue: "x"}); err == nil {
		t.Error("Expected error for malformed response")
	}
}

func TestLLMClassifier_ClientError(t *testing.T) {
	classifier := NewLLMClassifier(&mockLLMClient{err: errors.New("boom")}, nil)

	if _, err := classifier.Classify(context.Background(), Request{Clue: "x"}); err == nil {
		t.Error("Expected error when the client fails")
	}
}

func TestLLMRewriter_ReturnsClue(t *testing.T) {
	rewriter := NewLLMRewriter(&mockLLMClient{response: `{"clue": "This Verdi opera is set in ancient Egypt"}`}, nil)

	text, err := rewriter.Rewrite(context.Background(), Request{Category: "OPERA", Clue: "In this category, Verdi's Egyptian one", Answer: "Aida"})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if text != "This Verdi opera is set in ancient Egypt" {
		t.Errorf("Unexpected rewrite: %q", text)
	}
}

func TestLLMRewriter_RejectsAnswerLeak(t *testing.T) {
	rewriter := NewLLMRewriter(&mockLLMClient{response: `{"clue": "Verdi wrote AIDA, set in Egypt"}`}, nil)

	if _, err := rewriter.Rewrite(context.Background(), Request{Clue: "x", Answer: "Aida"}); err == nil {
		t.Error("Expected error when the rewrite reveals the answer")
	}
}

func TestLLMRewriter_EmptyClue(t *testing.T) {
	rewriter := NewLLMRewriter(&mockLLMClient{response: `{"clue": ""}`}, nil)

	if _, err := rewriter.Rewrite(context.Background(), Request{Clue: "x", Answer: "y"}); err == nil {
		t.Error("Expected error for empty rewrite")
	}
}

func TestPacer(t *testing.T) {
	var nilPacer *Pacer
	if err := nilPacer.Wait(context.Background()); err != nil {
		t.Errorf("Nil pacer should not wait: %v", err)
	}
	if NewPacer(0) != nil {
		t.Error("Zero interval should disable pacing")
	}

	pacer := NewPacer(time.Hour)
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("First wait should pass immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pacer.Wait(ctx); err == nil {
		t.Error("Second wait within the interval should fail with a short deadline")
	}
}
