package llm

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestNewClient_NoAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	if err == nil {
		t.Fatal("Expected error when no API key is available")
	}
	if !strings.Contains(err.Error(), "gemini API key is required") {
		t.Errorf("Expected API key error, got: %v", err)
	}
}

func TestNewClient_Success(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	client, err := NewClient(context.Background(), apiKey, "")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.GetModelName() != DefaultModel {
		t.Errorf("Expected default model %s, got %s", DefaultModel, client.GetModelName())
	}
}

func TestBuildConfig(t *testing.T) {
	if cfg := BuildConfig(TextGenerationOptions{}); cfg != nil {
		t.Errorf("Expected nil config for empty options, got %+v", cfg)
	}

	schema := &genai.Schema{Type: genai.TypeObject}
	cfg := BuildConfig(TextGenerationOptions{MaxTokens: 256, Temperature: 0.2, ResponseSchema: schema})
	if cfg == nil {
		t.Fatal("Expected config")
	}
	if cfg.MaxOutputTokens != 256 {
		t.Errorf("Expected max tokens 256, got %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", cfg.Temperature)
	}
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema != schema {
		t.Errorf("Expected JSON schema output, got %q", cfg.ResponseMIMEType)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`  {"a":1}  `:             `{"a":1}`,
	}
	for in, want := range tests {
		if got := StripCodeFence(in); got != want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	return f.response, f.err
}

type recordingTracker struct {
	enabled bool
	calls   []bool
}

func (r *recordingTracker) IsEnabled() bool { return r.enabled }

func (r *recordingTracker) TrackLLMCall(ctx context.Context, model string, operation string, tokens int, latencyMs int64, success bool) error {
	r.calls = append(r.calls, success)
	return nil
}

func TestTracedClient(t *testing.T) {
	tracker := &recordingTracker{enabled: true}
	tc := &TracedClient{client: &fakeGenerator{response: "ok"}, modelName: "m", tracker: tracker, operation: "classify"}

	out, err := tc.GenerateText(context.Background(), "prompt", TextGenerationOptions{})
	if err != nil || out != "ok" {
		t.Fatalf("GenerateText failed: %q, %v", out, err)
	}

	tc.client = &fakeGenerator{err: errors.New("quota")}
	if _, err := tc.GenerateText(context.Background(), "prompt", TextGenerationOptions{}); err == nil {
		t.Error("Expected underlying error to propagate")
	}

	if len(tracker.calls) != 2 || !tracker.calls[0] || tracker.calls[1] {
		t.Errorf("Expected [true false] tracked, got %v", tracker.calls)
	}

	tracker.enabled = false
	_, _ = tc.GenerateText(context.Background(), "prompt", TextGenerationOptions{})
	if len(tracker.calls) != 2 {
		t.Errorf("Expected no tracking when disabled, got %d calls", len(tracker.calls))
	}
}
