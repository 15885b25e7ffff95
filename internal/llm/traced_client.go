package llm

import (
	"context"
	"time"
)

// CallTracker records LLM calls for analytics.
type CallTracker interface {
	IsEnabled() bool
	TrackLLMCall(ctx context.Context, model string, operation string, tokens int, latencyMs int64, success bool) error
}

// TextGenerator is the call surface shared by Client and TracedClient.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error)
}

// TracedClient wraps an LLM client and reports each call to a tracker.
type TracedClient struct {
	client    TextGenerator
	modelName string
	tracker   CallTracker
	operation string
}

// NewTracedClient creates a traced client. Calls are labelled with operation.
func NewTracedClient(client *Client, tracker CallTracker, operation string) *TracedClient {
	return &TracedClient{
		client:    client,
		modelName: client.GetModelName(),
		tracker:   tracker,
		operation: operation,
	}
}

// GenerateText generates text with tracking
func (tc *TracedClient) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if tc.tracker == nil || !tc.tracker.IsEnabled() {
		return tc.client.GenerateText(ctx, prompt, options)
	}

	startTime := time.Now()
	result, err := tc.client.GenerateText(ctx, prompt, options)
	latencyMs := time.Since(startTime).Milliseconds()

	model := options.Model
	if model == "" {
		model = tc.modelName
	}
	_ = tc.tracker.TrackLLMCall(ctx, model, tc.operation, estimateTokens(prompt, result), latencyMs, err == nil)

	return result, err
}

// estimateTokens approximates token usage at four characters per token.
func estimateTokens(prompt, completion string) int {
	return (len(prompt) + len(completion)) / 4
}
