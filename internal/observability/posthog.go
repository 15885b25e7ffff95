// Package observability sends product analytics for generation runs.
package observability

import (
	"context"
	"fmt"
	"sync"

	"dailytrivia/internal/config"
	"dailytrivia/internal/logger"

	"github.com/posthog/posthog-go"
)

// distinctID identifies the generator process in analytics events.
const distinctID = "dailytrivia"

// PostHogClient wraps the PostHog SDK for product analytics
type PostHogClient struct {
	client  posthog.Client
	enabled bool
	once    sync.Once
}

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

// NewPostHogClient creates a new PostHog analytics client. A disabled config
// yields a client whose methods do nothing.
func NewPostHogClient(cfg config.PostHogConfig) (*PostHogClient, error) {
	if !cfg.Enabled {
		return &PostHogClient{enabled: false}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return newWithClient(client), nil
}

func newWithClient(client posthog.Client) *PostHogClient {
	return &PostHogClient{
		client:  client,
		enabled: true,
	}
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(_ context.Context, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	return p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	})
}

// TrackGameGenerated tracks a committed game with its screening counters
func (p *PostHogClient) TrackGameGenerated(ctx context.Context, gameID, date string, durationMs int64, properties map[string]any) error {
	props := EventProperties{
		"game_id":     gameID,
		"game_date":   date,
		"duration_ms": durationMs,
	}
	for k, v := range properties {
		props[k] = v
	}
	return p.Capture(ctx, "game_generated", props)
}

// TrackGenerationFailed tracks a run that ended in FAILED
func (p *PostHogClient) TrackGenerationFailed(ctx context.Context, state string, round int, reason string) error {
	return p.Capture(ctx, "game_generation_failed", EventProperties{
		"state":  state,
		"round":  round,
		"reason": reason,
	})
}

// TrackLLMCall tracks LLM API calls for cost and performance monitoring
func (p *PostHogClient) TrackLLMCall(ctx context.Context, model string, operation string, tokens int, latencyMs int64, success bool) error {
	return p.Capture(ctx, "llm_call", EventProperties{
		"model":      model,
		"operation":  operation, // "classification", "rewrite"
		"tokens":     tokens,
		"latency_ms": latencyMs,
		"success":    success,
	})
}

// Close flushes pending events. It is safe to call more than once.
func (p *PostHogClient) Close() error {
	if !p.IsEnabled() {
		return nil
	}

	var err error
	p.once.Do(func() {
		err = p.client.Close()
		if err != nil {
			logger.Warn("Failed to flush PostHog events", "error", err)
		}
	})
	return err
}
