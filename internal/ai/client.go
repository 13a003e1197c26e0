// Package ai wraps the generative model behind a two-call interface: a single
// prompt completion and a history-aware chat turn.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legaldoc-ai/internal/config"
	"legaldoc-ai/internal/model"
)

var (
	ErrNotConfigured = errors.New("model api key not configured")
	ErrEmptyResponse = errors.New("model returned an empty response")
)

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Chat continues history with message as the next user turn.
	Chat(ctx context.Context, history []model.Turn, message string) (string, error)
}

// New builds the client for the configured provider. Without an API key it
// returns ErrNotConfigured and no client.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiClient(ctx, cfg)
	case "openai":
		return NewOpenAIClient(ctx, cfg)
	case "claude":
		return NewClaudeClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("invalid provider: %s", cfg.Provider)
	}
}
