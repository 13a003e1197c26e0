package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"legaldoc-ai/internal/config"
	"legaldoc-ai/internal/model"
)

// EinoClient drives any eino chat model.
type EinoClient struct {
	chatModel einomodel.BaseChatModel
}

func NewEinoClient(chatModel einomodel.BaseChatModel) *EinoClient {
	return &EinoClient{chatModel: chatModel}
}

func NewOpenAIClient(ctx context.Context, cfg config.LLMConfig) (*EinoClient, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai model failed: %w", err)
	}
	return NewEinoClient(chatModel), nil
}

func NewClaudeClient(ctx context.Context, cfg config.LLMConfig) (*EinoClient, error) {
	var baseURL *string
	if cfg.BaseURL != "" {
		baseURL = &cfg.BaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   baseURL,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create claude model failed: %w", err)
	}
	return NewEinoClient(chatModel), nil
}

func (c *EinoClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
}

func (c *EinoClient) Chat(ctx context.Context, history []model.Turn, message string) (string, error) {
	msgs := make([]*schema.Message, 0, len(history)+1)
	for _, turn := range history {
		text := turn.Text()
		if text == "" {
			continue
		}
		if turn.IsModel() {
			msgs = append(msgs, schema.AssistantMessage(text, nil))
		} else {
			msgs = append(msgs, schema.UserMessage(text))
		}
	}
	msgs = append(msgs, schema.UserMessage(message))
	return c.generate(ctx, msgs)
}

func (c *EinoClient) generate(ctx context.Context, msgs []*schema.Message) (string, error) {
	resp, err := c.chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("model generate failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Content), nil
}
