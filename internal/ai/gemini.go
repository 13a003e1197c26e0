package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"legaldoc-ai/internal/config"
	"legaldoc-ai/internal/model"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return responseText(resp)
}

func (g *GeminiClient) Chat(ctx context.Context, history []model.Turn, message string) (string, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, nil, geminiHistory(history))
	if err != nil {
		return "", fmt.Errorf("gemini chat session failed: %w", err)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}
	return responseText(resp)
}

// geminiHistory maps turns onto the two roles Gemini accepts. Turns without
// text are skipped.
func geminiHistory(history []model.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		text := turn.Text()
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if turn.IsModel() {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
