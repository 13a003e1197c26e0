package app

import (
	"context"
	"log/slog"
	"strings"

	"legaldoc-ai/internal/ai"
	"legaldoc-ai/internal/model"
	"legaldoc-ai/internal/prompt"
)

// ChatService answers follow-up questions. The caller owns the conversation
// and sends the full history each time; nothing is stored here.
type ChatService struct {
	model           ai.Client
	defaultLanguage string
	logger          *slog.Logger
}

type ChatInput struct {
	History  []model.Turn
	Language string
}

type ChatResult struct {
	Response string
	// History is the input history followed by the model's reply.
	History []model.Turn
}

func NewChatService(client ai.Client, defaultLanguage string, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		model:           client,
		defaultLanguage: defaultLanguage,
		logger:          logger.With("component", "chat"),
	}
}

// Ready reports ErrModelNotConfigured when no model client was built.
func (s *ChatService) Ready() error {
	if s.model == nil {
		return ErrModelNotConfigured
	}
	return nil
}

// Reply sends all but the last history entry as the session and the last
// entry's first part, wrapped as a document question, as the new message.
func (s *ChatService) Reply(ctx context.Context, in ChatInput) (*ChatResult, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	if len(in.History) == 0 {
		return nil, ErrHistoryEmpty
	}

	last := in.History[len(in.History)-1]
	if len(last.Parts) == 0 || strings.TrimSpace(last.Parts[0].Text) == "" {
		return nil, ErrQuestionMissing
	}

	language := in.Language
	if strings.TrimSpace(language) == "" {
		language = s.defaultLanguage
	}
	question := prompt.ChatQuestion(language, last.Parts[0].Text)

	reply, err := s.model.Chat(ctx, in.History[:len(in.History)-1], question)
	if err != nil {
		s.logger.Error("model chat failed", "turns", len(in.History), "error", err)
		return nil, wrap(ErrModelFailed, err)
	}

	history := make([]model.Turn, 0, len(in.History)+1)
	history = append(history, in.History...)
	history = append(history, model.NewModelTurn(reply))
	return &ChatResult{Response: reply, History: history}, nil
}
