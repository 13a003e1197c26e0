package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"legaldoc-ai/internal/app"
	"legaldoc-ai/internal/model"
	"legaldoc-ai/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	logger      *slog.Logger
}

type ChatRequest struct {
	History  []model.Turn `json:"history"`
	Language string       `json:"language"`
}

type ChatResponse struct {
	Response string       `json:"response"`
	History  []model.Turn `json:"history"`
}

func NewChatHandler(chatService *app.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chatService: chatService, logger: logger}
}

func (h *ChatHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Chat endpoint is working. Send a POST request with history and language.",
	})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	if err := h.chatService.Ready(); err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidJSON, "invalid request payload")
		return
	}

	result, err := h.chatService.Reply(c.Request.Context(), app.ChatInput{
		History:  req.History,
		Language: req.Language,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.OK(c, ChatResponse{
		Response: result.Response,
		History:  result.History,
	})
}
