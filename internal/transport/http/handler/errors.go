package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"legaldoc-ai/internal/app"
	"legaldoc-ai/internal/transport/http/response"
)

// writeError logs the full error and answers with the sanitised message only.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := http.StatusInternalServerError, response.CodeInternalServer
	switch app.KindOf(err) {
	case app.KindInvalidInput:
		status, code = http.StatusBadRequest, response.CodeBadRequest
	case app.KindTooLarge:
		status, code = http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge
	case app.KindNotConfigured:
		code = response.CodeNotConfigured
	case app.KindBackend:
		code = response.CodeUpstream
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(c.Request.Context(), level, "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", status,
		"error", err,
	)
	response.Error(c, status, code, app.PublicMessage(err))
}
