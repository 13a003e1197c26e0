package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"legaldoc-ai/internal/app"
	"legaldoc-ai/internal/transport/http/response"
)

// multipart framing and the language field on top of the file itself
const multipartOverhead = 1 << 20

type AnalyzeHandler struct {
	analysisService *app.AnalysisService
	maxBytes        int64
	logger          *slog.Logger
}

type AnalyzeResponse struct {
	Analysis     string `json:"analysis"`
	Summary      string `json:"summary"`
	DocumentText string `json:"documentText"`
	DocumentID   string `json:"documentId"`
	StoragePath  string `json:"storagePath"`
}

func NewAnalyzeHandler(analysisService *app.AnalysisService, maxBytes int64, logger *slog.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeHandler{analysisService: analysisService, maxBytes: maxBytes, logger: logger}
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.logger, app.ErrFileTooLarge)
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeNoFile, app.ErrNoFile.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer file.Close()

	result, err := h.analysisService.Analyze(c.Request.Context(), app.AnalyzeInput{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
		Language: c.PostForm("language"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.OK(c, AnalyzeResponse{
		Analysis:     result.Analysis,
		Summary:      result.Analysis,
		DocumentText: result.DocumentText,
		DocumentID:   result.DocumentID,
		StoragePath:  result.StoragePath,
	})
}
