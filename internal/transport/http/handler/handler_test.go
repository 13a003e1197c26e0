package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legaldoc-ai/internal/ai"
	"legaldoc-ai/internal/app"
	"legaldoc-ai/internal/extract"
	"legaldoc-ai/internal/knowledge"
	"legaldoc-ai/internal/metadata"
	"legaldoc-ai/internal/model"
	"legaldoc-ai/internal/storage"
	"legaldoc-ai/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubModel struct {
	reply string
	err   error
	calls int
}

func (m *stubModel) Generate(context.Context, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func (m *stubModel) Chat(context.Context, []model.Turn, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

type memoryStore struct {
	objects map[string][]byte
}

func (s *memoryStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = b
	return "gs://test-bucket/" + key, nil
}

type testServer struct {
	engine  *gin.Engine
	model   *stubModel
	store   *memoryStore
	tempDir string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, withModel bool) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()

	stub := &stubModel{reply: "### Summary\nA rental agreement."}
	var client ai.Client
	if withModel {
		client = stub
	}
	store := &memoryStore{objects: map[string][]byte{}}
	var objectStore storage.ObjectStore = store

	registry, err := extract.NewDefaultRegistry(ctx, nil, extract.ImageLimits{}, logger)
	require.NoError(t, err)

	tempDir := t.TempDir()
	const maxBytes = 1024
	analysis := app.NewAnalysisService(
		client,
		objectStore,
		metadata.NewLogger(metadata.Discard{}, logger),
		registry,
		knowledge.New("bns", "constitution"),
		app.AnalysisOptions{MaxBytes: maxBytes, TempDir: tempDir, DefaultLanguage: "English"},
		logger,
	)
	chat := app.NewChatService(client, "English", logger)

	engine := gin.New()
	analyze := NewAnalyzeHandler(analysis, maxBytes, logger)
	chatHandler := NewChatHandler(chat, logger)
	health := NewHealthHandler("legaldoc-ai", withModel, true, time.Now(), map[string]DependencyCheck{
		"storage": func(context.Context) error { return nil },
	})
	engine.POST("/analyze", analyze.Analyze)
	engine.GET("/chat", chatHandler.Usage)
	engine.POST("/chat", chatHandler.SendMessage)
	engine.GET("/health", health.Check)

	return &testServer{engine: engine, model: stub, store: store, tempDir: tempDir}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, fieldName, filename string, content []byte, language string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if fieldName != "" {
		part, err := w.CreateFormFile(fieldName, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if language != "" {
		require.NoError(t, w.WriteField("language", language))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAnalyzeTextUpload(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "lease.txt", []byte("The tenant shall pay rent."), "Hindi"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "### Summary\nA rental agreement.", resp.Analysis)
	assert.Equal(t, resp.Analysis, resp.Summary)
	assert.Equal(t, "The tenant shall pay rent.", resp.DocumentText)
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, "gs://test-bucket/uploads/"+resp.DocumentID+"/lease.txt", resp.StoragePath)
	assert.Equal(t, []byte("The tenant shall pay rent."), s.store.objects["uploads/"+resp.DocumentID+"/lease.txt"])

	entries, err := os.ReadDir(s.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyzePDFUpload(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "deed.pdf", testutil.PDF("Sale deed"), ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode(t, rec)["documentText"], "Sale deed")
}

func TestAnalyzeDocxUpload(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "will.docx", testutil.Docx("Last will", "Executor: R. Iyer"), ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Last will\nExecutor: R. Iyer", decode(t, rec)["documentText"])
}

func TestAnalyzeMissingFile(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "", "", nil, "English"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "no file uploaded", body["error"])
	assert.Zero(t, s.model.calls)
}

func TestAnalyzeNotMultipart(t *testing.T) {
	s := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEmptyFile(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "empty.txt", nil, ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "uploaded file is empty", decode(t, rec)["error"])
	assert.Empty(t, s.store.objects)
}

func TestAnalyzeTooLarge(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "big.txt", bytes.Repeat([]byte("a"), 2048), ""))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, float64(41300), decode(t, rec)["code"])
}

func TestAnalyzeUnsupportedType(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "setup.exe", []byte("MZ"), ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported file type", decode(t, rec)["error"])
}

func TestAnalyzeCorruptPDF(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "broken.pdf", []byte("garbage bytes"), ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.model.calls)
}

func TestAnalyzeImageWithoutOCR(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(multipartRequest(t, "file", "scan.png", testutil.PNG(2, 2), ""))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, float64(50001), decode(t, rec)["code"])
}

func TestAnalyzeWithoutModelKey(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(multipartRequest(t, "file", "lease.txt", []byte("text"), ""))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "GEMINI_API_KEY not configured", decode(t, rec)["error"])
	assert.Zero(t, s.model.calls)
	assert.Empty(t, s.store.objects)
}

func TestAnalyzeModelErrorIsSanitised(t *testing.T) {
	s := newTestServer(t, true)
	s.model.err = errors.New("upstream said: key=AIza-secret")

	rec := s.do(multipartRequest(t, "file", "lease.txt", []byte("text"), ""))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "AIza-secret")
}

func chatRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChatAppendsModelTurn(t *testing.T) {
	s := newTestServer(t, true)
	s.model.reply = "Section 318 covers cheating."

	history := []model.Turn{
		{Role: "user", Parts: []model.Part{{Text: "doc"}}},
		{Role: "model", Parts: []model.Part{{Text: "analysis"}}},
		{Role: "user", Parts: []model.Part{{Text: "Which section applies?"}}},
	}
	rec := s.do(chatRequest(t, ChatRequest{History: history, Language: "English"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Section 318 covers cheating.", resp.Response)
	require.Len(t, resp.History, 4)
	assert.Equal(t, "model", resp.History[3].Role)
	assert.Equal(t, "Section 318 covers cheating.", resp.History[3].Parts[0].Text)
	assert.Equal(t, 1, s.model.calls)
}

func TestChatValidation(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(chatRequest(t, map[string]any{"history": []any{}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no chat history provided", decode(t, rec)["error"])

	rec = s.do(chatRequest(t, map[string]any{"history": []any{map[string]any{"role": "user", "parts": []any{}}}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.model.calls)
}

func TestChatWithoutModelKey(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(chatRequest(t, ChatRequest{History: []model.Turn{{Role: "user", Parts: []model.Part{{Text: "q"}}}}}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "GEMINI_API_KEY not configured", decode(t, rec)["error"])
}

func TestChatKeyCheckedBeforeBody(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "GEMINI_API_KEY not configured", decode(t, rec)["error"])
}

func TestChatUsage(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/chat", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "POST")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["gemini_configured"])
	assert.Equal(t, true, body["gcp_configured"])
	assert.Contains(t, body, "uptime_sec")
}

func TestHealthDegraded(t *testing.T) {
	h := NewHealthHandler("legaldoc-ai", true, true, time.Now(), map[string]DependencyCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	engine := gin.New()
	engine.GET("/health", h.Check)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, false, deps["redis"].(map[string]any)["ok"])
}
