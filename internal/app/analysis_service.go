package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"legaldoc-ai/internal/ai"
	"legaldoc-ai/internal/extract"
	"legaldoc-ai/internal/knowledge"
	"legaldoc-ai/internal/metadata"
	"legaldoc-ai/internal/prompt"
	"legaldoc-ai/internal/storage"
)

type AnalysisOptions struct {
	MaxBytes         int64
	TempDir          string
	MaxDocumentChars int
	DefaultLanguage  string
}

type AnalysisService struct {
	model      ai.Client
	store      storage.ObjectStore
	metadata   *metadata.Logger
	extractors *extract.Registry
	kb         *knowledge.Base
	opts       AnalysisOptions
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

type AnalyzeInput struct {
	Filename string
	// Size is the size the client declared; the bytes actually read are checked too.
	Size     int64
	Content  io.Reader
	Language string
}

type AnalyzeResult struct {
	DocumentID   string
	StoragePath  string
	DocumentText string
	Analysis     string
}

// NewAnalysisService accepts a nil model or store; Analyze then fails with
// the matching not-configured error.
func NewAnalysisService(
	client ai.Client,
	store storage.ObjectStore,
	meta *metadata.Logger,
	extractors *extract.Registry,
	kb *knowledge.Base,
	opts AnalysisOptions,
	logger *slog.Logger,
) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if meta == nil {
		meta = metadata.NewLogger(nil, logger)
	}
	if kb == nil {
		kb = knowledge.New("", "")
	}
	return &AnalysisService{
		model:      client,
		store:      store,
		metadata:   meta,
		extractors: extractors,
		kb:         kb,
		opts:       opts,
		logger:     logger.With("component", "analysis"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeResult, error) {
	if s.model == nil {
		return nil, ErrModelNotConfigured
	}
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}

	filename := strings.TrimSpace(in.Filename)
	kind, err := s.validate(filename, in.Size)
	if err != nil {
		return nil, err
	}

	tmpPath, size, err := s.spool(filename, in.Content)
	if tmpPath != "" {
		defer func() {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				s.logger.Warn("remove temp file failed", "path", tmpPath, "error", rmErr)
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	documentID := s.newID()
	log := s.logger.With("document_id", documentID, "filename", filename, "kind", string(kind))
	contentType := extract.ContentType(filename)

	storagePath, err := s.upload(ctx, tmpPath, storage.UploadKey(documentID, filename), contentType)
	if err != nil {
		log.Error("store upload failed", "error", err)
		return nil, err
	}

	fileType := strings.ToLower(filepath.Ext(filename))
	s.metadata.Log(ctx, metadata.NewRecord(documentID, filename, fileType, size, storagePath, s.now()))

	text, err := s.extractors.Extract(ctx, kind, tmpPath)
	if err != nil {
		log.Warn("text extraction failed", "error", err)
		return nil, extractionError(err)
	}
	log.Info("text extracted", "chars", len([]rune(text)))

	language := in.Language
	if strings.TrimSpace(language) == "" {
		language = s.opts.DefaultLanguage
	}
	p := prompt.Analysis(language, s.kb.String(), text, s.opts.MaxDocumentChars)

	started := time.Now()
	analysis, err := s.model.Generate(ctx, p)
	if err != nil {
		log.Error("model generate failed", "error", err)
		return nil, wrap(ErrModelFailed, err)
	}
	log.Info("analysis generated", "latency_ms", time.Since(started).Milliseconds())

	return &AnalyzeResult{
		DocumentID:   documentID,
		StoragePath:  storagePath,
		DocumentText: text,
		Analysis:     analysis,
	}, nil
}

func (s *AnalysisService) validate(filename string, size int64) (extract.Kind, error) {
	if filename == "" {
		return "", ErrNoFileSelected
	}
	if size == 0 {
		return "", ErrEmptyFile
	}
	if s.opts.MaxBytes > 0 && size > s.opts.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, s.opts.MaxBytes)
	}
	kind, err := extract.KindFromFilename(filename)
	if err != nil {
		return "", wrap(ErrUnsupportedType, err)
	}
	return kind, nil
}

// spool copies the upload to a temp file. The returned path is non-empty
// whenever a file was created, even on error, so the caller can remove it.
func (s *AnalysisService) spool(filename string, r io.Reader) (string, int64, error) {
	if r == nil {
		return "", 0, ErrNoFile
	}
	f, err := os.CreateTemp(s.opts.TempDir, "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	src := r
	if s.opts.MaxBytes > 0 {
		src = io.LimitReader(r, s.opts.MaxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		return path, n, fmt.Errorf("write temp file: %w", copyErr)
	case closeErr != nil:
		return path, n, fmt.Errorf("close temp file: %w", closeErr)
	case n == 0:
		return path, 0, ErrEmptyFile
	case s.opts.MaxBytes > 0 && n > s.opts.MaxBytes:
		return path, n, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, s.opts.MaxBytes)
	}
	return path, n, nil
}

func (s *AnalysisService) upload(ctx context.Context, path, key, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reopen temp file: %w", err)
	}
	defer f.Close()

	uri, err := s.store.Put(ctx, key, f, contentType)
	if err != nil {
		return "", wrap(ErrStorageFailed, err)
	}
	return uri, nil
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, extract.ErrNoText):
		return wrap(ErrNoText, err)
	case errors.Is(err, extract.ErrOCRUnavailable):
		return wrap(ErrOCRNotConfigured, err)
	case errors.Is(err, extract.ErrOCRFailed):
		return wrap(ErrOCRFailed, err)
	case errors.Is(err, extract.ErrUnsupportedKind):
		return wrap(ErrUnsupportedType, err)
	default:
		return wrap(ErrExtractionFailed, err)
	}
}
