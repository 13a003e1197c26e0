// Package extract turns an uploaded file into plain text. Each supported file
// kind has exactly one strategy, registered in a Registry.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindText        Kind = "text"
	KindPDF         Kind = "pdf"
	KindWord        Kind = "word"
	KindImage       Kind = "image"
	KindSpreadsheet Kind = "spreadsheet"
)

var (
	ErrUnsupportedKind = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text could be extracted")
	ErrUnreadable      = errors.New("file could not be read")
	ErrOCRUnavailable  = errors.New("ocr backend not configured")
	ErrOCRFailed       = errors.New("ocr request failed")
)

var kindsByExt = map[string]Kind{
	".txt":  KindText,
	".md":   KindText,
	".pdf":  KindPDF,
	".docx": KindWord,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".webp": KindImage,
	".bmp":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".xlsx": KindSpreadsheet,
}

// KindFromFilename classifies a file by its extension, case-insensitively.
func KindFromFilename(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if kind, ok := kindsByExt[ext]; ok {
		return kind, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: missing extension", ErrUnsupportedKind)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, ext)
}

// ContentType is the MIME type set on stored objects of the given file name.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type ExtractorFunc func(ctx context.Context, path string) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

type Registry struct {
	extractors map[Kind]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[Kind]Extractor)}
}

// Register binds kind to e, replacing any earlier binding.
func (r *Registry) Register(kind Kind, e Extractor) {
	r.extractors[kind] = e
}

// Extract runs the strategy for kind and sanitises its output. An empty result
// is reported as ErrNoText.
func (r *Registry) Extract(ctx context.Context, kind Kind, path string) (string, error) {
	e, ok := r.extractors[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	raw, err := e.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	text := Sanitize(raw)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// NewDefaultRegistry wires one strategy for every Kind. ocr may be nil, in
// which case image uploads fail with ErrOCRUnavailable.
func NewDefaultRegistry(ctx context.Context, ocr OCR, limits ImageLimits, logger *slog.Logger) (*Registry, error) {
	text, err := NewTextExtractor(ctx)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	r.Register(KindText, text)
	r.Register(KindPDF, PDFExtractor{})
	r.Register(KindWord, WordExtractor{})
	r.Register(KindImage, NewImageExtractor(ocr, limits, logger))
	r.Register(KindSpreadsheet, SpreadsheetExtractor{})
	return r, nil
}
