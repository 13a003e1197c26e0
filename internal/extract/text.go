package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
)

type TextExtractor struct {
	loader *file.FileLoader
}

func NewTextExtractor(ctx context.Context) (*TextExtractor, error) {
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      parser.TextParser{},
	})
	if err != nil {
		return nil, fmt.Errorf("create file loader failed: %w", err)
	}
	return &TextExtractor{loader: loader}, nil
}

func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	docs, err := e.loader.Load(ctx, document.Source{URI: path})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	var sb strings.Builder
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		sb.WriteString(doc.Content)
	}
	return sb.String(), nil
}
