package extract

import (
	"context"
	"fmt"

	"legaldoc-ai/internal/pkg/pdfextract"
)

type PDFExtractor struct{}

func (PDFExtractor) Extract(_ context.Context, path string) (string, error) {
	text, err := pdfextract.ExtractFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return text, nil
}
