package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// OCR detects text in an encoded image.
type OCR interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// DefaultMaxPixels bounds the decoded size of an uploaded image.
const DefaultMaxPixels = 50_000_000

// ImageLimits bounds the images handed to OCR. MaxDimension <= 0 disables
// downscaling; MaxPixels <= 0 selects DefaultMaxPixels.
type ImageLimits struct {
	MaxDimension int
	MaxPixels    int
}

type ImageExtractor struct {
	ocr    OCR
	limits ImageLimits
	logger *slog.Logger
}

// NewImageExtractor returns an extractor that fails with ErrOCRUnavailable
// when ocr is nil.
func NewImageExtractor(ocr OCR, limits ImageLimits, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxPixels <= 0 {
		limits.MaxPixels = DefaultMaxPixels
	}
	return &ImageExtractor{ocr: ocr, limits: limits, logger: logger}
}

func (e *ImageExtractor) Extract(ctx context.Context, path string) (string, error) {
	if e.ocr == nil {
		return "", ErrOCRUnavailable
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	payload, err := e.normalize(raw)
	if err != nil {
		return "", err
	}
	text, err := e.ocr.DetectText(ctx, payload)
	if err != nil {
		if errors.Is(err, ErrOCRFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	return text, nil
}

// normalize decodes the image and re-encodes it as PNG, shrinking it first
// when its longer side exceeds MaxDimension. The header is checked against
// MaxPixels before any pixel data is decoded.
func (e *ImageExtractor) normalize(raw []byte) ([]byte, error) {
	hdr, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image header: %v", ErrUnreadable, err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnreadable)
	}
	if int64(hdr.Width)*int64(hdr.Height) > int64(e.limits.MaxPixels) {
		return nil, fmt.Errorf("%w: image is %dx%d, above the %d pixel limit",
			ErrUnreadable, hdr.Width, hdr.Height, e.limits.MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", ErrUnreadable, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnreadable)
	}
	if limit := e.limits.MaxDimension; limit > 0 && max(w, h) > limit {
		nw, nh := scaledSize(w, h, limit)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		e.logger.Debug("image downscaled for ocr", "format", format, "from_w", w, "from_h", h, "to_w", nw, "to_h", nh)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func scaledSize(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
