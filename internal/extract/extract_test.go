package extract

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"legaldoc-ai/internal/testutil"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
	last  []byte
}

func (f *fakeOCR) DetectText(_ context.Context, image []byte) (string, error) {
	f.calls++
	f.last = image
	return f.text, f.err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func newRegistry(t *testing.T, ocr OCR) *Registry {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := NewDefaultRegistry(context.Background(), ocr, ImageLimits{MaxDimension: 64}, logger)
	require.NoError(t, err)
	return r
}

func TestKindFromFilename(t *testing.T) {
	cases := map[string]Kind{
		"notes.txt":     KindText,
		"README.MD":     KindText,
		"lease.PDF":     KindPDF,
		"contract.docx": KindWord,
		"scan.JPeG":     KindImage,
		"scan.tiff":     KindImage,
		"ledger.xlsx":   KindSpreadsheet,
	}
	for name, want := range cases {
		got, err := KindFromFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"archive.zip", "old.doc", "noext"} {
		_, err := KindFromFilename(name)
		assert.ErrorIs(t, err, ErrUnsupportedKind, name)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "image/jpeg", ContentType("a.jpg"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}

func TestExtractText(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "agreement.txt", []byte("  This agreement\x00 is binding.\n"))

	text, err := r.Extract(context.Background(), KindText, path)
	require.NoError(t, err)
	assert.Equal(t, "This agreement is binding.", text)
}

func TestExtractTextEmpty(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "empty.txt", []byte(" \n\t "))

	_, err := r.Extract(context.Background(), KindText, path)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractPDF(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "lease.pdf", testutil.PDF("Rent is due monthly"))

	text, err := r.Extract(context.Background(), KindPDF, path)
	require.NoError(t, err)
	assert.Contains(t, text, "Rent is due monthly")
}

func TestExtractPDFCorrupt(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "broken.pdf", []byte("not a pdf at all"))

	_, err := r.Extract(context.Background(), KindPDF, path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExtractWord(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "nda.docx", testutil.Docx("Non-Disclosure Agreement", "Term: two years"))

	text, err := r.Extract(context.Background(), KindWord, path)
	require.NoError(t, err)
	assert.Equal(t, "Non-Disclosure Agreement\nTerm: two years", text)
}

func TestWordParagraphsKeepsTextAroundTextBox(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Clause 4: </w:t></w:r>` +
		`<w:r><w:txbxContent><w:p><w:r><w:t>Boxed note</w:t></w:r></w:p></w:txbxContent></w:r>` +
		`<w:r><w:t>applies to both parties.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Clause 5</w:t></w:r></w:p>` +
		`<w:p/>` +
		`</w:body></w:document>`

	got, err := wordParagraphs(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Clause 4: ", "Boxed note", "applies to both parties.", "Clause 5", ""}, got)
}

func TestExtractWordCorrupt(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "nda.docx", []byte("plain bytes"))

	_, err := r.Extract(context.Background(), KindWord, path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExtractSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Party"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Role"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Asha"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Tenant"))
	path := filepath.Join(t.TempDir(), "parties.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	r := newRegistry(t, nil)
	text, err := r.Extract(context.Background(), KindSpreadsheet, path)
	require.NoError(t, err)
	assert.Contains(t, text, "Party\tRole\nAsha\tTenant")
}

func TestExtractSpreadsheetCorrupt(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "bad.xlsx", []byte("nope"))

	_, err := r.Extract(context.Background(), KindSpreadsheet, path)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExtractImageDownscalesBeforeOCR(t *testing.T) {
	ocr := &fakeOCR{text: "Stamp paper Rs. 100"}
	r := newRegistry(t, ocr)
	path := writeFile(t, "scan.png", testutil.PNG(256, 128))

	text, err := r.Extract(context.Background(), KindImage, path)
	require.NoError(t, err)
	assert.Equal(t, "Stamp paper Rs. 100", text)
	require.Equal(t, 1, ocr.calls)

	cfg, err := png.DecodeConfig(bytes.NewReader(ocr.last))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestExtractImageWithoutOCR(t *testing.T) {
	r := newRegistry(t, nil)
	path := writeFile(t, "scan.png", testutil.PNG(4, 4))

	_, err := r.Extract(context.Background(), KindImage, path)
	assert.ErrorIs(t, err, ErrOCRUnavailable)
}

func TestExtractImageOCRFailure(t *testing.T) {
	r := newRegistry(t, &fakeOCR{err: errors.New("quota exceeded")})
	path := writeFile(t, "scan.png", testutil.PNG(4, 4))

	_, err := r.Extract(context.Background(), KindImage, path)
	assert.ErrorIs(t, err, ErrOCRFailed)
}

func TestExtractImageCorrupt(t *testing.T) {
	ocr := &fakeOCR{text: "unused"}
	r := newRegistry(t, ocr)
	path := writeFile(t, "scan.jpg", []byte("not an image"))

	_, err := r.Extract(context.Background(), KindImage, path)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.Zero(t, ocr.calls)
}

func TestExtractImageRejectsOversizedHeader(t *testing.T) {
	ocr := &fakeOCR{text: "unused"}
	r := newRegistry(t, ocr)
	path := writeFile(t, "huge.png", testutil.PNGHeader(60000, 60000))

	_, err := r.Extract(context.Background(), KindImage, path)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.Contains(t, err.Error(), "pixel limit")
	assert.Zero(t, ocr.calls)
}

func TestExtractImagePixelBudget(t *testing.T) {
	ocr := &fakeOCR{text: "Seal of the registrar"}
	e := NewImageExtractor(ocr, ImageLimits{MaxPixels: 100}, nil)

	_, err := e.Extract(context.Background(), writeFile(t, "big.png", testutil.PNG(20, 20)))
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.Zero(t, ocr.calls)

	text, err := e.Extract(context.Background(), writeFile(t, "small.png", testutil.PNG(10, 10)))
	require.NoError(t, err)
	assert.Equal(t, "Seal of the registrar", text)
}

func TestExtractImageNoTextFound(t *testing.T) {
	r := newRegistry(t, &fakeOCR{text: "   "})
	path := writeFile(t, "blank.png", testutil.PNG(4, 4))

	_, err := r.Extract(context.Background(), KindImage, path)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a\tb\nc", Sanitize("\x01 a\tb\nc\x7f "))
	assert.Empty(t, Sanitize(""))
}
