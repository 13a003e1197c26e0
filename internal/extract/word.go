package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// WordExtractor reads word/document.xml and emits one line per paragraph.
type WordExtractor struct{}

func (WordExtractor) Extract(_ context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: word/document.xml missing", ErrUnreadable)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer rc.Close()

	paragraphs, err := wordParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// wordParagraphs emits paragraphs in document order. A paragraph nested in
// another (text boxes) flushes the outer text read so far; the outer tail is
// emitted when the outer paragraph closes.
func wordParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		current    strings.Builder
		flushed    []bool // per open paragraph: text already emitted for a nested one
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordMain {
				continue
			}
			switch t.Name.Local {
			case "p":
				if n := len(flushed); n > 0 && current.Len() > 0 {
					paragraphs = append(paragraphs, current.String())
					flushed[n-1] = true
				}
				current.Reset()
				flushed = append(flushed, false)
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordMain {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				n := len(flushed)
				if n == 0 {
					continue
				}
				if current.Len() > 0 || !flushed[n-1] {
					paragraphs = append(paragraphs, current.String())
				}
				current.Reset()
				flushed = flushed[:n-1]
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
