package app

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile               = errors.New("no file uploaded")
	ErrNoFileSelected       = errors.New("no file selected")
	ErrEmptyFile            = errors.New("uploaded file is empty")
	ErrFileTooLarge         = errors.New("uploaded file is too large")
	ErrUnsupportedType      = errors.New("unsupported file type")
	ErrHistoryEmpty         = errors.New("no chat history provided")
	ErrQuestionMissing      = errors.New("last history entry has no question text")
	ErrModelNotConfigured   = errors.New("GEMINI_API_KEY not configured")
	ErrStorageNotConfigured = errors.New("cloud storage not configured")
	ErrOCRNotConfigured     = errors.New("image text recognition not configured")
	ErrStorageFailed        = errors.New("failed to store uploaded file")
	ErrNoText               = errors.New("could not extract text from document")
	ErrExtractionFailed     = errors.New("failed to read document")
	ErrOCRFailed            = errors.New("image text recognition failed")
	ErrModelFailed          = errors.New("failed to get a response from the model")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindTooLarge
	KindNotConfigured
	KindBackend
)

// KindOf classifies err by the sentinel it wraps. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrFileTooLarge):
		return KindTooLarge
	case errors.Is(err, ErrNoFile),
		errors.Is(err, ErrNoFileSelected),
		errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrHistoryEmpty),
		errors.Is(err, ErrQuestionMissing),
		errors.Is(err, ErrNoText),
		errors.Is(err, ErrExtractionFailed):
		return KindInvalidInput
	case errors.Is(err, ErrModelNotConfigured),
		errors.Is(err, ErrStorageNotConfigured),
		errors.Is(err, ErrOCRNotConfigured):
		return KindNotConfigured
	case errors.Is(err, ErrStorageFailed),
		errors.Is(err, ErrOCRFailed),
		errors.Is(err, ErrModelFailed):
		return KindBackend
	default:
		return KindInternal
	}
}

// PublicMessage is the text safe to return to a client: the sentinel's own
// message, never the wrapped backend detail.
func PublicMessage(err error) string {
	for _, sentinel := range []error{
		ErrNoFile, ErrNoFileSelected, ErrEmptyFile, ErrFileTooLarge, ErrUnsupportedType,
		ErrHistoryEmpty, ErrQuestionMissing,
		ErrModelNotConfigured, ErrStorageNotConfigured, ErrOCRNotConfigured,
		ErrStorageFailed, ErrNoText, ErrExtractionFailed, ErrOCRFailed, ErrModelFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}
