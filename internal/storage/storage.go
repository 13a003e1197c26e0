// Package storage persists uploaded originals in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var ErrInvalidKey = errors.New("invalid object key")

type ObjectStore interface {
	// Put writes r under key and returns the object's URI.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// UploadKey is the object key for an uploaded file: uploads/<id>/<filename>.
// Only the base name of filename is kept.
func UploadKey(documentID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = "upload"
	}
	return path.Join("uploads", documentID, name)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
