package storage

import (
	"context"
	"io"
)

// Storage defines the minimal interface for blob storage backends.
// Intentionally simple: save a file, delete a file, get its URL.
type Storage interface {
	// Save stores a file under the given key.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes a file by its key. Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a file given its logical key.
	GetURL(key string) string
}
