package storage

import (
	"context"
	"io"
)

// Storage defines the minimal interface for image storage backends.
// Campaign covers and profile avatars both go through it.
type Storage interface {
	// Put stores a file under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes a file by key. Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a stored key.
	GetURL(key string) string

	// KeyFromURL resolves a public URL back to its storage key.
	// Returns false when the URL was not produced by this backend.
	KeyFromURL(url string) (string, bool)
}
