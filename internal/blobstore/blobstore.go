// Package blobstore provides durable object storage for audio payloads,
// addressed by key. Writes are whole-object; there are no partial-write
// semantics.
package blobstore

import (
	"context"
	"io"
)

// Store is the blob storage abstraction used by the document service.
type Store interface {
	// Upload writes the payload under key, overwriting any existing object.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error

	// Fetch returns a reader for the object at key.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the stable, publicly resolvable address for key.
	URL(key string) string
}
