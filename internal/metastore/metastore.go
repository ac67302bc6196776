// Package metastore provides the document database holding one record per
// audio document.
package metastore

import (
	"context"

	"voicedoc/internal/model"
)

// Store defines the metadata access layer for audio documents.
//
// Update applies merge semantics: supplied fields replace the stored values,
// everything else is left untouched. There is no concurrency token, so
// concurrent updates on the same id are last-write-wins.
type Store interface {
	// Insert stores a new record and returns its assigned id.
	Insert(ctx context.Context, doc *model.AudioDocument) (string, error)

	// Get returns the record for id, or an apperr NOT_FOUND error.
	Get(ctx context.Context, id string) (*model.AudioDocument, error)

	// List returns the id/documentName projection of every record.
	List(ctx context.Context) ([]model.DocumentSummary, error)

	// ListByOwner restricts the projection to one owner.
	ListByOwner(ctx context.Context, ownerID string) ([]model.DocumentSummary, error)

	// Update merges the supplied fields into the record and returns the
	// updated document, or an apperr NOT_FOUND error.
	Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.AudioDocument, error)

	// Delete removes the record and returns it (the caller needs the blob
	// key for the second half of the teardown), or an apperr NOT_FOUND error.
	Delete(ctx context.Context, id string) (*model.AudioDocument, error)
}
