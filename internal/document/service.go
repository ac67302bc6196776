// Package document implements the audio-document lifecycle over the two
// backing stores: metadata in the document database, the audio payload in
// blob storage.
package document

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"voicedoc/internal/apperr"
	"voicedoc/internal/blobstore"
	"voicedoc/internal/metastore"
	"voicedoc/internal/model"
)

// CreateInput carries everything required to create a document. Every field
// is required; Payload is the audio bytes.
type CreateInput struct {
	DocumentName  string
	Transcription string
	Translation   string
	Language      string
	OwnerID       string
	Payload       io.Reader
	ContentType   string
}

// Service orchestrates the metadata and blob stores. Operations are
// stateless request handlers; the only shared state lives in the stores
// themselves, so no in-process locking is used.
type Service struct {
	meta  metastore.Store
	blobs blobstore.Store
	keys  *KeyGen
	log   zerolog.Logger
}

func NewService(meta metastore.Store, blobs blobstore.Store, log zerolog.Logger) *Service {
	return &Service{
		meta:  meta,
		blobs: blobs,
		keys:  NewKeyGen(),
		log:   log.With().Str("component", "document").Logger(),
	}
}

// Create validates the input, writes the metadata record, then uploads the
// payload. Metadata goes first: a record without a backing blob is a
// detectable anomaly, while a blob with no record pointing at it is an
// unreferenced leak. If the upload fails the incomplete record is left in
// place and STORAGE_WRITE_FAILED is returned with the record id, so the
// caller can retry the upload or issue a compensating delete.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.AudioDocument, error) {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"documentName", in.DocumentName},
		{"transcription", in.Transcription},
		{"translation", in.Translation},
		{"language", in.Language},
		{"ownerId", in.OwnerID},
	} {
		if f.value == "" {
			return nil, apperr.MissingField(f.name)
		}
	}
	if in.Payload == nil {
		return nil, apperr.MissingField("audio")
	}

	key := s.keys.Next(in.DocumentName)
	doc := &model.AudioDocument{
		DocumentName:  in.DocumentName,
		Transcription: in.Transcription,
		Translation:   in.Translation,
		Language:      in.Language,
		BlobKey:       key,
		BlobURL:       s.blobs.URL(key),
		OwnerID:       in.OwnerID,
	}

	id, err := s.meta.Insert(ctx, doc)
	if err != nil {
		return nil, apperr.Internal("metadata insert failed", err)
	}

	if err := s.blobs.Upload(ctx, key, in.Payload, in.ContentType); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("blobKey", key).
			Msg("blob upload failed after metadata write; record left for retry or delete")
		return nil, apperr.StorageWriteFailed(key).WithDetail("id", id).WithCause(err)
	}

	s.log.Info().Str("id", id).Str("blobKey", key).Msg("document created")
	return doc, nil
}

// Read is a point lookup in the metadata store. Blob existence is not
// verified here; a missing blob surfaces lazily as a playback failure.
func (s *Service) Read(ctx context.Context, id string) (*model.AudioDocument, error) {
	return s.meta.Get(ctx, id)
}

// List returns the id/documentName projection of all documents.
func (s *Service) List(ctx context.Context) ([]model.DocumentSummary, error) {
	return s.meta.List(ctx)
}

// ListByOwner restricts the projection to one owner.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.DocumentSummary, error) {
	if ownerID == "" {
		return nil, apperr.MissingField("ownerId")
	}
	return s.meta.ListByOwner(ctx, ownerID)
}

// Update merges the supplied mutable fields into the record. The blob
// reference and owner are immutable; translation and language must end up
// either both set or both absent.
func (s *Service) Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.AudioDocument, error) {
	if upd.Empty() {
		return nil, apperr.Validation("no valid fields provided for update")
	}

	current, err := s.meta.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Translation and language are only meaningful together. A field counts
	// as set after the merge if it is supplied now or already stored.
	translation := current.Translation
	if upd.Translation != nil {
		translation = *upd.Translation
	}
	language := current.Language
	if upd.Language != nil {
		language = *upd.Language
	}
	if (translation == "") != (language == "") {
		return nil, apperr.Validation("translation and language must be set together")
	}

	updated, err := s.meta.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("id", id).Msg("document updated")
	return updated, nil
}

// Delete removes the metadata record first, then the blob. A missing record
// is NOT_FOUND and no blob call is made. If the blob delete fails after the
// metadata is gone, PARTIAL_DELETE_FAILURE is returned and the leaked key is
// logged as a reconciliation item; the call never retries on its own.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.meta.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, removed.BlobKey); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("blobKey", removed.BlobKey).
			Msg("reconciliation needed: metadata deleted but blob remains")
		return apperr.PartialDelete(removed.BlobKey).WithDetail("id", id).WithCause(err)
	}

	s.log.Info().Str("id", id).Str("blobKey", removed.BlobKey).Msg("document deleted")
	return nil
}
