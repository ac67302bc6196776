package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"voicedoc/internal/apperr"
	"voicedoc/internal/blobstore"
	"voicedoc/internal/metastore"
	"voicedoc/internal/model"
)

func newTestService() (*Service, *metastore.Memory, *blobstore.Memory) {
	meta := metastore.NewMemory()
	blobs := blobstore.NewMemory()
	return NewService(meta, blobs, zerolog.Nop()), meta, blobs
}

func validInput() CreateInput {
	return CreateInput{
		DocumentName:  "Meeting Notes",
		Transcription: "hello world",
		Translation:   "hola mundo",
		Language:      "es",
		OwnerID:       "user-1",
		Payload:       strings.NewReader("fake audio bytes"),
		ContentType:   "audio/mpeg",
	}
}

func TestCreateAndRead(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created document has no id")
	}

	got, err := svc.Read(ctx, created.ID)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.DocumentName != "Meeting Notes" || got.Transcription != "hello world" ||
		got.Translation != "hola mundo" || got.Language != "es" || got.OwnerID != "user-1" {
		t.Errorf("read back %+v, fields differ from input", got)
	}

	// The blob reference must resolve.
	ok, err := blobs.Exists(ctx, got.BlobKey)
	if err != nil || !ok {
		t.Errorf("blob %q does not resolve (ok=%v, err=%v)", got.BlobKey, ok, err)
	}
	if got.BlobURL == "" {
		t.Error("blob URL not set")
	}
}

func TestCreateMissingFieldTouchesNoStore(t *testing.T) {
	svc, meta, blobs := newTestService()
	ctx := context.Background()

	for _, tt := range []struct {
		field  string
		mutate func(*CreateInput)
	}{
		{"documentName", func(in *CreateInput) { in.DocumentName = "" }},
		{"transcription", func(in *CreateInput) { in.Transcription = "" }},
		{"translation", func(in *CreateInput) { in.Translation = "" }},
		{"language", func(in *CreateInput) { in.Language = "" }},
		{"ownerId", func(in *CreateInput) { in.OwnerID = "" }},
		{"audio", func(in *CreateInput) { in.Payload = nil }},
	} {
		t.Run(tt.field, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			if !apperr.Is(err, apperr.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
			var e *apperr.Error
			if !errors.As(err, &e) || e.Details["field"] != tt.field {
				t.Errorf("error must name the missing field %q, got %v", tt.field, err)
			}
		})
	}

	if list, _ := meta.List(ctx); len(list) != 0 {
		t.Error("validation failure must not write metadata")
	}
	if blobs.Len() != 0 {
		t.Error("validation failure must not write blobs")
	}
}

func TestCreateBlobFailureLeavesRecord(t *testing.T) {
	svc, meta, blobs := newTestService()
	ctx := context.Background()
	blobs.FailUpload = true

	_, err := svc.Create(ctx, validInput())
	if !apperr.Is(err, apperr.CodeStorageWriteFailed) {
		t.Fatalf("expected STORAGE_WRITE_FAILED, got %v", err)
	}

	// The incomplete record stays for retry or compensating delete.
	list, _ := meta.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected the metadata record to remain, found %d records", len(list))
	}
	var e *apperr.Error
	if !errors.As(err, &e) || e.Details["id"] != list[0].ID {
		t.Errorf("error must carry the orphan record id, got %v", e.Details)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	name := "Team Sync"
	updated, err := svc.Update(ctx, created.ID, model.DocumentUpdate{DocumentName: &name})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.DocumentName != "Team Sync" {
		t.Errorf("documentName = %q, want %q", updated.DocumentName, "Team Sync")
	}
	if updated.Transcription != "hello world" || updated.Translation != "hola mundo" || updated.Language != "es" {
		t.Errorf("unsupplied fields changed: %+v", updated)
	}
	if updated.BlobKey != created.BlobKey || updated.BlobURL != created.BlobURL {
		t.Error("blob reference must be immutable")
	}
}

func TestUpdateTranscriptionKeepsTranslationPair(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput())

	text := "hello again"
	updated, err := svc.Update(ctx, created.ID, model.DocumentUpdate{Transcription: &text})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Translation != "hola mundo" || updated.Language != "es" {
		t.Errorf("translation/language must be unchanged, got %q/%q", updated.Translation, updated.Language)
	}
}

func TestUpdateTranslationWithoutLanguage(t *testing.T) {
	svc, meta, _ := newTestService()
	ctx := context.Background()

	// Record with neither translation nor language set.
	doc := &model.AudioDocument{DocumentName: "raw", Transcription: "t", BlobKey: "audio/1_raw.mp3", OwnerID: "u"}
	id, err := meta.Insert(ctx, doc)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	tr := "bonjour"
	_, err = svc.Update(ctx, id, model.DocumentUpdate{Translation: &tr})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	// Supplying both in the same call is fine.
	lang := "fr"
	updated, err := svc.Update(ctx, id, model.DocumentUpdate{Translation: &tr, Language: &lang})
	if err != nil {
		t.Fatalf("Update() with pair error: %v", err)
	}
	if updated.Translation != "bonjour" || updated.Language != "fr" {
		t.Errorf("pair not applied: %q/%q", updated.Translation, updated.Language)
	}
}

func TestUpdateLanguageAloneWhenTranslationSet(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput())
	lang := "es-MX"
	if _, err := svc.Update(ctx, created.ID, model.DocumentUpdate{Language: &lang}); err != nil {
		t.Fatalf("language alone with translation already set should pass, got %v", err)
	}
}

func TestUpdateEmptySet(t *testing.T) {
	svc, _, _ := newTestService()
	created, _ := svc.Create(context.Background(), validInput())

	_, err := svc.Update(context.Background(), created.ID, model.DocumentUpdate{})
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for empty update, got %v", err)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _, _ := newTestService()
	name := "x"
	_, err := svc.Update(context.Background(), "nope", model.DocumentUpdate{DocumentName: &name})
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteRemovesBothStores(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput())
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := svc.Read(ctx, created.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("read after delete must be NOT_FOUND, got %v", err)
	}
	if ok, _ := blobs.Exists(ctx, created.BlobKey); ok {
		t.Errorf("blob %q still retrievable after delete", created.BlobKey)
	}
}

func TestDeleteUnknownIDSkipsBlob(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput())
	if err := svc.Delete(ctx, "missing"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if ok, _ := blobs.Exists(ctx, created.BlobKey); !ok {
		t.Error("unrelated blob must not be touched on NOT_FOUND delete")
	}
}

func TestDeletePartialFailure(t *testing.T) {
	svc, meta, blobs := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, validInput())
	blobs.FailDelete = true

	err := svc.Delete(ctx, created.ID)
	if !apperr.Is(err, apperr.CodePartialDelete) {
		t.Fatalf("expected PARTIAL_DELETE_FAILURE, got %v", err)
	}

	// Metadata is gone, the blob leaked.
	if _, err := meta.Get(ctx, created.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Error("metadata should be gone after partial delete")
	}
	if ok, _ := blobs.Exists(ctx, created.BlobKey); !ok {
		t.Error("blob should remain after failed blob delete")
	}
}

func TestCreateIdenticalNamesDistinctKeys(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	b, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.BlobKey == b.BlobKey {
		t.Errorf("identical names produced identical blob key %q", a.BlobKey)
	}
}

func TestListProjection(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	created, _ := svc.Create(ctx, in)
	in2 := validInput()
	in2.OwnerID = "user-2"
	in2.Payload = strings.NewReader("other")
	svc.Create(ctx, in2)

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(all))
	}

	mine, err := svc.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByOwner() error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != created.ID || mine[0].DocumentName != "Meeting Notes" {
		t.Errorf("owner projection wrong: %+v", mine)
	}

	if _, err := svc.ListByOwner(ctx, ""); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("empty owner must be VALIDATION_ERROR, got %v", err)
	}
}

