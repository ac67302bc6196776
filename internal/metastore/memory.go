package metastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicedoc/internal/apperr"
	"voicedoc/internal/model"
)

// Memory is an in-memory Store for tests and local development.
type Memory struct {
	mu   sync.Mutex
	docs map[string]*model.AudioDocument

	// FailInsert forces the next Insert to fail.
	FailInsert bool
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*model.AudioDocument)}
}

func (m *Memory) Insert(_ context.Context, doc *model.AudioDocument) (string, error) {
	if m.FailInsert {
		return "", fmt.Errorf("metastore: insert: simulated failure")
	}
	now := time.Now().UTC()
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	stored := *doc
	m.mu.Lock()
	m.docs[doc.ID] = &stored
	m.mu.Unlock()
	return doc.ID, nil
}

func (m *Memory) Get(_ context.Context, id string) (*model.AudioDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, apperr.NotFound("document", id)
	}
	cp := *doc
	return &cp, nil
}

func (m *Memory) List(_ context.Context) ([]model.DocumentSummary, error) {
	return m.list(""), nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID string) ([]model.DocumentSummary, error) {
	return m.list(ownerID), nil
}

func (m *Memory) list(ownerID string) []model.DocumentSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := []model.DocumentSummary{}
	for _, doc := range m.docs {
		if ownerID != "" && doc.OwnerID != ownerID {
			continue
		}
		summaries = append(summaries, model.DocumentSummary{
			ID:           doc.ID,
			DocumentName: doc.DocumentName,
		})
	}
	return summaries
}

func (m *Memory) Update(_ context.Context, id string, upd model.DocumentUpdate) (*model.AudioDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, apperr.NotFound("document", id)
	}
	if upd.DocumentName != nil {
		doc.DocumentName = *upd.DocumentName
	}
	if upd.Transcription != nil {
		doc.Transcription = *upd.Transcription
	}
	if upd.Translation != nil {
		doc.Translation = *upd.Translation
	}
	if upd.Language != nil {
		doc.Language = *upd.Language
	}
	doc.UpdatedAt = time.Now().UTC()
	cp := *doc
	return &cp, nil
}

func (m *Memory) Delete(_ context.Context, id string) (*model.AudioDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, apperr.NotFound("document", id)
	}
	delete(m.docs, id)
	return doc, nil
}
