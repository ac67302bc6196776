package model

import "time"

// AudioDocument is the persisted unit combining document metadata and a
// reference to the audio payload in blob storage. BlobKey and BlobURL are set
// once at creation and never change; the audio itself is never replaced.
type AudioDocument struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	DocumentName  string    `json:"documentName" bson:"documentName"`
	Transcription string    `json:"transcription,omitempty" bson:"transcription,omitempty"`
	Translation   string    `json:"translation,omitempty" bson:"translation,omitempty"`
	Language      string    `json:"language,omitempty" bson:"language,omitempty"`
	BlobKey       string    `json:"blobKey" bson:"blobKey"`
	BlobURL       string    `json:"blobUrl" bson:"blobUrl"`
	OwnerID       string    `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DocumentSummary is the projection returned by the listing endpoints.
type DocumentSummary struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	DocumentName string `json:"documentName" bson:"documentName"`
}

// DocumentUpdate is a partial set of mutable fields. Nil means "leave
// untouched"; supplied fields are merged into the stored record.
type DocumentUpdate struct {
	DocumentName  *string `json:"documentName,omitempty"`
	Transcription *string `json:"transcription,omitempty"`
	Translation   *string `json:"translation,omitempty"`
	Language      *string `json:"language,omitempty"`
}

// Empty reports whether no field was supplied.
func (u DocumentUpdate) Empty() bool {
	return u.DocumentName == nil && u.Transcription == nil &&
		u.Translation == nil && u.Language == nil
}
