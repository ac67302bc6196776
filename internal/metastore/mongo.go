package metastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voicedoc/internal/apperr"
	"voicedoc/internal/model"
)

const collectionName = "audiodocuments"

// mongoDocument mirrors model.AudioDocument with an ObjectID primary key.
type mongoDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	DocumentName  string             `bson:"documentName"`
	Transcription string             `bson:"transcription,omitempty"`
	Translation   string             `bson:"translation,omitempty"`
	Language      string             `bson:"language,omitempty"`
	BlobKey       string             `bson:"blobKey"`
	BlobURL       string             `bson:"blobUrl"`
	OwnerID       string             `bson:"ownerId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *mongoDocument) toModel() *model.AudioDocument {
	return &model.AudioDocument{
		ID:            d.ID.Hex(),
		DocumentName:  d.DocumentName,
		Transcription: d.Transcription,
		Translation:   d.Translation,
		Language:      d.Language,
		BlobKey:       d.BlobKey,
		BlobURL:       d.BlobURL,
		OwnerID:       d.OwnerID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// Mongo implements Store on a MongoDB collection.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo connects to the given URI and returns a store over the
// audiodocuments collection of the named database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("metastore: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("metastore: mongo ping: %w", err)
	}
	return &Mongo{coll: client.Database(database).Collection(collectionName)}, nil
}

func (m *Mongo) Insert(ctx context.Context, doc *model.AudioDocument) (string, error) {
	now := time.Now().UTC()
	rec := &mongoDocument{
		DocumentName:  doc.DocumentName,
		Transcription: doc.Transcription,
		Translation:   doc.Translation,
		Language:      doc.Language,
		BlobKey:       doc.BlobKey,
		BlobURL:       doc.BlobURL,
		OwnerID:       doc.OwnerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	res, err := m.coll.InsertOne(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("metastore: insert: %w", err)
	}
	id := res.InsertedID.(primitive.ObjectID)
	doc.ID = id.Hex()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return doc.ID, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*model.AudioDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("document", id)
	}
	var rec mongoDocument
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("metastore: get %s: %w", id, err)
	}
	return rec.toModel(), nil
}

func (m *Mongo) List(ctx context.Context) ([]model.DocumentSummary, error) {
	return m.list(ctx, bson.M{})
}

func (m *Mongo) ListByOwner(ctx context.Context, ownerID string) ([]model.DocumentSummary, error) {
	return m.list(ctx, bson.M{"ownerId": ownerID})
}

func (m *Mongo) list(ctx context.Context, filter bson.M) ([]model.DocumentSummary, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "documentName": 1})
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("metastore: list: %w", err)
	}
	defer cur.Close(ctx)

	summaries := []model.DocumentSummary{}
	for cur.Next(ctx) {
		var rec struct {
			ID           primitive.ObjectID `bson:"_id"`
			DocumentName string             `bson:"documentName"`
		}
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("metastore: list decode: %w", err)
		}
		summaries = append(summaries, model.DocumentSummary{
			ID:           rec.ID.Hex(),
			DocumentName: rec.DocumentName,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("metastore: list cursor: %w", err)
	}
	return summaries, nil
}

func (m *Mongo) Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.AudioDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("document", id)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.DocumentName != nil {
		set["documentName"] = *upd.DocumentName
	}
	if upd.Transcription != nil {
		set["transcription"] = *upd.Transcription
	}
	if upd.Translation != nil {
		set["translation"] = *upd.Translation
	}
	if upd.Language != nil {
		set["language"] = *upd.Language
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec mongoDocument
	err = m.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("metastore: update %s: %w", id, err)
	}
	return rec.toModel(), nil
}

func (m *Mongo) Delete(ctx context.Context, id string) (*model.AudioDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("document", id)
	}
	var rec mongoDocument
	err = m.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("metastore: delete %s: %w", id, err)
	}
	return rec.toModel(), nil
}
