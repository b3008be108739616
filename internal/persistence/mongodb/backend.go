// Package mongodb provides a MongoDB-backed persistence backend.
package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"personalization-service/internal/persistence"
)

type Backend struct {
	client *mongo.Client
	col    *mongo.Collection
}

type document struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// New connects to MongoDB and uses the "preferences" collection of the
// given database as the key-value store.
func New(ctx context.Context, uri, database string) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Backend{
		client: client,
		col:    client.Database(database).Collection("preferences"),
	}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var doc document
	err := b.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.col.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
