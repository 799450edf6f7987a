package etl

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JhonatanRC03/chat-rag/pkg/component/mongodb"
)

// MongoItemStore implements ItemStore on a MongoDB collection.
type MongoItemStore struct {
	coll *mongo.Collection
}

// NewMongoItemStore creates a store over the named collection.
func NewMongoItemStore(client *mongodb.Client, collection string) *MongoItemStore {
	return &MongoItemStore{coll: client.Collection(collection)}
}

// UpsertBatch replaces each item by its id, inserting when absent. A
// row-level failure is counted and logged without aborting the batch.
func (s *MongoItemStore) UpsertBatch(ctx context.Context, items []Item) (int, int, error) {
	var succeeded, failed int
	for _, item := range items {
		id, ok := item["id"].(string)
		if !ok || id == "" {
			failed++
			continue
		}

		_, err := s.coll.ReplaceOne(ctx,
			bson.M{"id": id},
			bson.M(item),
			mongooptions.Replace().SetUpsert(true),
		)
		if err != nil {
			failed++
			logger.Warnw("item upsert failed", "id", id, "error", err.Error())
			continue
		}
		succeeded++
	}
	return succeeded, failed, nil
}

// Count returns the number of documents in the collection.
func (s *MongoItemStore) Count(ctx context.Context) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

var _ ItemStore = (*MongoItemStore)(nil)
