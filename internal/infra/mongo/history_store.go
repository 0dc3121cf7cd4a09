// Package mongo stores tutor chat exchanges in MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tulu-service/internal/domain"
)

// CollectionName is where exchanges are kept.
const CollectionName = "chat_messages"

// HistoryStore implements app.HistoryRepository over a Mongo collection.
type HistoryStore struct {
	coll *mongo.Collection
}

func NewHistoryStore(db *mongo.Database) *HistoryStore {
	return &HistoryStore{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the (session_id, timestamp) index history queries use.
func (s *HistoryStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "timestamp", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create chat index: %w", err)
	}
	return nil
}

func (s *HistoryStore) Append(ctx context.Context, exchange domain.ChatExchange) error {
	if _, err := s.coll.InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("insert chat exchange: %w", err)
	}
	return nil
}

// Recent fetches the newest limit exchanges and returns them oldest first.
func (s *HistoryStore) Recent(ctx context.Context, sessionID string, limit int) ([]domain.ChatExchange, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find chat exchanges: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.ChatExchange
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode chat exchanges: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
