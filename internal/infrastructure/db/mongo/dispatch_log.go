package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

const collectionDispatchAttempts = "dispatch_attempts"

// DispatchLog implements ports.DispatchLog as an append-only MongoDB collection.
type DispatchLog struct {
	col *mongo.Collection
}

// NewDispatchLog creates a new DispatchLog.
func NewDispatchLog(db *mongo.Database) ports.DispatchLog {
	return &DispatchLog{col: db.Collection(collectionDispatchAttempts)}
}

// Record appends one delivery attempt.
func (r *DispatchLog) Record(ctx context.Context, attempt domain.DispatchAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	attempt.AttemptedAt = attempt.AttemptedAt.UTC()
	_, err := r.col.InsertOne(ctx, attempt)
	return err
}

// ListByPost returns a post's attempts, newest first.
func (r *DispatchLog) ListByPost(ctx context.Context, postID string) ([]domain.DispatchAttempt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "attempted_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attempts := make([]domain.DispatchAttempt, 0)
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}
