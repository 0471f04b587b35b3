package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type ActivityRepo struct {
	collection *mongo.Collection
}

// ActivityFilter narrows the admin query. Zero values mean "no filter".
type ActivityFilter struct {
	UserID     int64
	Action     string
	EntityType string
	From       time.Time
	To         time.Time
	Skip       int
	Limit      int
}

func NewActivityRepo(db *mongo.Database) *ActivityRepo {
	if db == nil {
		return &ActivityRepo{}
	}
	return &ActivityRepo{collection: db.Collection("activity_log")}
}

func (r *ActivityRepo) EnsureIndexes(ctx context.Context) error {
	if r.collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create activity indexes: %w", err)
	}

	return nil
}

// Insert appends one entry. A duplicate event_id means the entry was
// already written by an earlier outbox attempt, which counts as success.
func (r *ActivityRepo) Insert(ctx context.Context, entry model.ActivityEntry) error {
	if r.collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert activity entry: %w", err)
	}

	return nil
}

func (r *ActivityRepo) Query(ctx context.Context, filter ActivityFilter) ([]model.ActivityEntry, error) {
	if r.collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	query := bson.M{}
	if filter.UserID > 0 {
		query["user_id"] = filter.UserID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.EntityType != "" {
		query["entity_type"] = filter.EntityType
	}
	created := bson.M{}
	if !filter.From.IsZero() {
		created["$gte"] = filter.From.UTC()
	}
	if !filter.To.IsZero() {
		created["$lte"] = filter.To.UTC()
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("query activity log: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]model.ActivityEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode activity entries: %w", err)
	}

	return entries, nil
}
