package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type NotificationRepo struct {
	collection *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	if db == nil {
		return &NotificationRepo{}
	}
	return &NotificationRepo{collection: db.Collection("notifications")}
}

func (r *NotificationRepo) EnsureIndexes(ctx context.Context) error {
	if r.collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create notification index: %w", err)
	}

	return nil
}

// Append adds one notification to the user's document and recomputes
// unread_count in the same atomic pipeline update. When the item carries
// an event id and an item with that id is already present, the write is a
// no-op, which makes outbox replays idempotent.
func (r *NotificationRepo) Append(ctx context.Context, userID int64, item model.NotificationItem) error {
	if r.collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	if err := r.ensureDoc(ctx, userID); err != nil {
		return err
	}

	filter := bson.M{"user_id": userID}
	if item.EventID != "" {
		filter["items.event_id"] = bson.M{"$ne": item.EventID}
	}

	doc, err := toBSON(item)
	if err != nil {
		return err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"items": bson.M{"$concatArrays": bson.A{"$items", bson.A{doc}}},
		}}},
		{{Key: "$set", Value: bson.M{
			"unread_count": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$items",
				"cond":  bson.M{"$eq": bson.A{"$$this.is_read", false}},
			}}},
			"last_updated_at": time.Now().UTC(),
		}}},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, pipeline); err != nil {
		return fmt.Errorf("append notification: %w", err)
	}

	return nil
}

// Get returns the user's notification document, creating an empty one on
// first access.
func (r *NotificationRepo) Get(ctx context.Context, userID int64) (model.NotificationDoc, error) {
	if r.collection == nil {
		return model.NotificationDoc{}, fmt.Errorf("mongo collection is nil")
	}

	if err := r.ensureDoc(ctx, userID); err != nil {
		return model.NotificationDoc{}, err
	}

	var doc model.NotificationDoc
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		return model.NotificationDoc{}, fmt.Errorf("find notification doc: %w", err)
	}

	return doc, nil
}

// MarkRead flips is_read on the given ids and recomputes unread_count in
// one atomic pipeline update. Re-marking already-read ids changes nothing,
// so the counter can never drift below the true unread count.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID int64, notificationIDs []string) (int, error) {
	if r.collection == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}
	if len(notificationIDs) == 0 {
		return r.UnreadCount(ctx, userID)
	}

	ids := bson.A{}
	for _, id := range notificationIDs {
		ids = append(ids, id)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"items": bson.M{"$map": bson.M{
				"input": "$items",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$in": bson.A{"$$this.notification_id", ids}},
					bson.M{"$mergeObjects": bson.A{"$$this", bson.M{"is_read": true}}},
					"$$this",
				}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"unread_count": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$items",
				"cond":  bson.M{"$eq": bson.A{"$$this.is_read", false}},
			}}},
			"last_updated_at": time.Now().UTC(),
		}}},
	}

	var updated model.NotificationDoc
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}

	return updated.UnreadCount, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if r.collection == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}

	var doc struct {
		UnreadCount int `bson:"unread_count"`
	}
	err := r.collection.FindOne(ctx,
		bson.M{"user_id": userID},
		options.FindOne().SetProjection(bson.M{"unread_count": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("read unread count: %w", err)
	}

	return doc.UnreadCount, nil
}

func (r *NotificationRepo) ensureDoc(ctx context.Context, userID int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"user_id":         userID,
			"items":           bson.A{},
			"unread_count":    0,
			"last_updated_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ensure notification doc: %w", err)
	}

	return nil
}

func toBSON(v any) (bson.D, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal bson: %w", err)
	}

	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal bson: %w", err)
	}

	return doc, nil
}
