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

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	collection *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	if db == nil {
		return &ConversationRepo{}
	}
	return &ConversationRepo{collection: db.Collection("conversations")}
}

// EnsureIndexes creates the unique pair_key index that guarantees one
// conversation per unordered participant pair.
func (r *ConversationRepo) EnsureIndexes(ctx context.Context) error {
	if r.collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "participants", Value: 1}, {Key: "last_message_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create conversation indexes: %w", err)
	}

	return nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Conversation, error) {
	if r.collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"participants": userID, "is_active": true},
		options.Find().
			SetSort(bson.D{{Key: "last_message_at", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("find conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := make([]model.Conversation, 0)
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}

	return conversations, nil
}

func (r *ConversationRepo) GetByPairKey(ctx context.Context, pairKey string) (model.Conversation, error) {
	if r.collection == nil {
		return model.Conversation{}, fmt.Errorf("mongo collection is nil")
	}

	var conversation model.Conversation
	err := r.collection.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}

	return conversation, nil
}

// AppendMessage upserts the conversation document for the pair and pushes
// the message, bumping last_message_at in the same write.
func (r *ConversationRepo) AppendMessage(ctx context.Context, pairKey string, participants [2]int64, msg model.Message) error {
	if r.collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"pair_key": pairKey},
		bson.M{
			"$setOnInsert": bson.M{
				"pair_key":     pairKey,
				"participants": []int64{participants[0], participants[1]},
				"is_active":    true,
				"created_at":   msg.CreatedAt,
			},
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"last_message_at": msg.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

// MarkRead flips is_read on every unread message not authored by readerID.
// The array filter makes it a single batch update; the reader's own
// messages are untouched.
func (r *ConversationRepo) MarkRead(ctx context.Context, pairKey string, readerID int64, at time.Time) (int64, error) {
	if r.collection == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"pair_key": pairKey},
		bson.M{"$set": bson.M{
			"messages.$[m].is_read": true,
			"messages.$[m].read_at": at.UTC(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"m.sender_id": bson.M{"$ne": readerID},
				"m.is_read":   false,
			}},
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return result.ModifiedCount, nil
}

// CountUnreadForUser sums unread messages addressed to userID across all
// of their conversations.
func (r *ConversationRepo) CountUnreadForUser(ctx context.Context, userID int64) (int64, error) {
	if r.collection == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"participants": userID}}},
		{{Key: "$project", Value: bson.M{
			"unread": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$messages",
				"cond": bson.M{"$and": bson.A{
					bson.M{"$ne": bson.A{"$$this.sender_id", userID}},
					bson.M{"$eq": bson.A{"$$this.is_read", false}},
				}},
			}}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$unread"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate unread messages: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode unread aggregate: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].Total, nil
}
