package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	"github.com/mangala-lk/backend/internal/domain/rules"
	mongorepo "github.com/mangala-lk/backend/internal/repo/mongodb"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

const maxMessageLen = 2000

var (
	ErrValidation          = errors.New("invalid message input")
	ErrNotFound            = errors.New("conversation not found")
	ErrReceiverUnavailable = errors.New("receiver cannot be messaged")
)

type Store interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (model.Conversation, error)
	AppendMessage(ctx context.Context, pairKey string, participants [2]int64, msg model.Message) error
	MarkRead(ctx context.Context, pairKey string, readerID int64, at time.Time) (int64, error)
	CountUnreadForUser(ctx context.Context, userID int64) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type Outbox interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, eventID, kind string, payload any) error
}

type Service struct {
	store  Store
	users  UserStore
	outbox Outbox
	runTx  func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now    func() time.Time
}

func NewService(pool *pgxpool.Pool, store Store, users UserStore, outbox Outbox) *Service {
	return &Service{
		store:  store,
		users:  users,
		outbox: outbox,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]model.Conversation, error) {
	conversations, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// Get returns a conversation the caller participates in. Reading it marks
// the other side's messages as read; the returned snapshot reflects that.
// Non-participants get not-found, so conversation ids cannot be probed.
func (s *Service) Get(ctx context.Context, userID int64, pairKey string) (model.Conversation, error) {
	conv, err := s.store.GetByPairKey(ctx, pairKey)
	if err != nil {
		if errors.Is(err, mongorepo.ErrConversationNotFound) {
			return model.Conversation{}, ErrNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	if !isParticipant(conv, userID) {
		return model.Conversation{}, ErrNotFound
	}

	readAt := s.now().UTC()
	if _, err := s.store.MarkRead(ctx, pairKey, userID, readAt); err != nil {
		return model.Conversation{}, fmt.Errorf("mark conversation read: %w", err)
	}

	for i := range conv.Messages {
		if conv.Messages[i].SenderID != userID && !conv.Messages[i].IsRead {
			conv.Messages[i].IsRead = true
			at := readAt
			conv.Messages[i].ReadAt = &at
		}
	}

	return conv, nil
}

type SendResult struct {
	PairKey string        `json:"pair_key"`
	Message model.Message `json:"message"`
}

// Send appends a message to the pair's conversation, creating the
// document on first contact, and queues the receiver's notification.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, content string) (SendResult, error) {
	if s.store == nil || s.users == nil || s.outbox == nil {
		return SendResult{}, fmt.Errorf("conversation dependencies are not configured")
	}
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxMessageLen {
		return SendResult{}, fmt.Errorf("message must be 1-%d characters: %w", maxMessageLen, ErrValidation)
	}
	if receiverID <= 0 || receiverID == senderID {
		return SendResult{}, fmt.Errorf("invalid receiver: %w", ErrValidation)
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return SendResult{}, ErrNotFound
		}
		return SendResult{}, fmt.Errorf("get receiver: %w", err)
	}
	if receiver.Status != enums.AccountStatusActive {
		return SendResult{}, ErrReceiverUnavailable
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return SendResult{}, fmt.Errorf("get sender: %w", err)
	}

	pairKey := rules.PairKey(senderID, receiverID)
	msg := model.Message{
		MessageID: uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	participants := [2]int64{senderID, receiverID}
	if participants[0] > participants[1] {
		participants[0], participants[1] = participants[1], participants[0]
	}
	if err := s.store.AppendMessage(ctx, pairKey, participants, msg); err != nil {
		return SendResult{}, fmt.Errorf("append message: %w", err)
	}

	item := model.NotificationItem{
		NotificationID: uuid.NewString(),
		EventID:        uuid.NewString(),
		Type:           enums.NotificationMessageReceived,
		Title:          "New message",
		Content:        fmt.Sprintf("%s %s sent you a message.", sender.FirstName, sender.LastName),
		Link:           "/messages/" + pairKey,
		RelatedID:      msg.MessageID,
		CreatedAt:      s.now().UTC(),
	}
	err = s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		payload := model.NotificationPayload{UserID: receiverID, Item: item}
		return s.outbox.EnqueueTx(ctx, tx, item.EventID, model.OutboxKindNotification, payload)
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("enqueue message notification: %w", err)
	}

	return SendResult{PairKey: pairKey, Message: msg}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	count, err := s.store.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

func isParticipant(conv model.Conversation, userID int64) bool {
	for _, id := range conv.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
