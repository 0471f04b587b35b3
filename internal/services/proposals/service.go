package proposals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

const maxProposalMessageLen = 1000

var (
	ErrValidation          = errors.New("invalid proposal input")
	ErrNotFound            = errors.New("proposal not found")
	ErrForbidden           = errors.New("proposal does not involve caller")
	ErrDuplicate           = errors.New("open proposal already exists for this pair")
	ErrAlreadyResponded    = errors.New("proposal is no longer open")
	ErrReceiverUnavailable = errors.New("receiver cannot accept proposals")
)

type Store interface {
	CreateTx(ctx context.Context, tx pgx.Tx, senderID, receiverID int64, message string) (model.Proposal, error)
	GetTx(ctx context.Context, tx pgx.Tx, proposalID int64) (model.Proposal, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, proposalID int64, status enums.ProposalStatus, respondedAt time.Time) (model.Proposal, error)
	ListBySender(ctx context.Context, senderID int64, limit, offset int) ([]model.Proposal, error)
	ListByReceiver(ctx context.Context, receiverID int64, limit, offset int) ([]model.Proposal, error)
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

// Send creates a proposal and queues the receiver's notification in the
// same transaction, so the notification never outlives a failed insert.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, message string) (model.Proposal, error) {
	if s.store == nil || s.users == nil || s.outbox == nil {
		return model.Proposal{}, fmt.Errorf("proposal dependencies are not configured")
	}
	if receiverID <= 0 {
		return model.Proposal{}, fmt.Errorf("invalid receiver: %w", ErrValidation)
	}
	if receiverID == senderID {
		return model.Proposal{}, fmt.Errorf("cannot send a proposal to yourself: %w", ErrValidation)
	}
	message = strings.TrimSpace(message)
	if len(message) > maxProposalMessageLen {
		return model.Proposal{}, fmt.Errorf("message too long: %w", ErrValidation)
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Proposal{}, ErrNotFound
		}
		return model.Proposal{}, fmt.Errorf("get receiver: %w", err)
	}
	if receiver.Status != enums.AccountStatusActive {
		return model.Proposal{}, ErrReceiverUnavailable
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("get sender: %w", err)
	}

	var proposal model.Proposal
	err = s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		proposal, txErr = s.store.CreateTx(ctx, tx, senderID, receiverID, message)
		if txErr != nil {
			return txErr
		}

		item := model.NotificationItem{
			NotificationID: uuid.NewString(),
			EventID:        uuid.NewString(),
			Type:           enums.NotificationProposalReceived,
			Title:          "New proposal",
			Content:        fmt.Sprintf("%s %s sent you a proposal.", sender.FirstName, sender.LastName),
			Link:           fmt.Sprintf("/proposals/%d", proposal.ID),
			RelatedID:      strconv.FormatInt(proposal.ID, 10),
			CreatedAt:      s.now().UTC(),
		}
		if txErr = s.enqueueNotification(ctx, tx, receiverID, item); txErr != nil {
			return txErr
		}

		return s.enqueueActivity(ctx, tx, senderID, "proposal.sent", proposal.ID, nil)
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicateProposal) {
			return model.Proposal{}, ErrDuplicate
		}
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Proposal{}, ErrNotFound
		}
		return model.Proposal{}, fmt.Errorf("send proposal: %w", err)
	}

	return proposal, nil
}

// Respond accepts or rejects a SENT proposal. Only the receiver may
// respond, and only once.
func (s *Service) Respond(ctx context.Context, userID, proposalID int64, accept bool) (model.Proposal, error) {
	status := enums.ProposalStatusRejected
	notifType := enums.NotificationProposalRejected
	title := "Proposal declined"
	action := "proposal.rejected"
	if accept {
		status = enums.ProposalStatusAccepted
		notifType = enums.NotificationProposalAccepted
		title = "Proposal accepted"
		action = "proposal.accepted"
	}

	var proposal model.Proposal
	err := s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, txErr := s.store.GetTx(ctx, tx, proposalID)
		if txErr != nil {
			return txErr
		}
		if current.ReceiverID != userID {
			return ErrForbidden
		}
		if current.Status != enums.ProposalStatusSent {
			return ErrAlreadyResponded
		}

		proposal, txErr = s.store.UpdateStatusTx(ctx, tx, proposalID, status, s.now().UTC())
		if txErr != nil {
			return txErr
		}

		responder, txErr := s.users.GetByID(ctx, userID)
		if txErr != nil {
			return fmt.Errorf("get responder: %w", txErr)
		}

		item := model.NotificationItem{
			NotificationID: uuid.NewString(),
			EventID:        uuid.NewString(),
			Type:           notifType,
			Title:          title,
			Content:        fmt.Sprintf("%s %s responded to your proposal.", responder.FirstName, responder.LastName),
			Link:           fmt.Sprintf("/proposals/%d", proposal.ID),
			RelatedID:      strconv.FormatInt(proposal.ID, 10),
			CreatedAt:      s.now().UTC(),
		}
		if txErr = s.enqueueNotification(ctx, tx, proposal.SenderID, item); txErr != nil {
			return txErr
		}

		return s.enqueueActivity(ctx, tx, userID, action, proposal.ID, nil)
	})
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrProposalNotFound):
			return model.Proposal{}, ErrNotFound
		case errors.Is(err, ErrForbidden), errors.Is(err, ErrAlreadyResponded):
			return model.Proposal{}, err
		}
		return model.Proposal{}, fmt.Errorf("respond to proposal: %w", err)
	}

	return proposal, nil
}

// Withdraw lets the sender retract a proposal that has not been answered.
func (s *Service) Withdraw(ctx context.Context, userID, proposalID int64) (model.Proposal, error) {
	var proposal model.Proposal
	err := s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, txErr := s.store.GetTx(ctx, tx, proposalID)
		if txErr != nil {
			return txErr
		}
		if current.SenderID != userID {
			return ErrForbidden
		}
		if current.Status != enums.ProposalStatusSent {
			return ErrAlreadyResponded
		}

		proposal, txErr = s.store.UpdateStatusTx(ctx, tx, proposalID, enums.ProposalStatusWithdrawn, s.now().UTC())
		if txErr != nil {
			return txErr
		}

		return s.enqueueActivity(ctx, tx, userID, "proposal.withdrawn", proposal.ID, nil)
	})
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrProposalNotFound):
			return model.Proposal{}, ErrNotFound
		case errors.Is(err, ErrForbidden), errors.Is(err, ErrAlreadyResponded):
			return model.Proposal{}, err
		}
		return model.Proposal{}, fmt.Errorf("withdraw proposal: %w", err)
	}

	return proposal, nil
}

func (s *Service) ListSent(ctx context.Context, userID int64, limit, offset int) ([]model.Proposal, error) {
	proposals, err := s.store.ListBySender(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sent proposals: %w", err)
	}
	return proposals, nil
}

func (s *Service) ListReceived(ctx context.Context, userID int64, limit, offset int) ([]model.Proposal, error) {
	proposals, err := s.store.ListByReceiver(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list received proposals: %w", err)
	}
	return proposals, nil
}

func (s *Service) enqueueNotification(ctx context.Context, tx pgx.Tx, userID int64, item model.NotificationItem) error {
	payload := model.NotificationPayload{UserID: userID, Item: item}
	if err := s.outbox.EnqueueTx(ctx, tx, item.EventID, model.OutboxKindNotification, payload); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (s *Service) enqueueActivity(ctx context.Context, tx pgx.Tx, userID int64, action string, proposalID int64, details map[string]any) error {
	entry := model.ActivityEntry{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: "proposal",
		EntityID:   strconv.FormatInt(proposalID, 10),
		Details:    details,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.outbox.EnqueueTx(ctx, tx, entry.EventID, model.OutboxKindActivity, entry); err != nil {
		return fmt.Errorf("enqueue activity: %w", err)
	}
	return nil
}
