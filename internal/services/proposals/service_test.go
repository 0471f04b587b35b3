package proposals

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	"github.com/mangala-lk/backend/internal/domain/rules"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

type stubProposalStore struct {
	proposals map[int64]model.Proposal
	nextID    int64
}

func newStubProposalStore() *stubProposalStore {
	return &stubProposalStore{proposals: map[int64]model.Proposal{}, nextID: 1}
}

func (s *stubProposalStore) CreateTx(ctx context.Context, tx pgx.Tx, senderID, receiverID int64, message string) (model.Proposal, error) {
	pair := rules.PairKey(senderID, receiverID)
	for _, p := range s.proposals {
		if rules.PairKey(p.SenderID, p.ReceiverID) == pair && p.Status == enums.ProposalStatusSent {
			return model.Proposal{}, pgrepo.ErrDuplicateProposal
		}
	}
	p := model.Proposal{
		ID:         s.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     enums.ProposalStatusSent,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	s.nextID++
	s.proposals[p.ID] = p
	return p, nil
}

func (s *stubProposalStore) GetTx(ctx context.Context, tx pgx.Tx, proposalID int64) (model.Proposal, error) {
	p, ok := s.proposals[proposalID]
	if !ok {
		return model.Proposal{}, pgrepo.ErrProposalNotFound
	}
	return p, nil
}

func (s *stubProposalStore) UpdateStatusTx(ctx context.Context, tx pgx.Tx, proposalID int64, status enums.ProposalStatus, respondedAt time.Time) (model.Proposal, error) {
	p, ok := s.proposals[proposalID]
	if !ok {
		return model.Proposal{}, pgrepo.ErrProposalNotFound
	}
	p.Status = status
	p.RespondedAt = &respondedAt
	s.proposals[proposalID] = p
	return p, nil
}

func (s *stubProposalStore) ListBySender(ctx context.Context, senderID int64, limit, offset int) ([]model.Proposal, error) {
	var out []model.Proposal
	for _, p := range s.proposals {
		if p.SenderID == senderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProposalStore) ListByReceiver(ctx context.Context, receiverID int64, limit, offset int) ([]model.Proposal, error) {
	var out []model.Proposal
	for _, p := range s.proposals {
		if p.ReceiverID == receiverID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubUserStore struct {
	users map[int64]model.User
}

func (s *stubUserStore) GetByID(ctx context.Context, userID int64) (model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

type enqueued struct {
	eventID string
	kind    string
	payload any
}

type stubOutbox struct {
	events []enqueued
}

func (s *stubOutbox) EnqueueTx(ctx context.Context, tx pgx.Tx, eventID, kind string, payload any) error {
	s.events = append(s.events, enqueued{eventID: eventID, kind: kind, payload: payload})
	return nil
}

func (s *stubOutbox) notifications() []model.NotificationPayload {
	var out []model.NotificationPayload
	for _, e := range s.events {
		if e.kind != model.OutboxKindNotification {
			continue
		}
		raw, _ := json.Marshal(e.payload)
		var p model.NotificationPayload
		_ = json.Unmarshal(raw, &p)
		out = append(out, p)
	}
	return out
}

func newServiceForTest() (*Service, *stubProposalStore, *stubOutbox) {
	store := newStubProposalStore()
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1, FirstName: "Nimal", LastName: "Perera", Status: enums.AccountStatusActive},
		2: {ID: 2, FirstName: "Kumari", LastName: "Silva", Status: enums.AccountStatusActive},
		3: {ID: 3, FirstName: "Saman", LastName: "Fernando", Status: enums.AccountStatusSuspended},
	}}
	outbox := &stubOutbox{}
	svc := &Service{
		store:  store,
		users:  users,
		outbox: outbox,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		now: time.Now,
	}
	return svc, store, outbox
}

func TestSendQueuesNotification(t *testing.T) {
	svc, _, outbox := newServiceForTest()

	p, err := svc.Send(context.Background(), 1, 2, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if p.Status != enums.ProposalStatusSent {
		t.Fatalf("expected SENT, got %q", p.Status)
	}

	notifs := outbox.notifications()
	if len(notifs) != 1 {
		t.Fatalf("expected 1 notification event, got %d", len(notifs))
	}
	if notifs[0].UserID != 2 {
		t.Fatalf("expected notification for receiver, got user %d", notifs[0].UserID)
	}
	if notifs[0].Item.Type != enums.NotificationProposalReceived {
		t.Fatalf("expected PROPOSAL_RECEIVED, got %q", notifs[0].Item.Type)
	}

	activities := 0
	for _, e := range outbox.events {
		if e.kind == model.OutboxKindActivity {
			activities++
		}
	}
	if activities != 1 {
		t.Fatalf("expected 1 activity event, got %d", activities)
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 1, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self-proposal, got %v", err)
	}
	if _, err := svc.Send(ctx, 1, 999, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing receiver, got %v", err)
	}
	if _, err := svc.Send(ctx, 1, 3, ""); !errors.Is(err, ErrReceiverUnavailable) {
		t.Fatalf("expected ErrReceiverUnavailable for suspended receiver, got %v", err)
	}
}

func TestSendDuplicatePair(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 2, ""); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := svc.Send(ctx, 1, 2, ""); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// The reverse direction counts as the same pair.
	if _, err := svc.Send(ctx, 2, 1, ""); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reversed pair, got %v", err)
	}
}

func TestRespondAccept(t *testing.T) {
	svc, _, outbox := newServiceForTest()
	ctx := context.Background()

	sent, err := svc.Send(ctx, 1, 2, "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// Only the receiver may respond.
	if _, err := svc.Respond(ctx, 1, sent.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for sender responding, got %v", err)
	}

	accepted, err := svc.Respond(ctx, 2, sent.ID, true)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if accepted.Status != enums.ProposalStatusAccepted {
		t.Fatalf("expected ACCEPTED, got %q", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Fatal("expected responded_at to be set")
	}

	notifs := outbox.notifications()
	last := notifs[len(notifs)-1]
	if last.UserID != 1 || last.Item.Type != enums.NotificationProposalAccepted {
		t.Fatalf("expected PROPOSAL_ACCEPTED for sender, got %+v", last)
	}

	// A terminal proposal cannot be answered again.
	if _, err := svc.Respond(ctx, 2, sent.ID, false); !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("expected ErrAlreadyResponded, got %v", err)
	}
}

func TestRespondAfterRejectAllowsNewProposal(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	sent, err := svc.Send(ctx, 1, 2, "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Respond(ctx, 2, sent.ID, false); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Once the first proposal is terminal the pair is open again.
	if _, err := svc.Send(ctx, 2, 1, ""); err != nil {
		t.Fatalf("new proposal after reject: %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	sent, err := svc.Send(ctx, 1, 2, "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := svc.Withdraw(ctx, 2, sent.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for receiver withdrawing, got %v", err)
	}

	withdrawn, err := svc.Withdraw(ctx, 1, sent.ID)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Status != enums.ProposalStatusWithdrawn {
		t.Fatalf("expected WITHDRAWN, got %q", withdrawn.Status)
	}

	if _, err := svc.Respond(ctx, 2, sent.ID, true); !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("expected ErrAlreadyResponded after withdraw, got %v", err)
	}
}

func TestListBoxes(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 2, ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	sent, err := svc.ListSent(ctx, 1, 20, 0)
	if err != nil || len(sent) != 1 {
		t.Fatalf("list sent: %v (%d)", err, len(sent))
	}
	received, err := svc.ListReceived(ctx, 2, 20, 0)
	if err != nil || len(received) != 1 {
		t.Fatalf("list received: %v (%d)", err, len(received))
	}
}
