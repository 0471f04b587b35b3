package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mangala-lk/backend/internal/domain/model"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
	defaultMaxAttempts  = 8
	baseBackoff         = 5 * time.Second
	maxBackoff          = 10 * time.Minute
)

type Store interface {
	ClaimDue(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64, nextAttemptAt time.Time) error
	Park(ctx context.Context, id int64) error
}

type NotificationSink interface {
	Append(ctx context.Context, userID int64, item model.NotificationItem) error
}

type ActivitySink interface {
	Insert(ctx context.Context, entry model.ActivityEntry) error
}

// Worker drains the transactional outbox into the document store. The
// sinks are idempotent on event id, so redelivery after a crash between
// apply and mark-processed is harmless.
type Worker struct {
	store         Store
	notifications NotificationSink
	activity      ActivitySink
	pollInterval  time.Duration
	batchSize     int
	maxAttempts   int
	now           func() time.Time
	logger        *zap.Logger
}

func NewWorker(store Store, notifications NotificationSink, activity ActivitySink, pollInterval time.Duration, batchSize, maxAttempts int, logger *zap.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		store:         store,
		notifications: notifications,
		activity:      activity,
		pollInterval:  pollInterval,
		batchSize:     batchSize,
		maxAttempts:   maxAttempts,
		now:           time.Now,
		logger:        logger,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("outbox batch failed", zap.Error(err))
			}
		}
	}
}

// RunOnce claims one batch of due events and applies them. It returns the
// number of events that were processed successfully.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	events, err := w.store.ClaimDue(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim outbox events: %w", err)
	}

	processed := 0
	for _, event := range events {
		if err := w.apply(ctx, event); err != nil {
			w.handleFailure(ctx, event, err)
			continue
		}
		if err := w.store.MarkProcessed(ctx, event.ID); err != nil {
			w.logger.Warn("mark outbox event processed failed", zap.Int64("id", event.ID), zap.Error(err))
			continue
		}
		processed++
	}

	return processed, nil
}

func (w *Worker) apply(ctx context.Context, event model.OutboxEvent) error {
	switch event.Kind {
	case model.OutboxKindNotification:
		var payload model.NotificationPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode notification payload: %w", err)
		}
		if payload.Item.EventID == "" {
			payload.Item.EventID = event.EventID
		}
		return w.notifications.Append(ctx, payload.UserID, payload.Item)

	case model.OutboxKindActivity:
		var entry model.ActivityEntry
		if err := json.Unmarshal(event.Payload, &entry); err != nil {
			return fmt.Errorf("decode activity payload: %w", err)
		}
		if entry.EventID == "" {
			entry.EventID = event.EventID
		}
		return w.activity.Insert(ctx, entry)
	}

	return fmt.Errorf("unknown outbox kind %q", event.Kind)
}

func (w *Worker) handleFailure(ctx context.Context, event model.OutboxEvent, cause error) {
	if event.Attempts >= w.maxAttempts {
		w.logger.Error("outbox event parked",
			zap.Int64("id", event.ID),
			zap.String("kind", event.Kind),
			zap.Int("attempts", event.Attempts),
			zap.Error(cause),
		)
		if err := w.store.Park(ctx, event.ID); err != nil {
			w.logger.Warn("park outbox event failed", zap.Int64("id", event.ID), zap.Error(err))
		}
		return
	}

	// Attempts can legitimately be zero, for example when a claim bumped
	// the counter but the row was reread before the update committed; a
	// negative shift count panics, so clamp it.
	shift := event.Attempts - 1
	if shift < 0 {
		shift = 0
	}
	backoff := baseBackoff << shift
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	w.logger.Warn("outbox event rescheduled",
		zap.Int64("id", event.ID),
		zap.String("kind", event.Kind),
		zap.Int("attempts", event.Attempts),
		zap.Duration("backoff", backoff),
		zap.Error(cause),
	)
	if err := w.store.Reschedule(ctx, event.ID, w.now().Add(backoff)); err != nil {
		w.logger.Warn("reschedule outbox event failed", zap.Int64("id", event.ID), zap.Error(err))
	}
}
