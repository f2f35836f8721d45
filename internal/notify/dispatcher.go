package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avenrae/avenrae-api/internal/observability/metrics"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

type pendingStore interface {
	FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]Pending, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, cause error) error
}

// Dispatcher polls undelivered notifications and emails the recipient.
type Dispatcher struct {
	store       pendingStore
	sender      EmailSender
	metrics     *metrics.NotifyMetrics
	logger      *logging.Logger
	batchSize   int32
	interval    time.Duration
	maxAttempts int
}

func NewDispatcher(store pendingStore, sender EmailSender, m *metrics.NotifyMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		store:       store,
		sender:      sender,
		metrics:     m,
		logger:      logger,
		batchSize:   25,
		interval:    5 * time.Second,
		maxAttempts: 5,
	}
}

func (d *Dispatcher) WithBatchSize(size int) *Dispatcher {
	if size > 0 {
		d.batchSize = int32(size)
	}
	return d
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Dispatcher) WithMaxAttempts(n int) *Dispatcher {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

// Start drains the outbox on every tick until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.store == nil || d.sender == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Drain(ctx)
		}
	}
}

// Drain sends one batch and returns how many emails went out.
func (d *Dispatcher) Drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		d.logger.Error("notification fetch failed", "error", err)
		return 0
	}

	sent := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return sent
		}
		if entry.RecipientEmail == "" {
			d.metrics.ObserveDelivery(outcomeSkipped)
			if err := d.store.MarkFailed(ctx, entry.ID, fmt.Errorf("recipient has no email")); err != nil {
				d.logger.Error("failed to record skipped notification", "error", err, "notification_id", entry.ID)
			}
			continue
		}

		if err := d.sender.Send(ctx, render(entry)); err != nil {
			d.metrics.ObserveDelivery(outcomeFailed)
			d.logger.Warn("notification email failed", "error", err, "notification_id", entry.ID, "attempt", entry.Attempts+1)
			if err := d.store.MarkFailed(ctx, entry.ID, err); err != nil {
				d.logger.Error("failed to record notification failure", "error", err, "notification_id", entry.ID)
			}
			continue
		}

		d.metrics.ObserveDelivery(outcomeSent)
		sent++
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark notification delivered", "error", err, "notification_id", entry.ID)
		} else if ok {
			d.logger.Debug("notification delivered", "notification_id", entry.ID, "type", entry.Type)
		}
	}
	return sent
}

func render(p Pending) EmailMessage {
	body := p.Message
	if p.BookingID != nil {
		body = fmt.Sprintf("%s\n\nBooking reference: %s", p.Message, p.BookingID.String())
	}
	return EmailMessage{
		To:        p.RecipientEmail,
		ToName:    p.RecipientName,
		Subject:   p.Title,
		Body:      body,
		Reference: p.ID.String(),
	}
}
