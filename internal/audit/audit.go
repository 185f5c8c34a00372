package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/AliXAbdullah03/nge-brain/internal/adapter/events"
	"github.com/AliXAbdullah03/nge-brain/internal/adapter/webhook"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
)

// Sink receives status change records. Changes passed together belong to one
// operation, such as a shipment transition and its cascade.
type Sink interface {
	Record(ctx context.Context, changes ...model.StatusChange) error
}

// Event is the wire form of a status change published to external systems.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	model.StatusChange
}

// NewEvent wraps change with a fresh event id.
func NewEvent(change model.StatusChange) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         string(change.Entity) + ".status_changed",
		StatusChange: change,
	}
}

// Key partitions events per entity.
func Key(change model.StatusChange) string {
	return fmt.Sprintf("%s:%d", change.Entity, change.EntityID)
}

// LogSink writes one structured log line per change.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, changes ...model.StatusChange) error {
	for _, change := range changes {
		s.logger.InfoContext(ctx, "status changed",
			slog.String("entity", string(change.Entity)),
			slog.Int64("entity_id", change.EntityID),
			slog.String("reference", change.Reference),
			slog.String("old_status", change.OldStatus),
			slog.String("new_status", change.NewStatus),
			slog.Int64("actor_id", change.ActorID),
			slog.String("actor_role", string(change.ActorRole)),
			slog.Bool("cascaded", change.Cascaded),
			slog.Time("occurred_at", change.OccurredAt),
		)
	}
	return nil
}

// PublisherSink publishes changes as events to the message broker.
type PublisherSink struct {
	publisher events.Publisher
}

func NewPublisherSink(publisher events.Publisher) *PublisherSink {
	return &PublisherSink{publisher: publisher}
}

// Record publishes every change in one batch.
func (s *PublisherSink) Record(ctx context.Context, changes ...model.StatusChange) error {
	msgs := make([]events.Message, 0, len(changes))
	for _, change := range changes {
		msgs = append(msgs, events.Message{Key: Key(change), Value: NewEvent(change)})
	}
	return s.publisher.PublishBatch(ctx, msgs)
}

// WebhookSink forwards changes to the configured HTTP receiver.
type WebhookSink struct {
	notifier webhook.Notifier
}

func NewWebhookSink(notifier webhook.Notifier) *WebhookSink {
	return &WebhookSink{notifier: notifier}
}

func (s *WebhookSink) Record(ctx context.Context, changes ...model.StatusChange) error {
	var errs []error
	for _, change := range changes {
		event := NewEvent(change)
		if err := s.notifier.Notify(ctx, event.ID, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Multi fans a change out to every sink. All sinks are attempted; their
// errors are joined.
type Multi []Sink

func (m Multi) Record(ctx context.Context, changes ...model.StatusChange) error {
	if len(changes) == 0 {
		return nil
	}
	var errs []error
	for _, sink := range m {
		if err := sink.Record(ctx, changes...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
