// AngelaMos | 2026
// events.go

// Package events carries domain notifications between server components
// over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

const (
	TopicDoubtStatus = "doubt.status_changed"

	source  = "doubtspace-api"
	version = "1.0"
)

// Event is the envelope every payload travels in.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type StatusChanged struct {
	DoubtID string             `json:"doubtId"`
	From    domain.DoubtStatus `json:"from"`
	To      domain.DoubtStatus `json:"to"`
	ActorID string             `json:"actorId"`
}

// Publisher is what services depend on. A publish returns once every
// subscriber has acked, so changes to one doubt arrive in the order they
// were made. Subscribers must stay fast.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusChanged) error
}

type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            64,
				BlockPublishUntilSubscriberAck: true,
			},
			watermill.NewSlogLogger(logger),
		),
		logger: logger,
	}
}

func (b *Bus) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	envelope, err := json.Marshal(Event{
		ID:        watermill.NewUUID(),
		Type:      TopicDoubtStatus,
		Source:    source,
		Version:   version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), envelope)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(TopicDoubtStatus, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicDoubtStatus, err)
	}

	return nil
}

// Handler consumes one status change. Failures are logged and the message
// is dropped; gochannel would otherwise redeliver it in a tight loop.
type Handler func(ctx context.Context, ev StatusChanged) error

// SubscribeStatusChanged runs h for every status change until ctx is done
// or the bus is closed. It blocks, so callers start it on a goroutine.
func (b *Bus) SubscribeStatusChanged(ctx context.Context, h Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, TopicDoubtStatus)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicDoubtStatus, err)
	}

	for msg := range messages {
		var envelope Event
		var ev StatusChanged

		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			b.logger.Warn("dropping malformed event", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			b.logger.Warn("dropping malformed status change", "event_id", envelope.ID, "error", err)
			msg.Ack()
			continue
		}

		if err := h(msg.Context(), ev); err != nil {
			b.logger.Warn("status change handler failed",
				"event_id", envelope.ID,
				"doubt_id", ev.DoubtID,
				"error", err,
			)
		}
		msg.Ack()
	}

	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// LogStatusChanges is the default subscriber: one info line per change.
func LogStatusChanges(logger *slog.Logger) Handler {
	return func(ctx context.Context, ev StatusChanged) error {
		logger.InfoContext(ctx, "doubt status changed",
			"doubt_id", ev.DoubtID,
			"from", ev.From,
			"to", ev.To,
			"actor_id", ev.ActorID,
		)
		return nil
	}
}

var _ Publisher = (*Bus)(nil)
