package events

import (
	"context"
	"time"

	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// Operations stamped on published events.
const (
	OpBook           = "book"
	OpCancel         = "cancel"
	OpAdminCancel    = "admin_cancel"
	OpSetUnavailable = "set_unavailable"
)

const source = "slots"

// SlotEvent is the change-notification payload emitted after every
// successful state transition, for the UI layer (or anything else) to
// consume. The core never depends on it for correctness.
type SlotEvent struct {
	SlotID              string           `json:"slot_id"`
	Hour                int              `json:"hour"`
	Operation           string           `json:"operation"`
	Status              model.SlotStatus `json:"status"`
	ManuallyUnavailable bool             `json:"is_manually_unavailable"`
	ActorID             string           `json:"actor_id"`
	OccurredAt          time.Time        `json:"occurred_at"`
}

type Publisher interface {
	SlotChanged(ctx context.Context, event SlotEvent) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(brokers, topic)
	if err != nil {
		return nil, err
	}
	log.Info("Slot event publisher initialized", "brokers", brokers, "topic", topic)
	return &kafkaPublisher{producer: producer, log: log}, nil
}

func (p *kafkaPublisher) SlotChanged(ctx context.Context, event SlotEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.SlotID).
		WithValue(event).
		WithEventType("slots." + event.Operation).
		WithSource(source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NewNoopPublisher is used when no brokers are configured; transitions
// then simply go unannounced.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

type noopPublisher struct{}

func (noopPublisher) SlotChanged(context.Context, SlotEvent) error { return nil }
func (noopPublisher) Close() error                                 { return nil }
