package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/fastorder/server/internal/utils/requestctx"
	"github.com/segmentio/kafka-go"
)

const eventTypeOrderStatusChanged = "order.status_changed"

// messageWriter is the subset of *kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublisherConfig holds Kafka publisher configuration.
type PublisherConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// eventPublisher implements outbound.EventPublisherPort on a Kafka topic.
// Messages are keyed by order code so one order's events stay ordered.
type eventPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewEventPublisher creates a Kafka-backed event publisher.
func NewEventPublisher(cfg *PublisherConfig) outbound.EventPublisherPort {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return newEventPublisher(w, cfg.WriteTimeout)
}

func newEventPublisher(w messageWriter, timeout time.Duration) *eventPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &eventPublisher{writer: w, timeout: timeout}
}

func (p *eventPublisher) Publish(ctx context.Context, event *model.OrderStatusChangedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderCode, 10)),
		Value: value,
		Time:  event.At,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeOrderStatusChanged)},
			{Key: "event_id", Value: []byte(event.EventID.String())},
		},
	}
	if requestID := requestctx.RequestID(ctx); requestID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(requestID)})
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *eventPublisher) Close() error {
	return p.writer.Close()
}

// noopPublisher discards events when no broker is configured.
type noopPublisher struct{}

// NewNoopPublisher creates a publisher that drops every event.
func NewNoopPublisher() outbound.EventPublisherPort {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *model.OrderStatusChangedEvent) error { return nil }

func (noopPublisher) Close() error { return nil }

// Compile-time check
var (
	_ outbound.EventPublisherPort = (*eventPublisher)(nil)
	_ outbound.EventPublisherPort = noopPublisher{}
)
