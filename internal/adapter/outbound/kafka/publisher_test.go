package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/utils/requestctx"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
	deadline bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestEventPublisher_Publish(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := &model.OrderStatusChangedEvent{
		EventID:   uuid.New(),
		OrderCode: 42,
		From:      model.OrderStatusAwaitingPayment,
		To:        model.OrderStatusConfirmed,
		Total:     3000,
		Currency:  "brl",
		At:        at,
	}

	t.Run("writes keyed message", func(t *testing.T) {
		w := &fakeWriter{}
		p := newEventPublisher(w, 0)

		require.NoError(t, p.Publish(context.Background(), event))
		require.Len(t, w.messages, 1)

		msg := w.messages[0]
		assert.Equal(t, "42", string(msg.Key))
		assert.Equal(t, at, msg.Time)
		assert.True(t, w.deadline)
		assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte("order.status_changed")})

		var decoded model.OrderStatusChangedEvent
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, model.OrderStatusConfirmed, decoded.To)
		assert.Equal(t, event.EventID, decoded.EventID)
	})

	t.Run("propagates request id", func(t *testing.T) {
		w := &fakeWriter{}
		p := newEventPublisher(w, 0)

		ctx := requestctx.WithRequestID(context.Background(), "req-7")
		require.NoError(t, p.Publish(ctx, event))
		require.Len(t, w.messages, 1)
		assert.Contains(t, w.messages[0].Headers, kafka.Header{Key: "request_id", Value: []byte("req-7")})
	})

	t.Run("wraps writer errors", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("leader not available")}
		p := newEventPublisher(w, time.Second)

		err := p.Publish(context.Background(), event)
		assert.ErrorContains(t, err, "leader not available")
	})

	t.Run("close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, newEventPublisher(w, 0).Close())
		assert.True(t, w.closed)
	})
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), &model.OrderStatusChangedEvent{}))
	assert.NoError(t, p.Close())
}
