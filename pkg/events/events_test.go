package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/pkg/order"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestOrderAccepted(t *testing.T) {
	w := &fakeWriter{}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &KafkaPublisher{writer: w, now: func() time.Time { return at }}

	o := order.Order{ID: "ord-9", Status: order.StatusPending, FullName: "Ann"}
	require.NoError(t, p.OrderAccepted(context.Background(), o))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ord-9", string(msg.Key))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, TypeOrderAccepted, ev.Type)
	assert.Equal(t, "ord-9", ev.OrderID)
	assert.Equal(t, "pending", ev.Status)
	assert.True(t, at.Equal(ev.AcceptedAt))
	assert.JSONEq(t, `{"id":"ord-9","status":"pending","fullName":"Ann"}`, string(ev.Order))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestOrderAcceptedWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w, now: time.Now}

	err := p.OrderAccepted(context.Background(), order.Order{ID: "ord-1"})
	assert.ErrorContains(t, err, "broker down")
}
