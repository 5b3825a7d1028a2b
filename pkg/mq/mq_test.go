package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestNewPublisher_EmptyURL(t *testing.T) {
	p, err := NewPublisher("", "bookshelf.events")
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), EventShelfAdded, map[string]int{"book_id": 1}))
	assert.NoError(t, p.Close())
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch, exchange: "bookshelf.events"}

	payload := map[string]interface{}{"user_id": 3, "book_id": 9, "shelf": "read"}
	require.NoError(t, p.Publish(context.Background(), EventShelfAdded, payload))

	assert.Equal(t, "bookshelf.events", ch.exchange)
	assert.Equal(t, EventShelfAdded, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var event Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, EventShelfAdded, event.Type)
	assert.Equal(t, ch.msg.MessageId, event.ID)
	assert.JSONEq(t, `{"user_id":3,"book_id":9,"shelf":"read"}`, string(event.Payload))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	p := &RabbitPublisher{channel: ch, exchange: "bookshelf.events"}

	err := p.Publish(context.Background(), EventReviewDeleted, map[string]int{"review_id": 1})
	assert.Error(t, err)

	// PublishAsync吞掉错误
	assert.NotPanics(t, func() {
		PublishAsync(context.Background(), p, EventReviewDeleted, map[string]int{"review_id": 1})
	})
}

func TestNewEvent_InvalidPayload(t *testing.T) {
	_, err := NewEvent(EventBookIngested, make(chan int))
	assert.Error(t, err)
}
