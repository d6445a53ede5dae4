package events

import (
	"context"
	"testing"
	"time"

	"github.com/itemmanager/apiserver/internal/mq"
	"github.com/itemmanager/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback delivers every published message to the next Subscribe call.
type loopback struct {
	messages []mq.Message
}

func (l *loopback) Publish(_ context.Context, _ string, data []byte, attrs map[string]string) (string, error) {
	l.messages = append(l.messages, mq.Message{ID: "m", Data: data, Attributes: attrs})
	return "m", nil
}

func (l *loopback) Subscribe(ctx context.Context, _ string, handler mq.Handler) error {
	for _, msg := range l.messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (l *loopback) Close() error { return nil }

func TestPublishAndSubscribe(t *testing.T) {
	ctx := context.Background()
	backend := &loopback{}
	queue := mq.New(backend)
	publisher := NewPublisher(queue, "item-events")

	occurred := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sent := ItemEvent{
		Type:       ItemCreated,
		Item:       types.Item{ID: 1, Name: "X", Price: 10},
		OccurredAt: occurred,
	}
	require.NoError(t, publisher.Publish(ctx, sent))

	require.Len(t, backend.messages, 1)
	assert.Equal(t, "application/json", backend.messages[0].Attributes[mq.AttrContentType])
	assert.Equal(t, "item.created", backend.messages[0].Attributes["event-type"])

	var received []ItemEvent
	err := Subscribe(ctx, queue, "item-events", func(_ context.Context, event ItemEvent) error {
		received = append(received, event)
		return nil
	}, nil)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, sent.Item, received[0].Item)
	assert.True(t, occurred.Equal(received[0].OccurredAt))
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := Decode(mq.Message{ID: "1", Data: []byte(`{"type":"item.renamed"}`)})
	assert.Error(t, err)

	_, err = Decode(mq.Message{ID: "2", Data: []byte(`not json`)})
	assert.Error(t, err)
}

func TestSubscribeDropsInvalidMessages(t *testing.T) {
	backend := &loopback{messages: []mq.Message{
		{ID: "bad", Data: []byte(`{"type":"nope"}`)},
		{ID: "good", Data: []byte(`{"type":"item.deleted","item":{"id":3}}`)},
	}}

	var invalid []string
	var received []ItemEvent
	err := Subscribe(context.Background(), mq.New(backend), "item-events",
		func(_ context.Context, event ItemEvent) error {
			received = append(received, event)
			return nil
		},
		func(msg mq.Message, _ error) {
			invalid = append(invalid, msg.ID)
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad"}, invalid)
	require.Len(t, received, 1)
	assert.Equal(t, ItemDeleted, received[0].Type)
	assert.Equal(t, int64(3), received[0].Item.ID)
}
