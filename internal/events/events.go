// Package events publishes item lifecycle notifications over a message
// queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itemmanager/apiserver/internal/mq"
	"github.com/itemmanager/apiserver/types"
)

type EventType string

const (
	ItemCreated EventType = "item.created"
	ItemUpdated EventType = "item.updated"
	ItemDeleted EventType = "item.deleted"
)

const attrEventType = "event-type"

// ItemEvent is the JSON payload published after a successful write. For
// deletions Item carries only the id.
type ItemEvent struct {
	Type       EventType  `json:"type"`
	Item       types.Item `json:"item"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Publisher sends item events on one channel.
type Publisher struct {
	queue   *mq.MQ
	channel string
}

func NewPublisher(queue *mq.MQ, channel string) *Publisher {
	return &Publisher{queue: queue, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, event ItemEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	attrs := map[string]string{
		mq.AttrContentType: "application/json",
		attrEventType:      string(event.Type),
	}
	if _, err := p.queue.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

// Subscribe decodes events from the channel and hands them to fn. Messages
// that fail to decode are acknowledged and dropped so they are not
// redelivered; onInvalid, when set, sees each of them.
func Subscribe(ctx context.Context, queue *mq.MQ, channel string, fn func(context.Context, ItemEvent) error, onInvalid func(mq.Message, error)) error {
	return queue.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
		event, err := Decode(msg)
		if err != nil {
			if onInvalid != nil {
				onInvalid(msg, err)
			}
			return nil
		}
		return fn(ctx, event)
	})
}

// Decode parses a message produced by Publisher.
func Decode(msg mq.Message) (ItemEvent, error) {
	var event ItemEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return ItemEvent{}, fmt.Errorf("decode item event %s: %w", msg.ID, err)
	}
	switch event.Type {
	case ItemCreated, ItemUpdated, ItemDeleted:
	default:
		return ItemEvent{}, fmt.Errorf("decode item event %s: unknown type %q", msg.ID, event.Type)
	}
	return event, nil
}
