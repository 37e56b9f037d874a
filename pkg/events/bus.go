package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const DefaultTopic = "haley.domain_events"

// Publisher is what services depend on to announce something happened.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Bus is an in-process pub/sub on a watermill GoChannel. Publishing never
// waits for subscribers; events published with no subscriber are dropped.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewBus(topic string, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger),
		topic:  topic,
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(BaseEvent{
		Type:       event.EventType(),
		UserID:     userIDOf(event),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.EventType())
	return b.pubSub.Publish(b.topic, msg)
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, b.topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// Decode reads a message produced by Publish.
func Decode(msg *message.Message) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return BaseEvent{}, err
	}
	return e, nil
}

func userIDOf(event Event) string {
	if e, ok := event.(BaseEvent); ok {
		return e.UserID
	}
	return ""
}
