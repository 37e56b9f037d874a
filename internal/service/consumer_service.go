// FILE: internal/service/consumer_service.go
package service

import (
	"context"

	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// RealtimeNotifier pushes an event to the open connections of one user.
type RealtimeNotifier interface {
	Send(ctx context.Context, userID uuid.UUID, eventType string, data interface{}) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus: quota changes go to the
// realtime hub, and every event is forwarded to the external broker when one
// is configured.
type consumerService struct {
	bus      *events.Bus
	notifier RealtimeNotifier
	external events.Publisher
	logger   logger.ILogger
	metrics  *metrics.Metrics
}

func NewConsumerService(
	bus *events.Bus,
	notifier RealtimeNotifier,
	external events.Publisher,
	log logger.ILogger,
	m *metrics.Metrics,
) IConsumerService {
	return &consumerService{
		bus:      bus,
		notifier: notifier,
		external: external,
		logger:   log,
		metrics:  m,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a delivery failure is logged and counted, a
// redelivery would only fail the same way.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Decode(msg)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to decode event", map[string]interface{}{"error": err.Error()})
		return
	}

	if event.Type == events.QuotaUpdated && cs.notifier != nil {
		cs.pushRealtime(ctx, event)
	}

	if cs.external != nil {
		status := "ok"
		if err := cs.external.Publish(ctx, event); err != nil {
			status = "error"
			cs.logger.Warn("Consumer", "Failed to forward event", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		}
		cs.metrics.RecordEventPublished(event.Type, "nats", status)
	}
}

func (cs *consumerService) pushRealtime(ctx context.Context, event events.BaseEvent) {
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		cs.logger.Warn("Consumer", "Event without a valid user id", map[string]interface{}{"type": event.Type})
		return
	}

	status := "ok"
	if err := cs.notifier.Send(ctx, userID, event.Type, event.Data); err != nil {
		status = "error"
		cs.logger.Warn("Consumer", "Failed to push realtime event", map[string]interface{}{
			"type":    event.Type,
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	cs.metrics.RecordEventPublished(event.Type, "realtime", status)
}
