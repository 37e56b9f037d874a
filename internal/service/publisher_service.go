package service

import (
	"context"

	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
)

// IPublisherService announces domain events after the change they describe
// has been committed. Publishing is best effort: a failure is logged and
// counted but never fails the request that caused it.
type IPublisherService interface {
	Publish(ctx context.Context, eventType string, userId uuid.UUID, data map[string]interface{})
}

type publisherService struct {
	publisher events.Publisher
	clock     clock.Clock
	logger    logger.ILogger
	metrics   *metrics.Metrics
}

func NewPublisherService(publisher events.Publisher, clk clock.Clock, log logger.ILogger, m *metrics.Metrics) IPublisherService {
	return &publisherService{
		publisher: publisher,
		clock:     clk,
		logger:    log,
		metrics:   m,
	}
}

func (s *publisherService) Publish(ctx context.Context, eventType string, userId uuid.UUID, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}

	evt := events.New(eventType, userId.String(), data, s.clock.Now())
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Publisher", "Failed to publish event", map[string]interface{}{
			"type":    eventType,
			"user_id": userId,
			"error":   err.Error(),
		})
		s.metrics.RecordEventPublished(eventType, "bus", "error")
		return
	}
	s.metrics.RecordEventPublished(eventType, "bus", "ok")
}
