package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is implemented by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// RecordEvent is published after a record is created or deleted.
type RecordEvent struct {
	Event         string     `json:"event"`
	ActorID       uuid.UUID  `json:"actor_id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	PlantID       *uuid.UUID `json:"plant_id,omitempty"`
	PlantCode     string     `json:"plant_code,omitempty"`
	VisitorID     *uuid.UUID `json:"visitor_id,omitempty"`
	VisitorNumber int64      `json:"visitor_number,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// publishEvent is best effort: the record is already committed, so a broker
// failure is logged and never returned.
func publishEvent(ctx context.Context, p EventPublisher, log *zap.Logger, routingKey string, ev RecordEvent) {
	if p == nil || routingKey == "" {
		return
	}
	ev.Event = routingKey
	ev.OccurredAt = time.Now().UTC()
	if err := p.PublishJSON(ctx, routingKey, ev); err != nil {
		log.Warn("publish record event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
