// Package events publishes booking lifecycle changes.
package events

import (
	"context"
	"time"

	"docbook/pkg/kafka"
	"docbook/pkg/logger"
	"docbook/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"

	source        = "docbook-api"
	schemaVersion = "1"
)

// Publisher never fails the caller; delivery problems are logged.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking)
}

// BookingEvent is the message payload.
type BookingEvent struct {
	Type       string        `json:"type"`
	Booking    model.Booking `json:"booking"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer messagePublisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource(source).
		WithSchemaVersion(schemaVersion).
		WithCorrelationID(correlationID(ctx)).
		WithValue(BookingEvent{
			Type:       eventType,
			Booking:    *booking,
			OccurredAt: time.Now().UTC(),
		}).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", eventType, "booking_id", booking.ID, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event", "event_type", eventType, "booking_id", booking.ID, "error", err)
		return
	}
	p.log.Debug("Booking event published", "event_type", eventType, "booking_id", booking.ID)
}

type correlationKey struct{}

// WithCorrelationID attaches the id carried into published event headers.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

type noopPublisher struct{}

// Noop discards events; used when no brokers are configured.
func Noop() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Booking) {}
