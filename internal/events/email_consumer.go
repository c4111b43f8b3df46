package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kiloutout/service-booking/internal/kafka"
	"github.com/kiloutout/service-booking/internal/mailer"
)

// EmailConsumer subscribes to the booking event stream and sends the
// matching transactional emails. Malformed messages are logged and skipped
// so one bad record never stalls the group.
type EmailConsumer struct {
	consumer *kafka.Consumer
	mailer   mailer.Mailer
	logger   *zap.Logger
}

// NewEmailConsumer creates the consumer for the given brokers and group.
func NewEmailConsumer(brokers []string, groupID string, m mailer.Mailer, logger *zap.Logger) *EmailConsumer {
	return &EmailConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger),
		mailer:   m,
		logger:   logger,
	}
}

// Start blocks, processing events until the context is cancelled.
func (c *EmailConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying consumer.
func (c *EmailConsumer) Close() error {
	return c.consumer.Close()
}

func (c *EmailConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Warn("skipping malformed event", zap.Error(err))
		return nil
	}

	var payload BookingEventPayload
	if err := event.ParseData(&payload); err != nil {
		c.logger.Warn("skipping event with malformed payload",
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return nil
	}

	data := mailer.BookingEmailData{
		BookingNumber: payload.BookingNumber,
		CustomerName:  payload.CustomerName,
		ServiceName:   payload.ServiceName,
		RequestedDate: payload.RequestedDate,
		RequestedTime: payload.RequestedTime,
		DurationHours: payload.DurationHours,
		Address:       payload.Address,
		City:          payload.City,
		PostalCode:    payload.PostalCode,
		TotalCents:    payload.TotalCents,
		Reason:        payload.Reason,
	}

	switch event.Type {
	case BookingCreated:
		if err := c.send(payload.CustomerEmail, mailer.BookingCreatedEmail, data); err != nil {
			return err
		}
		if payload.AdminEmail != "" {
			return c.send(payload.AdminEmail, mailer.BookingCreatedAdminEmail, data)
		}
		return nil
	case BookingConfirmed, BookingRescheduled:
		return c.send(payload.CustomerEmail, mailer.BookingConfirmedEmail, data)
	case BookingCancelled:
		return c.send(payload.CustomerEmail, mailer.BookingCancelledEmail, data)
	case BookingCompleted:
		// No email on completion, only the in-app notification.
		return nil
	default:
		c.logger.Debug("ignoring event type", zap.String("type", event.Type))
		return nil
	}
}

func (c *EmailConsumer) send(to string, build func(mailer.BookingEmailData) (string, string), data mailer.BookingEmailData) error {
	if to == "" {
		c.logger.Warn("event without recipient email",
			zap.String("booking_number", data.BookingNumber))
		return nil
	}
	subject, body := build(data)
	return c.mailer.Send(to, subject, body)
}
