package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/contracts"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
	"github.com/teranga-stays/service-rental/internal/platform/kafka"
)

// PaymentHandler applies payment outcomes to bookings. Satisfied by
// *application.PaymentService.
type PaymentHandler interface {
	HandleCheckoutCompleted(ctx context.Context, rawBookingID, paymentReference string) error
	HandlePaymentFailed(ctx context.Context, rawBookingID, reason string) error
}

// PaymentEventConsumer listens to relayed payment events and confirms or
// flags bookings, exactly like the webhook does.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	handler  PaymentHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	handler PaymentHandler,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.PaymentCompleted:
		return c.handleCompleted(ctx, cloudEvent)
	case contracts.PaymentFailed:
		return c.handleFailed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.PaymentCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCompletedEvent data", zap.Error(err))
		return nil
	}

	// Redelivery cannot fix a missing booking_id or an unknown booking, so
	// those are dropped here instead of blocking the partition.
	if evt.BookingID == uuid.Nil {
		c.logger.Error("payment completed event without booking_id, skipping",
			zap.String("payment_reference", evt.PaymentReference),
		)
		return nil
	}

	c.logger.Info("processing payment completed event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_reference", evt.PaymentReference),
	)
	if err := c.handler.HandleCheckoutCompleted(ctx, evt.BookingID.String(), evt.PaymentReference); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			c.logger.Error("payment completed event for unknown booking, skipping",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("payment_reference", evt.PaymentReference),
			)
			return nil
		}
		c.logger.Error("failed to confirm booking from payment event",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *PaymentEventConsumer) handleFailed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.PaymentFailedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentFailedEvent data", zap.Error(err))
		return nil
	}

	rawID := ""
	if evt.BookingID != nil {
		rawID = evt.BookingID.String()
	}
	return c.handler.HandlePaymentFailed(ctx, rawID, evt.Reason)
}
