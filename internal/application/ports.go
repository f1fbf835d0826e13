package application

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/notification"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/kafka"
)

// EventPublisher publishes CloudEvents. Satisfied by *kafka.Producer and *kafka.NoopProducer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Notifier sends a templated email to one address.
type Notifier interface {
	Send(ctx context.Context, template, to string, data notification.BookingEmail) error
}

// PaymentGateway opens hosted checkout sessions.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error)
}

// ImageStorage stores listing images and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, listingID uuid.UUID, fileName, contentType string, r io.Reader, size int64) (string, error)
}
