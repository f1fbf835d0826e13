package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/contracts"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
	"github.com/teranga-stays/service-rental/internal/platform/kafka"
)

type mockPaymentHandler struct{ mock.Mock }

func (m *mockPaymentHandler) HandleCheckoutCompleted(ctx context.Context, rawBookingID, ref string) error {
	return m.Called(ctx, rawBookingID, ref).Error(0)
}

func (m *mockPaymentHandler) HandlePaymentFailed(ctx context.Context, rawBookingID, reason string) error {
	return m.Called(ctx, rawBookingID, reason).Error(0)
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("payments", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func newTestConsumer(h PaymentHandler) *PaymentEventConsumer {
	return &PaymentEventConsumer{handler: h, logger: zap.NewNop()}
}

func TestHandleMessage_Completed(t *testing.T) {
	h := new(mockPaymentHandler)
	c := newTestConsumer(h)
	bookingID := uuid.New()
	h.On("HandleCheckoutCompleted", mock.Anything, bookingID.String(), "pi_1").Return(nil)

	err := c.handleMessage(context.Background(), message(t, contracts.PaymentCompleted,
		contracts.PaymentCompletedEvent{BookingID: bookingID, PaymentReference: "pi_1", Amount: 85500}))
	require.NoError(t, err)
	h.AssertExpectations(t)
}

func TestHandleMessage_CompletedFailureIsRetried(t *testing.T) {
	h := new(mockPaymentHandler)
	c := newTestConsumer(h)
	bookingID := uuid.New()
	h.On("HandleCheckoutCompleted", mock.Anything, bookingID.String(), "pi_1").Return(errors.New("db down"))

	err := c.handleMessage(context.Background(), message(t, contracts.PaymentCompleted,
		contracts.PaymentCompletedEvent{BookingID: bookingID, PaymentReference: "pi_1"}))
	assert.Error(t, err)
}

func TestHandleMessage_SkipsUnusable(t *testing.T) {
	h := new(mockPaymentHandler)
	c := newTestConsumer(h)

	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, c.handleMessage(context.Background(), message(t, contracts.PaymentCompleted,
		contracts.PaymentCompletedEvent{PaymentReference: "pi_orphan"})))
	assert.NoError(t, c.handleMessage(context.Background(), message(t, "payment.refunded", map[string]string{})))
	h.AssertNotCalled(t, "HandleCheckoutCompleted", mock.Anything, mock.Anything, mock.Anything)

	unknown := uuid.New()
	h.On("HandleCheckoutCompleted", mock.Anything, unknown.String(), "pi_gone").
		Return(fmt.Errorf("failed to confirm booking %s: %w", unknown, domain.NewNotFoundError("Booking", unknown.String())))
	assert.NoError(t, c.handleMessage(context.Background(), message(t, contracts.PaymentCompleted,
		contracts.PaymentCompletedEvent{BookingID: unknown, PaymentReference: "pi_gone"})))
	h.AssertExpectations(t)
}

func TestHandleMessage_Failed(t *testing.T) {
	h := new(mockPaymentHandler)
	c := newTestConsumer(h)
	bookingID := uuid.New()
	h.On("HandlePaymentFailed", mock.Anything, bookingID.String(), "card_declined").Return(nil)
	h.On("HandlePaymentFailed", mock.Anything, "", "expired").Return(nil)

	require.NoError(t, c.handleMessage(context.Background(), message(t, contracts.PaymentFailed,
		contracts.PaymentFailedEvent{BookingID: &bookingID, Reason: "card_declined"})))
	require.NoError(t, c.handleMessage(context.Background(), message(t, contracts.PaymentFailed,
		contracts.PaymentFailedEvent{Reason: "expired"})))
	h.AssertExpectations(t)
}
