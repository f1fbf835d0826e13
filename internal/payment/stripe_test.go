package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test_secret"

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Header, sp.Payload
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testSecret})
	bookingID := uuid.New().String()
	header, payload := signed(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"amount_total": 85500,
			"currency": "xof",
			"payment_intent": "pi_123",
			"metadata": {"booking_id": "`+bookingID+`"}
		}}
	}`)

	evt, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, evt.Type)
	assert.Equal(t, bookingID, evt.BookingID)
	assert.Equal(t, "pi_123", evt.PaymentReference)
	assert.Equal(t, int64(85500), evt.Amount)
}

func TestParseWebhook_PaymentFailedWithoutBooking(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testSecret})
	header, payload := signed(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_456",
			"object": "payment_intent",
			"amount": 85500,
			"currency": "xof",
			"last_payment_error": {"message": "card declined"}
		}}
	}`)

	evt, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, evt.Type)
	assert.Empty(t, evt.BookingID)
	assert.Equal(t, "pi_456", evt.PaymentReference)
	assert.Equal(t, "card declined", evt.FailureReason)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testSecret})
	_, payload := signed(t, `{"id":"evt_3","object":"event","type":"checkout.session.completed"}`)

	_, err := g.ParseWebhook(payload, "t=1,v1=deadbeef")
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestParseWebhook_MissingSecret(t *testing.T) {
	g := NewStripeGateway(Config{})
	_, err := g.ParseWebhook([]byte(`{}`), "t=1,v1=x")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestBuildCheckoutParams_PassesAmountThrough(t *testing.T) {
	id := uuid.New()
	params := buildCheckoutParams(Config{
		Currency:   "XOF",
		SuccessURL: "https://app.test/bookings/{BOOKING_ID}?paid=1",
		CancelURL:  "https://app.test/bookings/{BOOKING_ID}",
	}, CheckoutRequest{BookingID: id, DisplayName: "Villa Ngor", Amount: 85500})

	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(85500), *item.PriceData.UnitAmount)
	assert.Equal(t, "xof", *item.PriceData.Currency)
	assert.Equal(t, "Villa Ngor", *item.PriceData.ProductData.Name)
	assert.Equal(t, "https://app.test/bookings/"+id.String()+"?paid=1", *params.SuccessURL)
	assert.Equal(t, id.String(), params.Metadata[MetadataBookingID])
	assert.Equal(t, id.String(), params.PaymentIntentData.Metadata[MetadataBookingID])
}
