package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Processor event types handled by the webhook.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// MetadataBookingID links processor objects back to a booking.
const MetadataBookingID = "booking_id"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingSecret    = errors.New("payment webhook secret is not configured")
)

// Config holds payment processor settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// CheckoutRequest describes the payable session for one booking.
type CheckoutRequest struct {
	BookingID   uuid.UUID
	DisplayName string
	Amount      int64
}

// CheckoutSession is the processor's hosted payment page.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified processor event reduced to what the booking flow needs.
type WebhookEvent struct {
	ID               string
	Type             string
	BookingID        string
	PaymentReference string
	Amount           int64
	Currency         string
	FailureReason    string
}

// StripeGateway creates checkout sessions and verifies webhooks.
type StripeGateway struct {
	sessions *session.Client
	cfg      Config
}

// NewStripeGateway creates a gateway bound to one API key.
func NewStripeGateway(cfg Config) *StripeGateway {
	if cfg.Currency == "" {
		cfg.Currency = "xof"
	}
	return &StripeGateway{
		sessions: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.SecretKey},
		cfg:      cfg,
	}
}

// CreateCheckoutSession opens a one-line-item session. Amount is in the
// smallest currency unit and passed through unchanged.
func (g *StripeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := buildCheckoutParams(g.cfg, req)
	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func buildCheckoutParams(cfg Config, req CheckoutRequest) *stripe.CheckoutSessionParams {
	bookingID := req.BookingID.String()
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(cfg.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.DisplayName),
					},
					UnitAmount: stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(strings.ReplaceAll(cfg.SuccessURL, "{BOOKING_ID}", bookingID)),
		CancelURL:         stripe.String(strings.ReplaceAll(cfg.CancelURL, "{BOOKING_ID}", bookingID)),
		ClientReferenceID: stripe.String(bookingID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{MetadataBookingID: bookingID},
		},
	}
	params.AddMetadata(MetadataBookingID, bookingID)
	return params
}

// ParseWebhook verifies the signature header and decodes the event.
// Event types other than the two handled ones come back with only ID and Type set.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.cfg.WebhookSecret == "" {
		return nil, ErrMissingSecret
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return decodeEvent(event)
}

func decodeEvent(event stripe.Event) (*WebhookEvent, error) {
	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		out.BookingID = cs.Metadata[MetadataBookingID]
		out.PaymentReference = cs.ID
		if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
			out.PaymentReference = cs.PaymentIntent.ID
		}
		out.Amount = cs.AmountTotal
		out.Currency = string(cs.Currency)

	case EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		out.BookingID = pi.Metadata[MetadataBookingID]
		out.PaymentReference = pi.ID
		out.Amount = pi.Amount
		out.Currency = string(pi.Currency)
		if pi.LastPaymentError != nil {
			out.FailureReason = pi.LastPaymentError.Msg
		}
	}
	return out, nil
}
