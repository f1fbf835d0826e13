package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/contracts"
	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/notification"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
	"github.com/teranga-stays/service-rental/internal/platform/metrics"
)

// ErrMissingBookingID means a completed payment carried no booking linkage.
// That is a wiring bug, so it surfaces as a processing failure.
var ErrMissingBookingID = errors.New("payment event has no booking_id metadata")

var errBookingNotPayable = domain.NewValidationError("this booking is not awaiting payment").WithCode("booking_not_payable")

// CheckoutDTO is the hosted payment page for a booking.
type CheckoutDTO struct {
	BookingID uuid.UUID `json:"booking_id"`
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
}

// PaymentServiceDeps groups the collaborators of PaymentService.
type PaymentServiceDeps struct {
	Bookings      bookingDomain.BookingRepository
	Listings      listingDomain.ListingRepository
	Profiles      profileDomain.ProfileRepository
	Gateway       PaymentGateway
	Notifier      Notifier
	Publisher     EventPublisher
	Effects       *EffectRunner
	Metrics       *metrics.Metrics
	PublicBaseURL string
	Logger        *zap.Logger
}

// PaymentService reconciles processor payments with bookings.
type PaymentService struct {
	bookings  bookingDomain.BookingRepository
	listings  listingDomain.ListingRepository
	profiles  profileDomain.ProfileRepository
	gateway   PaymentGateway
	notifier  Notifier
	publisher EventPublisher
	effects   *EffectRunner
	metrics   *metrics.Metrics
	baseURL   string
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(d PaymentServiceDeps) *PaymentService {
	return &PaymentService{
		bookings:  d.Bookings,
		listings:  d.Listings,
		profiles:  d.Profiles,
		gateway:   d.Gateway,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		effects:   d.Effects,
		metrics:   d.Metrics,
		baseURL:   d.PublicBaseURL,
		logger:    d.Logger,
	}
}

// CreateCheckoutSession opens a payment page for the guest's pending booking.
// The amount is the booking total, unchanged.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, actorID, bookingID uuid.UUID) (*CheckoutDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsGuest(actorID) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}
	if bk.Status() != bookingDomain.StatusPending || bk.PaymentStatus() == bookingDomain.PaymentPaid {
		return nil, errBookingNotPayable
	}

	displayName := "Booking " + bk.BookingNumber()
	if lst, err := s.listings.FindByID(ctx, bk.ListingID()); err == nil {
		displayName = lst.Title()
	} else if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		BookingID:   bk.ID(),
		DisplayName: displayName,
		Amount:      bk.TotalPrice(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout session created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("session_id", session.ID),
		zap.Int64("amount", bk.TotalPrice()),
	)
	return &CheckoutDTO{BookingID: bk.ID(), SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhookEvent dispatches a verified processor event. Unhandled types are ignored.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, evt *payment.WebhookEvent) error {
	switch evt.Type {
	case payment.EventCheckoutCompleted:
		return s.HandleCheckoutCompleted(ctx, evt.BookingID, evt.PaymentReference)
	case payment.EventPaymentFailed:
		return s.HandlePaymentFailed(ctx, evt.BookingID, evt.FailureReason)
	default:
		s.metrics.PaymentEvents.WithLabelValues(evt.Type, "ignored").Inc()
		s.logger.Debug("ignoring payment event", zap.String("type", evt.Type), zap.String("event_id", evt.ID))
		return nil
	}
}

// HandleCheckoutCompleted confirms and marks the booking paid. Safe to apply
// more than once; confirmation emails are sent on every delivery.
func (s *PaymentService) HandleCheckoutCompleted(ctx context.Context, rawBookingID, paymentReference string) error {
	if rawBookingID == "" {
		s.metrics.PaymentEvents.WithLabelValues(payment.EventCheckoutCompleted, "error").Inc()
		return ErrMissingBookingID
	}
	bookingID, err := uuid.Parse(rawBookingID)
	if err != nil {
		s.metrics.PaymentEvents.WithLabelValues(payment.EventCheckoutCompleted, "error").Inc()
		return fmt.Errorf("invalid booking_id metadata %q: %w", rawBookingID, err)
	}

	if err := s.bookings.MarkPaid(ctx, bookingID, paymentReference); err != nil {
		if errors.Is(err, bookingDomain.ErrPaidAfterCancellation) {
			s.metrics.PaymentEvents.WithLabelValues(payment.EventCheckoutCompleted, "refund_required").Inc()
			s.logger.Error("payment received for cancelled booking, refund required",
				zap.String("booking_id", bookingID.String()),
				zap.String("payment_reference", paymentReference),
			)
			return nil
		}
		s.metrics.PaymentEvents.WithLabelValues(payment.EventCheckoutCompleted, "error").Inc()
		return fmt.Errorf("failed to confirm booking %s: %w", bookingID, err)
	}
	s.metrics.PaymentEvents.WithLabelValues(payment.EventCheckoutCompleted, "ok").Inc()

	s.logger.Info("booking paid",
		zap.String("booking_id", bookingID.String()),
		zap.String("payment_reference", paymentReference),
	)

	s.effects.Run(ctx, s.confirmationEffects(bookingID, paymentReference)...)
	return nil
}

// confirmationEffects reloads the booking inside each effect so a failed
// reload never affects the webhook response.
func (s *PaymentService) confirmationEffects(bookingID uuid.UUID, paymentReference string) []SideEffect {
	email := func(template string, recipient func(bk *bookingDomain.Booking, lst *listingDomain.Listing) uuid.UUID) SideEffect {
		return SideEffect{
			Name: "email:" + template,
			Run: func(ctx context.Context) error {
				bk, lst, err := s.loadBookingWithListing(ctx, bookingID)
				if err != nil {
					return err
				}
				recipientID := recipient(bk, lst)
				if recipientID == uuid.Nil {
					return fmt.Errorf("no recipient for %s", template)
				}
				return bookingEmailEffect(s.profiles, s.notifier, template, recipientID, bk, lst, s.baseURL).Run(ctx)
			},
		}
	}

	return []SideEffect{
		email(notification.ReservationConfirmedGuest, func(bk *bookingDomain.Booking, _ *listingDomain.Listing) uuid.UUID {
			return bk.GuestID()
		}),
		email(notification.ReservationConfirmedHost, func(_ *bookingDomain.Booking, lst *listingDomain.Listing) uuid.UUID {
			if lst == nil {
				return uuid.Nil
			}
			return lst.OwnerID()
		}),
		{
			Name: "publish:" + contracts.BookingConfirmed,
			Run: func(ctx context.Context) error {
				bk, err := s.bookings.FindByID(ctx, bookingID)
				if err != nil {
					return err
				}
				return publishEffect(s.publisher, contracts.TopicBookingEvents, contracts.BookingConfirmed, bookingID.String(),
					contracts.BookingConfirmedEvent{
						BookingID:        bk.ID(),
						BookingNumber:    bk.BookingNumber(),
						ListingID:        bk.ListingID(),
						GuestID:          bk.GuestID(),
						ConfirmedBy:      string(bookingDomain.ActorPaymentProcessor),
						PaymentReference: paymentReference,
						OccurredAt:       time.Now().UTC(),
					}).Run(ctx)
			},
		},
	}
}

// HandlePaymentFailed marks the booking's payment failed and leaves its status
// alone. Events without a usable booking_id are logged and dropped.
func (s *PaymentService) HandlePaymentFailed(ctx context.Context, rawBookingID, reason string) error {
	if rawBookingID == "" {
		s.metrics.PaymentEvents.WithLabelValues(payment.EventPaymentFailed, "skipped").Inc()
		s.logger.Warn("payment failed event without booking_id, skipping")
		return nil
	}
	bookingID, err := uuid.Parse(rawBookingID)
	if err != nil {
		s.metrics.PaymentEvents.WithLabelValues(payment.EventPaymentFailed, "skipped").Inc()
		s.logger.Warn("payment failed event with invalid booking_id, skipping", zap.String("booking_id", rawBookingID))
		return nil
	}

	if err := s.bookings.MarkPaymentFailed(ctx, bookingID); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			s.metrics.PaymentEvents.WithLabelValues(payment.EventPaymentFailed, "skipped").Inc()
			s.logger.Warn("payment failed for unknown booking", zap.String("booking_id", bookingID.String()))
			return nil
		}
		s.metrics.PaymentEvents.WithLabelValues(payment.EventPaymentFailed, "error").Inc()
		return fmt.Errorf("failed to record payment failure for booking %s: %w", bookingID, err)
	}
	s.metrics.PaymentEvents.WithLabelValues(payment.EventPaymentFailed, "ok").Inc()

	s.logger.Info("booking payment failed",
		zap.String("booking_id", bookingID.String()),
		zap.String("reason", reason),
	)

	s.effects.Run(ctx, publishEffect(s.publisher, contracts.TopicBookingEvents, contracts.BookingPaymentFailed, bookingID.String(),
		contracts.BookingPaymentFailedEvent{BookingID: bookingID, OccurredAt: time.Now().UTC()}))
	return nil
}

func (s *PaymentService) loadBookingWithListing(ctx context.Context, bookingID uuid.UUID) (*bookingDomain.Booking, *listingDomain.Listing, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	lst, err := s.listings.FindByID(ctx, bk.ListingID())
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return bk, nil, nil
		}
		return nil, nil, err
	}
	return bk, lst, nil
}
