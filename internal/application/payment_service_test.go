package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

type paymentFixture struct {
	bookings  *mockBookingRepo
	listings  *mockListingRepo
	profiles  *mockProfileRepo
	gateway   *mockGateway
	notifier  *mockNotifier
	publisher *mockPublisher
	svc       *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		bookings:  new(mockBookingRepo),
		listings:  new(mockListingRepo),
		profiles:  new(mockProfileRepo),
		gateway:   new(mockGateway),
		notifier:  new(mockNotifier),
		publisher: new(mockPublisher),
	}
	effects, m := newTestEffects()
	f.svc = NewPaymentService(PaymentServiceDeps{
		Bookings:      f.bookings,
		Listings:      f.listings,
		Profiles:      f.profiles,
		Gateway:       f.gateway,
		Notifier:      f.notifier,
		Publisher:     f.publisher,
		Effects:       effects,
		Metrics:       m,
		PublicBaseURL: "https://stays.example",
		Logger:        zap.NewNop(),
	})
	return f
}

func TestCreateCheckoutSession(t *testing.T) {
	f := newPaymentFixture()
	hostID, guestID := uuid.New(), uuid.New()
	lst := approvedListing(hostID, 25000, 4)
	bk := pendingBooking(t, lst.ID(), guestID)

	f.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)
	f.listings.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)
	f.gateway.On("CreateCheckoutSession", mock.Anything, payment.CheckoutRequest{
		BookingID:   bk.ID(),
		DisplayName: "Villa Saly",
		Amount:      85500,
	}).Return(&payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil)

	dto, err := f.svc.CreateCheckoutSession(context.Background(), guestID, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_1", dto.URL)

	_, err = f.svc.CreateCheckoutSession(context.Background(), hostID, bk.ID())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCreateCheckoutSession_NotPayable(t *testing.T) {
	f := newPaymentFixture()
	guestID := uuid.New()
	bk := pendingBooking(t, uuid.New(), guestID)
	require.NoError(t, bk.TransitionTo(bookingDomain.StatusCancelled, bookingDomain.ActorGuest, guestID))
	f.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)

	_, err := f.svc.CreateCheckoutSession(context.Background(), guestID, bk.ID())
	assert.True(t, domain.HasCode(err, "booking_not_payable"))
	f.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestHandleCheckoutCompleted_IsRepeatable(t *testing.T) {
	f := newPaymentFixture()
	hostID, guestID := uuid.New(), uuid.New()
	lst := approvedListing(hostID, 25000, 4)
	bk := pendingBooking(t, lst.ID(), guestID)

	f.bookings.On("MarkPaid", mock.Anything, bk.ID(), "pi_123").Return(nil)
	f.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)
	f.listings.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)
	f.profiles.On("FindByID", mock.Anything, guestID).
		Return(profileDomain.Reconstruct(guestID, "Awa", "awa@example.com", auth.RoleGuest, time.Now(), time.Now()), nil)
	f.profiles.On("FindByID", mock.Anything, hostID).
		Return(profileDomain.Reconstruct(hostID, "Moussa", "moussa@example.com", auth.RoleHost, time.Now(), time.Now()), nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, "booking.events", mock.Anything).Return(nil)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), bk.ID().String(), "pi_123"))
	}

	f.bookings.AssertNumberOfCalls(t, "MarkPaid", 2)
	// Redelivery sends the confirmation emails again.
	f.notifier.AssertNumberOfCalls(t, "Send", 4)
	f.notifier.AssertCalled(t, "Send", mock.Anything, "reservation_confirmed_guest", "awa@example.com", mock.Anything)
	f.notifier.AssertCalled(t, "Send", mock.Anything, "reservation_confirmed_host", "moussa@example.com", mock.Anything)
}

func TestHandleCheckoutCompleted_Errors(t *testing.T) {
	f := newPaymentFixture()

	err := f.svc.HandleCheckoutCompleted(context.Background(), "", "pi_1")
	assert.ErrorIs(t, err, ErrMissingBookingID)

	err = f.svc.HandleCheckoutCompleted(context.Background(), "not-a-uuid", "pi_1")
	assert.Error(t, err)

	id := uuid.New()
	f.bookings.On("MarkPaid", mock.Anything, id, "pi_1").Return(errors.New("db down"))
	err = f.svc.HandleCheckoutCompleted(context.Background(), id.String(), "pi_1")
	assert.Error(t, err)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCheckoutCompleted_CancelledBookingKeepsStatus(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	f.bookings.On("MarkPaid", mock.Anything, id, "pi_late").Return(bookingDomain.ErrPaidAfterCancellation)

	assert.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), id.String(), "pi_late"))
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCheckoutCompleted_UnknownBookingIsNotFound(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	f.bookings.On("MarkPaid", mock.Anything, id, "pi_2").Return(domain.NewNotFoundError("Booking", id.String()))

	err := f.svc.HandleCheckoutCompleted(context.Background(), id.String(), "pi_2")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestHandleCheckoutCompleted_EmailFailureDoesNotFail(t *testing.T) {
	f := newPaymentFixture()
	id := uuid.New()
	f.bookings.On("MarkPaid", mock.Anything, id, "pi_9").Return(nil)
	f.bookings.On("FindByID", mock.Anything, id).Return(nil, errors.New("db down"))

	assert.NoError(t, f.svc.HandleCheckoutCompleted(context.Background(), id.String(), "pi_9"))
}

func TestHandlePaymentFailed(t *testing.T) {
	f := newPaymentFixture()

	assert.NoError(t, f.svc.HandlePaymentFailed(context.Background(), "", "card_declined"))
	assert.NoError(t, f.svc.HandlePaymentFailed(context.Background(), "garbage", "card_declined"))

	unknown := uuid.New()
	f.bookings.On("MarkPaymentFailed", mock.Anything, unknown).Return(domain.NewNotFoundError("Booking", unknown.String()))
	assert.NoError(t, f.svc.HandlePaymentFailed(context.Background(), unknown.String(), "card_declined"))

	known := uuid.New()
	f.bookings.On("MarkPaymentFailed", mock.Anything, known).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, "booking.events", mock.Anything).Return(nil)
	assert.NoError(t, f.svc.HandlePaymentFailed(context.Background(), known.String(), "card_declined"))

	f.bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNumberOfCalls(t, "PublishEvent", 1)
}

func TestHandleWebhookEvent_IgnoresOtherTypes(t *testing.T) {
	f := newPaymentFixture()
	err := f.svc.HandleWebhookEvent(context.Background(), &payment.WebhookEvent{ID: "evt_1", Type: "customer.created"})
	assert.NoError(t, err)
	f.bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}
