package application

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	conversationDomain "github.com/teranga-stays/service-rental/internal/domain/conversation"
	favoriteDomain "github.com/teranga-stays/service-rental/internal/domain/favorite"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	reviewDomain "github.com/teranga-stays/service-rental/internal/domain/review"
	"github.com/teranga-stays/service-rental/internal/notification"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/kafka"
	"github.com/teranga-stays/service-rental/internal/platform/metrics"
)

// --- Bookings ---

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) HasConflict(ctx context.Context, listingID uuid.UUID, stay bookingDomain.DateRange) (bool, error) {
	args := m.Called(ctx, listingID, stay)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	args := m.Called(ctx, id)
	if bk, ok := args.Get(0).(*bookingDomain.Booking); ok {
		return bk, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	args := m.Called(ctx, guestID, page, limit)
	return args.Get(0).([]*bookingDomain.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingRepo) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	args := m.Called(ctx, hostID, page, limit)
	return args.Get(0).([]*bookingDomain.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingRepo) FindConfirmedByHostID(ctx context.Context, hostID uuid.UUID) ([]*bookingDomain.Booking, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]*bookingDomain.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]*bookingDomain.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockBookingRepo) SaveIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	return m.Called(ctx, bk).Error(0)
}

func (m *mockBookingRepo) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return m.Called(ctx, bk).Error(0)
}

func (m *mockBookingRepo) MarkPaid(ctx context.Context, id uuid.UUID, ref string) error {
	return m.Called(ctx, id, ref).Error(0)
}

func (m *mockBookingRepo) MarkPaymentFailed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// --- Listings ---

type mockListingRepo struct{ mock.Mock }

func (m *mockListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*listingDomain.Listing); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockListingRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*listingDomain.Listing, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*listingDomain.Listing), args.Error(1)
}

func (m *mockListingRepo) FindByStatus(ctx context.Context, status listingDomain.ListingStatus, page, limit int) ([]*listingDomain.Listing, int64, error) {
	args := m.Called(ctx, status, page, limit)
	return args.Get(0).([]*listingDomain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *mockListingRepo) Search(ctx context.Context, filter listingDomain.SearchFilter, page, limit int) ([]*listingDomain.Listing, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	return args.Get(0).([]*listingDomain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *mockListingRepo) Save(ctx context.Context, l *listingDomain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListingRepo) Update(ctx context.Context, l *listingDomain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListingRepo) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

// --- Profiles ---

type mockProfileRepo struct{ mock.Mock }

func (m *mockProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profileDomain.Profile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*profileDomain.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*profileDomain.Profile, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*profileDomain.Profile), args.Error(1)
}

func (m *mockProfileRepo) Save(ctx context.Context, p *profileDomain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProfileRepo) Update(ctx context.Context, p *profileDomain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

// --- Conversations ---

type mockConversationRepo struct{ mock.Mock }

func (m *mockConversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*conversationDomain.Conversation, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*conversationDomain.Conversation); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockConversationRepo) FindByParticipants(ctx context.Context, listingID, guestID, hostID uuid.UUID) (*conversationDomain.Conversation, error) {
	args := m.Called(ctx, listingID, guestID, hostID)
	if c, ok := args.Get(0).(*conversationDomain.Conversation); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockConversationRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*conversationDomain.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*conversationDomain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) Save(ctx context.Context, c *conversationDomain.Conversation) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockConversationRepo) AddMessage(ctx context.Context, c *conversationDomain.Conversation, msg *conversationDomain.Message) error {
	return m.Called(ctx, c, msg).Error(0)
}

func (m *mockConversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]*conversationDomain.Message, int64, error) {
	args := m.Called(ctx, conversationID, page, limit)
	return args.Get(0).([]*conversationDomain.Message), args.Get(1).(int64), args.Error(2)
}

// --- Reviews ---

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) Save(ctx context.Context, r *reviewDomain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReviewRepo) FindByListingID(ctx context.Context, listingID uuid.UUID, page, limit int) ([]*reviewDomain.Review, int64, error) {
	args := m.Called(ctx, listingID, page, limit)
	return args.Get(0).([]*reviewDomain.Review), args.Get(1).(int64), args.Error(2)
}

func (m *mockReviewRepo) SummaryForListing(ctx context.Context, listingID uuid.UUID) (reviewDomain.Summary, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(reviewDomain.Summary), args.Error(1)
}

// --- Favorites ---

// memFavoriteRepo keeps favorites in a map so toggle sequences can be observed.
type memFavoriteRepo struct {
	set map[[2]uuid.UUID]bool
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{set: make(map[[2]uuid.UUID]bool)}
}

func (r *memFavoriteRepo) Exists(_ context.Context, userID, listingID uuid.UUID) (bool, error) {
	return r.set[[2]uuid.UUID{userID, listingID}], nil
}

func (r *memFavoriteRepo) Add(_ context.Context, userID, listingID uuid.UUID) error {
	r.set[[2]uuid.UUID{userID, listingID}] = true
	return nil
}

func (r *memFavoriteRepo) Remove(_ context.Context, userID, listingID uuid.UUID) error {
	delete(r.set, [2]uuid.UUID{userID, listingID})
	return nil
}

func (r *memFavoriteRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]favoriteDomain.Favorite, error) {
	var out []favoriteDomain.Favorite
	for k := range r.set {
		if k[0] == userID {
			out = append(out, favoriteDomain.Favorite{UserID: k[0], ListingID: k[1]})
		}
	}
	return out, nil
}

// --- Ports ---

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, template, to string, data notification.BookingEmail) error {
	return m.Called(ctx, template, to, data).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	return m.Called(ctx, topic, event).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if s, ok := args.Get(0).(*payment.CheckoutSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockImageStorage struct{ mock.Mock }

func (m *mockImageStorage) Upload(ctx context.Context, listingID uuid.UUID, fileName, contentType string, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, listingID, fileName, contentType, r, size)
	return args.String(0), args.Error(1)
}

// --- Helpers ---

func newTestEffects() (*EffectRunner, *metrics.Metrics) {
	m := metrics.New("test")
	return NewEffectRunner(zap.NewNop(), m, 0), m
}

func approvedListing(ownerID uuid.UUID, pricePerNight int64, maxGuests int) *listingDomain.Listing {
	l, err := listingDomain.NewListing(ownerID, listingDomain.Details{
		Title:         "Villa Saly",
		City:          "Saly",
		PricePerNight: pricePerNight,
		MaxGuests:     maxGuests,
	})
	if err != nil {
		panic(err)
	}
	if err := l.Approve(); err != nil {
		panic(err)
	}
	return l
}
