package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/contracts"
	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/notification"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
	"github.com/teranga-stays/service-rental/internal/platform/metrics"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ListingID  uuid.UUID `json:"listing_id" binding:"required"`
	CheckIn    string    `json:"check_in" binding:"required"`
	CheckOut   string    `json:"check_out" binding:"required"`
	GuestCount int       `json:"guest_count" binding:"required"`
}

// UpdateStatusRequest asks for a booking status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListingSummaryDTO is the slice of listing data embedded in booking responses.
type ListingSummaryDTO struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	City    string    `json:"city"`
	OwnerID uuid.UUID `json:"owner_id"`
	Image   string    `json:"image,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID                `json:"id"`
	BookingNumber    string                   `json:"booking_number"`
	ListingID        uuid.UUID                `json:"listing_id"`
	GuestID          uuid.UUID                `json:"guest_id"`
	CheckIn          string                   `json:"check_in"`
	CheckOut         string                   `json:"check_out"`
	GuestCount       int                      `json:"guest_count"`
	Price            bookingDomain.PriceQuote `json:"price"`
	TotalPrice       int64                    `json:"total_price"`
	Currency         string                   `json:"currency"`
	Status           string                   `json:"status"`
	PaymentStatus    string                   `json:"payment_status"`
	PaymentReference string                   `json:"payment_reference,omitempty"`
	ConfirmedAt      *time.Time               `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time               `json:"cancelled_at,omitempty"`
	Listing          *ListingSummaryDTO       `json:"listing,omitempty"`
	Version          int64                    `json:"version"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// AvailabilityDTO answers a date availability query.
type AvailabilityDTO struct {
	ListingID uuid.UUID `json:"listing_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Available bool      `json:"available"`
}

// EarningLineDTO is one confirmed booking in a host's earnings.
type EarningLineDTO struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	ListingID     uuid.UUID `json:"listing_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Total         int64     `json:"total"`
	Commission    int64     `json:"commission"`
	Payout        int64     `json:"payout"`
}

// EarningsDTO sums a host's confirmed bookings.
type EarningsDTO struct {
	Bookings        []EarningLineDTO `json:"bookings"`
	TotalRevenue    int64            `json:"total_revenue"`
	TotalCommission int64            `json:"total_commission"`
	TotalPayout     int64            `json:"total_payout"`
	Currency        string           `json:"currency"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingServiceDeps groups the collaborators of BookingService.
type BookingServiceDeps struct {
	Bookings      bookingDomain.BookingRepository
	Listings      listingDomain.ListingRepository
	Profiles      profileDomain.ProfileRepository
	Pricing       bookingDomain.PricingStrategy
	Conversations *ConversationService
	Notifier      Notifier
	Authorizer    *Authorizer
	Publisher     EventPublisher
	Effects       *EffectRunner
	Metrics       *metrics.Metrics
	PublicBaseURL string
	Logger        *zap.Logger
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo          bookingDomain.BookingRepository
	listings      listingDomain.ListingRepository
	profiles      profileDomain.ProfileRepository
	availability  *bookingDomain.AvailabilityChecker
	pricing       bookingDomain.PricingStrategy
	conversations *ConversationService
	notifier      Notifier
	authz         *Authorizer
	publisher     EventPublisher
	effects       *EffectRunner
	metrics       *metrics.Metrics
	baseURL       string
	logger        *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(d BookingServiceDeps) *BookingService {
	return &BookingService{
		repo:          d.Bookings,
		listings:      d.Listings,
		profiles:      d.Profiles,
		availability:  bookingDomain.NewAvailabilityChecker(d.Bookings),
		pricing:       d.Pricing,
		conversations: d.Conversations,
		notifier:      d.Notifier,
		authz:         d.Authorizer,
		publisher:     d.Publisher,
		effects:       d.Effects,
		metrics:       d.Metrics,
		baseURL:       d.PublicBaseURL,
		logger:        d.Logger,
	}
}

// CreateBooking validates the request, checks availability, prices the stay
// and persists a pending booking. Conversation, emails and the event run
// afterwards as best-effort side effects.
func (s *BookingService) CreateBooking(ctx context.Context, guestID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	lst, err := s.bookableListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	if lst.IsOwnedBy(guestID) {
		return nil, bookingDomain.ErrSelfBooking
	}

	if req.GuestCount > lst.MaxGuests() {
		return nil, bookingDomain.ErrTooManyGuests
	}
	if req.GuestCount < 1 {
		return nil, bookingDomain.ErrInvalidGuestCount
	}

	stay, err := bookingDomain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	if err := s.availability.EnsureAvailable(ctx, lst.ID(), stay); err != nil {
		if domain.HasCode(err, "dates_unavailable") {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	quote, err := s.pricing.Quote(lst.PricePerNight(), stay)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(lst.ID(), guestID, stay, req.GuestCount, quote, domain.CurrencyXOF)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveIfAvailable(ctx, bk); err != nil {
		if domain.HasCode(err, "dates_unavailable") {
			s.metrics.BookingConflicts.Inc()
			return nil, err
		}
		if _, ok := domain.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	s.metrics.BookingsCreated.Inc()

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("listing_id", lst.ID().String()),
		zap.Int("nights", bk.Nights()),
		zap.Int64("total", bk.TotalPrice()),
	)

	s.effects.Run(ctx, s.creationEffects(bk, lst)...)

	result := toBookingDTO(bk, lst)
	return &result, nil
}

func (s *BookingService) creationEffects(bk *bookingDomain.Booking, lst *listingDomain.Listing) []SideEffect {
	guestID, hostID := bk.GuestID(), lst.OwnerID()
	return []SideEffect{
		{
			Name: "ensure_conversation",
			Run: func(ctx context.Context) error {
				_, err := s.conversations.EnsureConversation(ctx, lst.ID(), guestID, hostID)
				return err
			},
		},
		bookingEmailEffect(s.profiles, s.notifier, notification.ReservationPendingGuest, guestID, bk, lst, s.baseURL),
		bookingEmailEffect(s.profiles, s.notifier, notification.ReservationPendingHost, hostID, bk, lst, s.baseURL),
		publishEffect(s.publisher, contracts.TopicBookingEvents, contracts.BookingRequested, bk.ID().String(),
			contracts.BookingRequestedEvent{
				BookingID:     bk.ID(),
				BookingNumber: bk.BookingNumber(),
				ListingID:     lst.ID(),
				GuestID:       guestID,
				HostID:        hostID,
				CheckIn:       bk.CheckIn().Format(bookingDomain.DateLayout),
				CheckOut:      bk.CheckOut().Format(bookingDomain.DateLayout),
				Nights:        bk.Nights(),
				TotalPrice:    bk.TotalPrice(),
				Currency:      bk.Currency(),
				OccurredAt:    time.Now().UTC(),
			}),
	}
}

// UpdateStatus moves a booking to target on behalf of actorID. The actor's
// relation to the booking is resolved from freshly loaded data.
func (s *BookingService) UpdateStatus(ctx context.Context, actorID, bookingID uuid.UUID, target string) (*BookingDTO, error) {
	targetStatus, err := bookingDomain.ParseBookingStatus(target)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	lst, err := s.listings.FindByID(ctx, bk.ListingID())
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	var actor bookingDomain.Actor
	switch {
	case lst != nil && lst.IsOwnedBy(actorID):
		actor = bookingDomain.ActorHost
	case bk.IsGuest(actorID):
		actor = bookingDomain.ActorGuest
	default:
		return nil, bookingDomain.ErrNotParticipant
	}

	if err := bk.TransitionTo(targetStatus, actor, actorID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}
	s.metrics.BookingTransitions.WithLabelValues(string(targetStatus), string(actor)).Inc()

	s.logger.Info("booking status updated",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", string(targetStatus)),
		zap.String("actor", string(actor)),
	)

	switch targetStatus {
	case bookingDomain.StatusConfirmed:
		s.effects.Run(ctx, publishEffect(s.publisher, contracts.TopicBookingEvents, contracts.BookingConfirmed, bk.ID().String(),
			contracts.BookingConfirmedEvent{
				BookingID:     bk.ID(),
				BookingNumber: bk.BookingNumber(),
				ListingID:     bk.ListingID(),
				GuestID:       bk.GuestID(),
				ConfirmedBy:   string(actor),
				OccurredAt:    time.Now().UTC(),
			}))
	case bookingDomain.StatusCancelled:
		s.effects.Run(ctx, publishEffect(s.publisher, contracts.TopicBookingEvents, contracts.BookingCancelled, bk.ID().String(),
			contracts.BookingCancelledEvent{
				BookingID:     bk.ID(),
				BookingNumber: bk.BookingNumber(),
				ListingID:     bk.ListingID(),
				CancelledBy:   actorID,
				ActorRole:     string(actor),
				OccurredAt:    time.Now().UTC(),
			}))
	}

	result := toBookingDTO(bk, lst)
	return &result, nil
}

// QuotePrice prices a stay on an approved listing without booking it.
func (s *BookingService) QuotePrice(ctx context.Context, listingID uuid.UUID, checkIn, checkOut string) (*bookingDomain.PriceQuote, error) {
	lst, err := s.bookableListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	stay, err := bookingDomain.ParseDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.Quote(lst.PricePerNight(), stay)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CheckAvailability reports whether an approved listing is free for the range.
func (s *BookingService) CheckAvailability(ctx context.Context, listingID uuid.UUID, checkIn, checkOut string) (*AvailabilityDTO, error) {
	if _, err := s.bookableListing(ctx, listingID); err != nil {
		return nil, err
	}
	stay, err := bookingDomain.ParseDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	conflict, err := s.availability.HasConflict(ctx, listingID, stay)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		ListingID: listingID,
		CheckIn:   stay.CheckIn.Format(bookingDomain.DateLayout),
		CheckOut:  stay.CheckOut.Format(bookingDomain.DateLayout),
		Available: !conflict,
	}, nil
}

// GetBooking returns a booking to its guest, the listing's host or an admin.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	lst, err := s.listings.FindByID(ctx, bk.ListingID())
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	if !bk.IsGuest(actorID) && (lst == nil || !lst.IsOwnedBy(actorID)) {
		isAdmin, err := s.authz.IsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, domain.NewNotFoundError("Booking", bookingID.String())
		}
	}

	result := toBookingDTO(bk, lst)
	return &result, nil
}

// ListGuestBookings retrieves paginated bookings made by a guest.
func (s *BookingService) ListGuestBookings(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(s.toBookingDTOs(ctx, bookings), total, page, limit)
	return &result, nil
}

// ListHostBookings retrieves paginated bookings on the host's listings.
func (s *BookingService) ListHostBookings(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByHostID(ctx, hostID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(s.toBookingDTOs(ctx, bookings), total, page, limit)
	return &result, nil
}

// GetHostEarnings sums the host's confirmed bookings. Commission is taken
// from each booking total.
func (s *BookingService) GetHostEarnings(ctx context.Context, hostID uuid.UUID) (*EarningsDTO, error) {
	if _, err := s.authz.Require(ctx, hostID, auth.RoleHost, auth.RoleAdmin); err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindConfirmedByHostID(ctx, hostID)
	if err != nil {
		return nil, err
	}

	out := &EarningsDTO{Bookings: make([]EarningLineDTO, 0, len(bookings)), Currency: domain.CurrencyXOF}
	for _, bk := range bookings {
		p := bookingDomain.HostPayout(bk.TotalPrice())
		out.Bookings = append(out.Bookings, EarningLineDTO{
			BookingID:     bk.ID(),
			BookingNumber: bk.BookingNumber(),
			ListingID:     bk.ListingID(),
			CheckIn:       bk.CheckIn().Format(bookingDomain.DateLayout),
			CheckOut:      bk.CheckOut().Format(bookingDomain.DateLayout),
			Total:         p.Total,
			Commission:    p.Commission,
			Payout:        p.Payout,
		})
		out.TotalRevenue += p.Total
		out.TotalCommission += p.Commission
		out.TotalPayout += p.Payout
	}
	return out, nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, adminID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	if _, err := s.authz.Require(ctx, adminID, auth.RoleAdmin); err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.toBookingDTOs(ctx, bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context, adminID uuid.UUID) (*BookingStatsDTO, error) {
	if _, err := s.authz.Require(ctx, adminID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) bookableListing(ctx context.Context, listingID uuid.UUID) (*listingDomain.Listing, error) {
	lst, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, bookingDomain.ErrListingUnavailable
		}
		return nil, err
	}
	if !lst.IsBookable() {
		return nil, bookingDomain.ErrListingUnavailable
	}
	return lst, nil
}

// toBookingDTOs joins listing summaries where the listing still exists.
func (s *BookingService) toBookingDTOs(ctx context.Context, bookings []*bookingDomain.Booking) []BookingDTO {
	cache := make(map[uuid.UUID]*listingDomain.Listing)
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		lst, seen := cache[bk.ListingID()]
		if !seen {
			found, err := s.listings.FindByID(ctx, bk.ListingID())
			if err != nil && !domain.IsKind(err, domain.KindNotFound) {
				s.logger.Warn("failed to load listing for booking list",
					zap.String("listing_id", bk.ListingID().String()),
					zap.Error(err),
				)
			}
			lst = found
			cache[bk.ListingID()] = lst
		}
		dtos[i] = toBookingDTO(bk, lst)
	}
	return dtos
}

func toBookingDTO(bk *bookingDomain.Booking, lst *listingDomain.Listing) BookingDTO {
	dto := BookingDTO{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		ListingID:        bk.ListingID(),
		GuestID:          bk.GuestID(),
		CheckIn:          bk.CheckIn().Format(bookingDomain.DateLayout),
		CheckOut:         bk.CheckOut().Format(bookingDomain.DateLayout),
		GuestCount:       bk.GuestCount(),
		Price:            bk.Price(),
		TotalPrice:       bk.TotalPrice(),
		Currency:         bk.Currency(),
		Status:           string(bk.Status()),
		PaymentStatus:    string(bk.PaymentStatus()),
		PaymentReference: bk.PaymentReference(),
		ConfirmedAt:      bk.ConfirmedAt(),
		CancelledAt:      bk.CancelledAt(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
	if lst != nil {
		dto.Listing = toListingSummary(lst)
	}
	return dto
}

func toListingSummary(lst *listingDomain.Listing) *ListingSummaryDTO {
	summary := &ListingSummaryDTO{
		ID:      lst.ID(),
		Title:   lst.Title(),
		City:    lst.City(),
		OwnerID: lst.OwnerID(),
	}
	if images := lst.Images(); len(images) > 0 {
		summary.Image = images[0]
	}
	return summary
}

// bookingEmailEffect loads the recipient's profile and sends one templated email.
func bookingEmailEffect(
	profiles profileDomain.ProfileRepository,
	notifier Notifier,
	template string,
	recipientID uuid.UUID,
	bk *bookingDomain.Booking,
	lst *listingDomain.Listing,
	baseURL string,
) SideEffect {
	return SideEffect{
		Name: "email:" + template,
		Run: func(ctx context.Context) error {
			recipient, err := profiles.FindByID(ctx, recipientID)
			if err != nil {
				return fmt.Errorf("failed to load recipient: %w", err)
			}
			return notifier.Send(ctx, template, recipient.Email(), bookingEmailData(recipient, bk, lst, baseURL))
		},
	}
}

func bookingEmailData(recipient *profileDomain.Profile, bk *bookingDomain.Booking, lst *listingDomain.Listing, baseURL string) notification.BookingEmail {
	data := notification.BookingEmail{
		RecipientName: recipient.FullName(),
		BookingNumber: bk.BookingNumber(),
		CheckIn:       bk.CheckIn().Format(bookingDomain.DateLayout),
		CheckOut:      bk.CheckOut().Format(bookingDomain.DateLayout),
		Nights:        bk.Nights(),
		GuestCount:    bk.GuestCount(),
		Total:         bk.TotalPrice(),
		Currency:      bk.Currency(),
		BookingURL:    fmt.Sprintf("%s/bookings/%s", baseURL, bk.ID()),
	}
	if lst != nil {
		data.ListingTitle = lst.Title()
		data.City = lst.City()
	}
	return data
}
