package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

func newListingFixture() (*ListingService, *mockListingRepo, *mockProfileRepo, *mockPublisher) {
	repo, profiles, publisher := new(mockListingRepo), new(mockProfileRepo), new(mockPublisher)
	effects, _ := newTestEffects()
	svc := NewListingService(repo, NewAuthorizer(profiles), publisher, effects, zap.NewNop())
	return svc, repo, profiles, publisher
}

func withRole(profiles *mockProfileRepo, id uuid.UUID, role auth.Role) {
	profiles.On("FindByID", mock.Anything, id).
		Return(profileDomain.Reconstruct(id, "", "", role, time.Now(), time.Now()), nil)
}

func validListingRequest() ListingRequest {
	return ListingRequest{
		Title:         "Case au bord du fleuve",
		City:          "Saint-Louis",
		PricePerNight: 20000,
		MaxGuests:     3,
		Amenities:     []string{"WiFi", "wifi", " Pool "},
	}
}

func TestCreateListing(t *testing.T) {
	svc, repo, profiles, _ := newListingFixture()
	hostID, guestID := uuid.New(), uuid.New()
	withRole(profiles, hostID, auth.RoleHost)
	withRole(profiles, guestID, auth.RoleGuest)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.CreateListing(context.Background(), hostID, validListingRequest())
	require.NoError(t, err)
	assert.Equal(t, "pending_review", dto.Status)
	assert.Equal(t, []string{"pool", "wifi"}, dto.Amenities)

	_, err = svc.CreateListing(context.Background(), guestID, validListingRequest())
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	bad := validListingRequest()
	bad.PricePerNight = 500
	_, err = svc.CreateListing(context.Background(), hostID, bad)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestModerateListing(t *testing.T) {
	svc, repo, profiles, publisher := newListingFixture()
	adminID, hostID := uuid.New(), uuid.New()
	withRole(profiles, adminID, auth.RoleAdmin)
	withRole(profiles, hostID, auth.RoleHost)

	lst, err := listingDomain.NewListing(hostID, listingDomain.Details{
		Title: "Studio Plateau", City: "Dakar", PricePerNight: 15000, MaxGuests: 2,
	})
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)
	repo.On("Update", mock.Anything, lst).Return(nil)
	publisher.On("PublishEvent", mock.Anything, "listing.events", mock.Anything).Return(nil)

	_, err = svc.ModerateListing(context.Background(), hostID, lst.ID(), ModerateRequest{Decision: DecisionApprove})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	_, err = svc.ModerateListing(context.Background(), adminID, lst.ID(), ModerateRequest{Decision: "maybe"})
	assert.ErrorIs(t, err, listingDomain.ErrUnknownDecision)

	dto, err := svc.ModerateListing(context.Background(), adminID, lst.ID(), ModerateRequest{Decision: DecisionReject, Reason: "photos missing"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", dto.Status)
	assert.Equal(t, "photos missing", dto.RejectionReason)

	dto, err = svc.ModerateListing(context.Background(), adminID, lst.ID(), ModerateRequest{Decision: DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, "approved", dto.Status)
	assert.Empty(t, dto.RejectionReason)
	publisher.AssertNumberOfCalls(t, "PublishEvent", 2)
}

func TestGetListing_Visibility(t *testing.T) {
	svc, repo, _, _ := newListingFixture()
	hostID := uuid.New()
	lst, err := listingDomain.NewListing(hostID, listingDomain.Details{
		Title: "Studio Plateau", City: "Dakar", PricePerNight: 15000, MaxGuests: 2,
	})
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)

	_, err = svc.GetListing(context.Background(), uuid.Nil, lst.ID())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	dto, err := svc.GetListing(context.Background(), hostID, lst.ID())
	require.NoError(t, err)
	assert.Equal(t, lst.ID(), dto.ID)
}

func TestSnoozeListing(t *testing.T) {
	svc, repo, _, _ := newListingFixture()
	hostID := uuid.New()
	lst := approvedListing(hostID, 25000, 4)
	repo.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)
	repo.On("Update", mock.Anything, lst).Return(nil)

	_, err := svc.SnoozeListing(context.Background(), uuid.New(), lst.ID())
	assert.ErrorIs(t, err, listingDomain.ErrNotOwner)

	dto, err := svc.SnoozeListing(context.Background(), hostID, lst.ID())
	require.NoError(t, err)
	assert.Equal(t, "snoozed", dto.Status)

	dto, err = svc.UnsnoozeListing(context.Background(), hostID, lst.ID())
	require.NoError(t, err)
	assert.Equal(t, "approved", dto.Status)
}

func TestUploadListingImage(t *testing.T) {
	repo, storage := new(mockListingRepo), new(mockImageStorage)
	svc := NewImageService(repo, storage, zap.NewNop())
	hostID := uuid.New()
	lst := approvedListing(hostID, 25000, 4)
	body := strings.NewReader("fake-png")

	repo.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)
	repo.On("Update", mock.Anything, lst).Return(nil)
	storage.On("Upload", mock.Anything, lst.ID(), "pool.PNG", "image/png", body, int64(8)).
		Return("https://cdn.example/listings/x.png", nil)

	dto, err := svc.UploadListingImage(context.Background(), hostID, lst.ID(), UploadImageRequest{
		FileName: "pool.PNG", ContentType: "image/png", Size: 8, Body: body,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example/listings/x.png"}, dto.Images)

	_, err = svc.UploadListingImage(context.Background(), hostID, lst.ID(), UploadImageRequest{
		FileName: "notes.pdf", ContentType: "application/pdf", Size: 8, Body: body,
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.UploadListingImage(context.Background(), uuid.New(), lst.ID(), UploadImageRequest{
		FileName: "pool.png", ContentType: "image/png", Size: 8, Body: body,
	})
	assert.ErrorIs(t, err, listingDomain.ErrNotOwner)
	storage.AssertNumberOfCalls(t, "Upload", 1)
}
