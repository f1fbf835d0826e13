package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

func TestFavoriteToggle_RoundTrip(t *testing.T) {
	listings := new(mockListingRepo)
	favorites := newMemFavoriteRepo()
	svc := NewFavoriteService(favorites, listings, zap.NewNop())
	userID := uuid.New()
	lst := approvedListing(uuid.New(), 25000, 4)
	listings.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)

	got, err := svc.Toggle(context.Background(), userID, lst.ID())
	require.NoError(t, err)
	assert.True(t, got.Favorited)

	favs, err := svc.ListFavorites(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Villa Saly", favs[0].Listing.Title)

	got, err = svc.Toggle(context.Background(), userID, lst.ID())
	require.NoError(t, err)
	assert.False(t, got.Favorited)

	favs, err = svc.ListFavorites(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestFavoriteToggle_HiddenListing(t *testing.T) {
	listings := new(mockListingRepo)
	svc := NewFavoriteService(newMemFavoriteRepo(), listings, zap.NewNop())
	hostID := uuid.New()
	lst := approvedListing(hostID, 25000, 4)
	require.NoError(t, lst.Snooze(hostID))
	listings.On("FindByID", mock.Anything, lst.ID()).Return(lst, nil)

	_, err := svc.Toggle(context.Background(), uuid.New(), lst.ID())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
