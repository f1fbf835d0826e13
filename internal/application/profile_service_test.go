package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

func TestGetMe_CreatesGuestProfile(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, NewAuthorizer(repo), zap.NewNop())
	userID := uuid.New()

	repo.On("FindByID", mock.Anything, userID).Return(nil, domain.NewNotFoundError("Profile", userID.String()))
	repo.On("Save", mock.Anything, mock.AnythingOfType("*profile.Profile")).Return(nil)

	dto, err := svc.GetMe(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "guest", dto.Role)
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestBecomeHost(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, NewAuthorizer(repo), zap.NewNop())
	userID := uuid.New()
	p := profileDomain.Reconstruct(userID, "Awa", "awa@example.com", auth.RoleGuest, time.Now(), time.Now())

	repo.On("FindByID", mock.Anything, userID).Return(p, nil)
	repo.On("Update", mock.Anything, p).Return(nil)

	dto, err := svc.BecomeHost(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "host", dto.Role)

	_, err = svc.BecomeHost(context.Background(), userID)
	assert.ErrorIs(t, err, profileDomain.ErrAlreadyHost)
}

func TestSetRole_RequiresCurrentAdmin(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, NewAuthorizer(repo), zap.NewNop())
	adminID, userID := uuid.New(), uuid.New()
	admin := profileDomain.Reconstruct(adminID, "Root", "", auth.RoleAdmin, time.Now(), time.Now())
	user := profileDomain.Reconstruct(userID, "Awa", "", auth.RoleGuest, time.Now(), time.Now())

	repo.On("FindByID", mock.Anything, adminID).Return(admin, nil)
	repo.On("FindByID", mock.Anything, userID).Return(user, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.SetRole(context.Background(), adminID, userID, SetRoleRequest{Role: "host"})
	require.NoError(t, err)
	assert.Equal(t, "host", dto.Role)

	_, err = svc.SetRole(context.Background(), adminID, userID, SetRoleRequest{Role: "superuser"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// Demoted admins lose access immediately, whatever their token says.
	require.NoError(t, admin.SetRole(auth.RoleGuest))
	_, err = svc.SetRole(context.Background(), adminID, userID, SetRoleRequest{Role: "admin"})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}
