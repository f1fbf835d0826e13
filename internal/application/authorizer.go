package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const serviceName = "service-rental"

// Authorizer re-reads the actor's role from the profile store on every
// privileged call. Token role claims are only used for coarse route gating.
type Authorizer struct {
	profiles profileDomain.ProfileRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(profiles profileDomain.ProfileRepository) *Authorizer {
	return &Authorizer{profiles: profiles}
}

// Require returns the actor's profile if it currently holds one of roles.
func (a *Authorizer) Require(ctx context.Context, actorID uuid.UUID, roles ...auth.Role) (*profileDomain.Profile, error) {
	if actorID == uuid.Nil {
		return nil, domain.NewUnauthorizedError("authentication required")
	}
	p, err := a.profiles.FindByID(ctx, actorID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NewForbiddenError("no profile found for this account")
		}
		return nil, fmt.Errorf("failed to resolve role: %w", err)
	}
	if !p.HasRole(roles...) {
		return nil, domain.NewForbiddenError(fmt.Sprintf("this action requires one of the roles %v", roles))
	}
	return p, nil
}

// IsAdmin reports whether the actor is currently an admin.
func (a *Authorizer) IsAdmin(ctx context.Context, actorID uuid.UUID) (bool, error) {
	_, err := a.Require(ctx, actorID, auth.RoleAdmin)
	switch {
	case err == nil:
		return true, nil
	case domain.IsKind(err, domain.KindForbidden), domain.IsKind(err, domain.KindUnauthorized):
		return false, nil
	}
	return false, err
}
