package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// UpdateProfileRequest is the request DTO for editing one's own profile.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

// SetRoleRequest is an admin's role assignment.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ProfileDTO is the API response representation of a profile.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileService implements profile and role use cases.
type ProfileService struct {
	repo       profileDomain.ProfileRepository
	authorizer *Authorizer
	logger     *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo profileDomain.ProfileRepository, authorizer *Authorizer, logger *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, authorizer: authorizer, logger: logger}
}

// GetMe returns the caller's profile, creating a guest profile on first sight.
func (s *ProfileService) GetMe(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	p, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileDTO(p), nil
}

// UpdateMe edits the caller's name and email.
func (s *ProfileService) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	p, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		if err := p.Rename(*req.FullName); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := p.ChangeEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update profile", zap.Error(err))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return toProfileDTO(p), nil
}

// BecomeHost upgrades the caller from guest to host.
func (s *ProfileService) BecomeHost(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	p, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := p.BecomeHost(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.logger.Info("profile became host", zap.String("user_id", userID.String()))
	return toProfileDTO(p), nil
}

// SetRole assigns a role to another profile. Admin only.
func (s *ProfileService) SetRole(ctx context.Context, adminID, userID uuid.UUID, req SetRoleRequest) (*ProfileDTO, error) {
	if _, err := s.authorizer.Require(ctx, adminID, auth.RoleAdmin); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := p.SetRole(auth.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.logger.Info("role assigned",
		zap.String("user_id", userID.String()),
		zap.String("role", req.Role),
		zap.String("admin_id", adminID.String()),
	)
	return toProfileDTO(p), nil
}

func (s *ProfileService) loadOrCreate(ctx context.Context, userID uuid.UUID) (*profileDomain.Profile, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	p, err = profileDomain.NewProfile(userID, "", "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		// A concurrent first request may have created it.
		if domain.IsKind(err, domain.KindConflict) {
			return s.repo.FindByID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.Info("profile created", zap.String("user_id", userID.String()))
	return p, nil
}

func toProfileDTO(p *profileDomain.Profile) *ProfileDTO {
	return &ProfileDTO{
		ID:        p.ID(),
		FullName:  p.FullName(),
		Email:     p.Email(),
		Role:      string(p.Role()),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}
