package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	profileDomain "github.com/teranga-stays/service-rental/internal/domain/profile"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// ProfileModel is the GORM model for the profiles table.
type ProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName  string    `gorm:"type:varchar(120)"`
	Email     string    `gorm:"type:varchar(255);index"`
	Role      string    `gorm:"type:varchar(20);not null;default:'guest'"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (ProfileModel) TableName() string { return "profiles" }

// GormProfileRepository implements ProfileRepository using GORM.
type GormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profileDomain.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Profile", id.String())
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return toProfileDomain(&model), nil
}

func (r *GormProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*profileDomain.Profile, error) {
	if len(ids) == 0 {
		return []*profileDomain.Profile{}, nil
	}
	var models []ProfileModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}
	profiles := make([]*profileDomain.Profile, len(models))
	for i := range models {
		profiles[i] = toProfileDomain(&models[i])
	}
	return profiles, nil
}

func (r *GormProfileRepository) Save(ctx context.Context, p *profileDomain.Profile) error {
	if err := r.db.WithContext(ctx).Create(toProfileModel(p)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("profile already exists")
		}
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *GormProfileRepository) Update(ctx context.Context, p *profileDomain.Profile) error {
	model := toProfileModel(p)
	result := r.db.WithContext(ctx).
		Model(&ProfileModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"full_name":  model.FullName,
			"email":      model.Email,
			"role":       model.Role,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Profile", model.ID.String())
	}
	return nil
}

// --- Conversions ---

func toProfileModel(p *profileDomain.Profile) *ProfileModel {
	return &ProfileModel{
		ID:        p.ID(),
		FullName:  p.FullName(),
		Email:     p.Email(),
		Role:      string(p.Role()),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toProfileDomain(m *ProfileModel) *profileDomain.Profile {
	return profileDomain.Reconstruct(
		m.ID,
		m.FullName, m.Email,
		auth.ParseRole(m.Role),
		m.CreatedAt, m.UpdatedAt,
	)
}
