package profile

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const MaxNameLength = 120

var ErrAlreadyHost = domain.NewConflictError("profile is already a host")

// Profile is a user's marketplace identity. Its ID is the identity provider subject.
type Profile struct {
	id        uuid.UUID
	fullName  string
	email     string
	role      auth.Role
	createdAt time.Time
	updatedAt time.Time
}

// NewProfile creates a guest profile for a newly seen identity.
func NewProfile(id uuid.UUID, fullName, email string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("profile ID is required")
	}
	now := time.Now().UTC()
	p := &Profile{
		id:        id,
		email:     strings.TrimSpace(email),
		role:      auth.RoleGuest,
		createdAt: now,
		updatedAt: now,
	}
	if err := p.Rename(fullName); err != nil {
		return nil, err
	}
	return p, nil
}

// Reconstruct rebuilds a Profile from persistence data (no validation).
func Reconstruct(id uuid.UUID, fullName, email string, role auth.Role, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		id:        id,
		fullName:  fullName,
		email:     email,
		role:      role,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p *Profile) ID() uuid.UUID        { return p.id }
func (p *Profile) FullName() string     { return p.fullName }
func (p *Profile) Email() string        { return p.email }
func (p *Profile) Role() auth.Role      { return p.role }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// Rename sets the display name.
func (p *Profile) Rename(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if utf8.RuneCountInString(fullName) > MaxNameLength {
		return domain.NewValidationError("full name is too long")
	}
	p.fullName = fullName
	p.updatedAt = time.Now().UTC()
	return nil
}

// ChangeEmail sets the address used for booking notifications.
func (p *Profile) ChangeEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.NewValidationError("email is invalid")
	}
	p.email = email
	p.updatedAt = time.Now().UTC()
	return nil
}

// BecomeHost upgrades a guest to host. Admins keep their role.
func (p *Profile) BecomeHost() error {
	switch p.role {
	case auth.RoleHost:
		return ErrAlreadyHost
	case auth.RoleAdmin:
		return nil
	}
	p.role = auth.RoleHost
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetRole assigns any valid role.
func (p *Profile) SetRole(role auth.Role) error {
	if !role.IsValid() {
		return domain.NewValidationError("role must be guest, host or admin")
	}
	p.role = role
	p.updatedAt = time.Now().UTC()
	return nil
}

// HasRole reports whether the profile holds any of roles.
func (p *Profile) HasRole(roles ...auth.Role) bool {
	for _, r := range roles {
		if p.role == r {
			return true
		}
	}
	return false
}
