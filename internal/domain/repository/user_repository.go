// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"harbor/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserUpdate carries a partial profile change. Nil fields are left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	VesselIMO    *string
	VesselMMSI   *string
	ProfilePhoto *string
	Role         *entity.Role
	Ports        *[]entity.Port
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.VesselIMO == nil &&
		u.VesselMMSI == nil && u.ProfilePhoto == nil && u.Role == nil && u.Ports == nil
}

// Apply writes the set fields onto user.
func (u UserUpdate) Apply(user *entity.User) {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.VesselIMO != nil {
		user.VesselIMO = *u.VesselIMO
	}
	if u.VesselMMSI != nil {
		user.VesselMMSI = *u.VesselMMSI
	}
	if u.ProfilePhoto != nil {
		user.ProfilePhoto = *u.ProfilePhoto
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.Ports != nil {
		user.Ports = append([]entity.Port(nil), (*u.Ports)...)
	}
}

// UserRepository defines the standard operations for user profile persistence.
type UserRepository interface {
	// FindByID retrieves a single profile by the user's UID.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Create persists a new profile keyed by user.ID.
	Create(ctx context.Context, user *entity.User) error

	// Update applies a partial change and returns the stored profile.
	Update(ctx context.Context, id string, update UserUpdate) (*entity.User, error)

	// AddFCMToken registers a push token for the user.
	AddFCMToken(ctx context.Context, id, token string) error

	// RemoveFCMTokens drops tokens the push provider reported as invalid.
	RemoveFCMTokens(ctx context.Context, id string, tokens []string) error
}
