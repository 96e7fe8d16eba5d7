package service

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
)

// Roles that hold every permission regardless of the stored set.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

var ErrStaffNotFound = apperr.NotFound("staff user")

// Store loads staff rows; FindByAuthUID returns active users only.
type Store interface {
	FindByAuthUID(ctx context.Context, clientID uuid.UUID, authUID string) (persistence.StaffUser, error)
}

// Profile is the staff record returned by /auth/me.
type Profile struct {
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	ClientID    uuid.UUID `json:"clientId"`
}

// Service resolves staff records and their permissions. It satisfies auth.Authorizer.
type Service interface {
	Me(ctx context.Context, clientID uuid.UUID, authUID string) (Profile, error)
	Authorize(ctx context.Context, clientID uuid.UUID, authUID, permission string) error
}

type service struct {
	store Store
}

func New(store Store) Service {
	if store == nil {
		panic("staff store is required")
	}
	return &service{store: store}
}

func (s *service) load(ctx context.Context, clientID uuid.UUID, authUID string) (persistence.StaffUser, error) {
	if authUID == "" {
		return persistence.StaffUser{}, apperr.ErrUnauthorized
	}
	user, err := s.store.FindByAuthUID(ctx, clientID, authUID)
	if errors.Is(err, persistence.ErrStaffUserNotFound) {
		return persistence.StaffUser{}, ErrStaffNotFound
	}
	return user, err
}

// Me reloads the staff record on every call so role changes apply immediately.
func (s *service) Me(ctx context.Context, clientID uuid.UUID, authUID string) (Profile, error) {
	user, err := s.load(ctx, clientID, authUID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		UserID:      user.UserID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		Permissions: EffectivePermissions(user),
		ClientID:    user.ClientID,
	}, nil
}

func (s *service) Authorize(ctx context.Context, clientID uuid.UUID, authUID, permission string) error {
	user, err := s.load(ctx, clientID, authUID)
	if err != nil {
		if errors.Is(err, ErrStaffNotFound) {
			return apperr.ErrForbidden
		}
		return err
	}
	if !slices.Contains(EffectivePermissions(user), permission) {
		return apperr.ErrForbidden
	}
	return nil
}

// EffectivePermissions expands owner and admin roles to every known permission.
func EffectivePermissions(user persistence.StaffUser) []string {
	if user.Role == RoleOwner || user.Role == RoleAdmin {
		return slices.Clone(platformauth.AllPermissions)
	}
	if user.Permissions == nil {
		return []string{}
	}
	return slices.Clone(user.Permissions)
}

var _ platformauth.Authorizer = (*service)(nil)
