package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// Profile fields a user may edit one at a time.
const (
	FieldAddress     = "address"
	FieldPhoneNumber = "phone_number"
	FieldBio         = "bio"
)

// Field status labels shown next to each profile field.
const (
	StatusVerified    = "Verified"
	StatusNotVerified = "Not Verified"
)

// FieldStatus labels a profile value as verified when it is non-blank.
func FieldStatus(value string) string {
	if strings.TrimSpace(value) != "" {
		return StatusVerified
	}
	return StatusNotVerified
}

type profileService struct {
	backend     ports.Backend
	store       ports.SessionStore
	guard       *SessionGuard
	storageBase string
	log         zerolog.Logger
}

// NewProfileService returns a ProfileService implementation.
func NewProfileService(backend ports.Backend, store ports.SessionStore, guard *SessionGuard, storageBase string, log zerolog.Logger) ports.ProfileService {
	return &profileService{
		backend:     backend,
		store:       store,
		guard:       guard,
		storageBase: storageBase,
		log:         log,
	}
}

// Profile is read from the session; it never calls the backend.
func (s *profileService) Profile(ctx context.Context) (*domain.Session, error) {
	sess, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return nil, domain.ErrUnauthenticated
	}
	return sess, err
}

// UpdateField submits one editable field and mirrors the returned user into
// the session, which broadcasts the change.
func (s *profileService) UpdateField(ctx context.Context, field, value string) (*domain.Session, error) {
	switch field {
	case FieldAddress, FieldPhoneNumber, FieldBio:
	default:
		return nil, domain.NewValidationError(field, "field cannot be edited")
	}

	var updated *domain.User
	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		u, err := s.backend.UpdateProfile(ctx, sess.Token, map[string]string{field: value})
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateProfileFields(ctx, *updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.log.Info().Str("field", field).Msg("profile field updated")
	return s.Profile(ctx)
}

// PublicProfile fetches another user's public page data.
func (s *profileService) PublicProfile(ctx context.Context, username string) (*ports.PublicProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}
	u, err := s.backend.GetPublicUser(ctx, username)
	if err != nil {
		return nil, err
	}
	p := &ports.PublicProfile{
		Username:  u.Username,
		Name:      u.Name,
		Avatar:    domain.ResolveMediaURL(s.storageBase, u.ProfilePicture, domain.DefaultAvatar),
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		Items:     u.Items,
	}
	if p.Username == "" {
		p.Username = username
	}
	if p.Name == "" {
		p.Name = p.Username
	}
	if p.Items == nil {
		p.Items = []domain.Product{}
	}
	return p, nil
}
