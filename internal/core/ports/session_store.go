package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
)

// SessionStore is the single source of truth for who is logged in.
// Components depend on this interface, never on the storage mechanism.
type SessionStore interface {
	// Load returns domain.ErrNoSession when nobody is logged in.
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
	// ApplyRefresh stores a renewed token and, when user is non-nil, the
	// user's profile fields.
	ApplyRefresh(ctx context.Context, token string, user *domain.User) error
	// UpdateProfileFields rewrites the profile keys after a profile edit,
	// leaving token and user id untouched.
	UpdateProfileFields(ctx context.Context, user domain.User) error
	Subscribe(fn func()) (unsubscribe func())
}
