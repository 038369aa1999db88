package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// Storage keys. These names are shared with other clients of the same
// storage and must not change.
const (
	KeyToken       = "token"
	KeyUserID      = "id_user"
	KeyName        = "name"
	KeyEmail       = "email"
	KeyAvatar      = "avatar"
	KeyAddress     = "address"
	KeyPhoneNumber = "phone_number"
	KeyBio         = "bio"
	KeyCreatedAt   = "created_at"
	KeyRole        = "role"
)

var sessionKeys = []string{
	KeyToken, KeyUserID, KeyName, KeyEmail, KeyAvatar,
	KeyAddress, KeyPhoneNumber, KeyBio, KeyCreatedAt, KeyRole,
}

// SessionStore persists the session one field per key and broadcasts a
// change after every mutation. Instances hold no session state in memory;
// two stores over the same storage agree only through the bus.
type SessionStore struct {
	kv          ports.KeyValueStore
	bus         ports.ChangeBus
	storageBase string
	log         zerolog.Logger
}

func NewSessionStore(kv ports.KeyValueStore, bus ports.ChangeBus, storageBase string, log zerolog.Logger) *SessionStore {
	return &SessionStore{kv: kv, bus: bus, storageBase: storageBase, log: log}
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Load reads every session key. A missing token or user id means nobody is
// logged in.
func (s *SessionStore) Load(ctx context.Context) (*domain.Session, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, k := range sessionKeys {
		v, ok, err := s.kv.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("load session: %s: %w", k, err)
		}
		if ok {
			values[k] = v
		}
	}

	sess := &domain.Session{
		Token:       values[KeyToken],
		UserID:      values[KeyUserID],
		Name:        values[KeyName],
		Email:       values[KeyEmail],
		Avatar:      values[KeyAvatar],
		Address:     values[KeyAddress],
		PhoneNumber: values[KeyPhoneNumber],
		Bio:         values[KeyBio],
		CreatedAt:   values[KeyCreatedAt],
		Role:        values[KeyRole],
	}
	if !sess.Complete() {
		if sess.Partial() {
			s.log.Debug().Msg("partial session in storage treated as logged out")
		}
		return nil, domain.ErrNoSession
	}
	return sess, nil
}

// Save writes every field, normalising the avatar, then broadcasts once.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	if !sess.Complete() {
		return domain.ErrInvalidSession
	}
	sess.Avatar = domain.ResolveMediaURL(s.storageBase, sess.Avatar, domain.DefaultAvatar)

	fields := map[string]string{
		KeyToken:       sess.Token,
		KeyUserID:      sess.UserID,
		KeyName:        sess.Name,
		KeyEmail:       sess.Email,
		KeyAvatar:      sess.Avatar,
		KeyAddress:     sess.Address,
		KeyPhoneNumber: sess.PhoneNumber,
		KeyBio:         sess.Bio,
		KeyCreatedAt:   sess.CreatedAt,
		KeyRole:        sess.Role,
	}
	if err := s.write(ctx, "save session", fields); err != nil {
		return err
	}
	return s.broadcast(ctx, "save")
}

// Clear erases every key, restores the placeholder avatar and broadcasts.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := s.kv.Set(ctx, KeyAvatar, domain.DefaultAvatar); err != nil {
		return fmt.Errorf("clear session: avatar: %w", err)
	}
	return s.broadcast(ctx, "clear")
}

// ApplyRefresh stores a renewed token. When user is given the profile
// fields are rewritten too, exactly as on login.
func (s *SessionStore) ApplyRefresh(ctx context.Context, token string, user *domain.User) error {
	if token == "" {
		return domain.ErrInvalidSession
	}
	fields := map[string]string{KeyToken: token}
	if user != nil {
		sess := domain.SessionFromUser(token, *user)
		fields[KeyUserID] = sess.UserID
		fields[KeyName] = sess.Name
		fields[KeyEmail] = sess.Email
		fields[KeyRole] = sess.Role
		fields[KeyAddress] = sess.Address
		fields[KeyPhoneNumber] = sess.PhoneNumber
		fields[KeyBio] = sess.Bio
		fields[KeyCreatedAt] = sess.CreatedAt
		fields[KeyAvatar] = domain.ResolveMediaURL(s.storageBase, sess.Avatar, domain.DefaultAvatar)
	}
	if err := s.write(ctx, "refresh session", fields); err != nil {
		return err
	}
	return s.broadcast(ctx, "refresh")
}

// UpdateProfileFields rewrites profile keys after a profile edit and
// broadcasts once. Token and user id are left alone.
func (s *SessionStore) UpdateProfileFields(ctx context.Context, u domain.User) error {
	name := u.Name
	if name == "" {
		if current, ok, err := s.kv.Get(ctx, KeyName); err == nil && ok && current != "" {
			name = current
		} else {
			name = "User"
		}
	}
	fields := map[string]string{
		KeyAddress:     u.Address,
		KeyPhoneNumber: u.PhoneNumber,
		KeyBio:         u.Bio,
		KeyName:        name,
		KeyCreatedAt:   u.CreatedAt,
		KeyAvatar:      domain.ResolveMediaURL(s.storageBase, u.ProfilePicture, domain.DefaultAvatar),
	}
	if err := s.write(ctx, "update profile", fields); err != nil {
		return err
	}
	return s.broadcast(ctx, "profile")
}

// write stores one batch of session keys. A failed batch may have landed in
// part, mixing two identities, so the token is dropped and other holders of
// the session are told: the storage then reads as logged out.
func (s *SessionStore) write(ctx context.Context, op string, fields map[string]string) error {
	err := s.kv.SetMany(ctx, fields)
	if err == nil {
		return nil
	}
	if derr := s.kv.Delete(ctx, KeyToken); derr != nil {
		s.log.Error().Err(derr).Str("op", op).Msg("could not invalidate session after failed write")
	} else if berr := s.broadcast(ctx, "invalidate"); berr != nil {
		s.log.Warn().Err(berr).Str("op", op).Msg("invalidated session not broadcast")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Subscribe registers fn for every storage change, local or remote.
func (s *SessionStore) Subscribe(fn func()) func() {
	return s.bus.Subscribe(fn)
}

func (s *SessionStore) broadcast(ctx context.Context, reason string) error {
	if err := s.bus.Publish(ctx); err != nil {
		return fmt.Errorf("broadcast %s: %w", ports.StorageChangedEvent, err)
	}
	metrics.SessionBroadcastsTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Str("reason", reason).Msg("session change broadcast")
	return nil
}
