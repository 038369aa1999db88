package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/pkg/validate"
)

// AuthService implements login, registration and logout against the
// backend and the shared session store.
type AuthService struct {
	backend ports.Backend
	store   ports.SessionStore
	log     zerolog.Logger
}

func NewAuthService(backend ports.Backend, store ports.SessionStore, log zerolog.Logger) *AuthService {
	return &AuthService{backend: backend, store: store, log: log}
}

var _ ports.AuthService = (*AuthService)(nil)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login clears whatever session is stored, authenticates, checks that the
// token was issued for the returned user and saves the new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if err := validate.Struct(loginForm{Email: email, Password: password}); err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("login: clear stale session: %w", err)
	}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.User == nil {
		return nil, &domain.FetchError{Op: "login", Message: "invalid login response"}
	}
	if err := verifyTokenFor(res.AccessToken, res.User.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", res.User.ID.String()).Msg("login token rejected")
		if errors.Is(err, domain.ErrTokenMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("login: %w: %v", domain.ErrTokenMismatch, err)
	}

	sess := domain.SessionFromUser(res.AccessToken, *res.User)
	if sess.Name == "" {
		sess.Name, _, _ = strings.Cut(email, "@")
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", sess.UserID).Msg("user logged in")
	return s.store.Load(ctx)
}

// Register validates the form locally and creates the account with the
// default role. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, in ports.RegistrationForm) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	verr := &domain.ValidationError{}
	if err := validate.Struct(in); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	if !in.AgreeTerms {
		verr.Add("agree_terms", "you must agree to the Terms of Service & Privacy Policy")
	}
	if len(verr.Fields) > 0 {
		return verr
	}

	return s.backend.Register(ctx, ports.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     domain.RoleUser,
	})
}

// Logout erases the session everywhere it is shared.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Msg("user logged out")
	return nil
}
