package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// SessionRefresher renews the stored token. *service.SessionGuard satisfies it.
type SessionRefresher interface {
	Refresh(ctx context.Context, sess *domain.Session) (*domain.Session, error)
}

type SessionHandler struct {
	auth      ports.AuthService
	refresher SessionRefresher
}

func NewSessionHandler(auth ports.AuthService, refresher SessionRefresher) *SessionHandler {
	return &SessionHandler{auth: auth, refresher: refresher}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the session as shown to the UI. The token stays on
// the server side.
type sessionResponse struct {
	UserID      string `json:"id_user"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Avatar      string `json:"avatar"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Bio         string `json:"bio,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Role        string `json:"role"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		UserID:      s.UserID,
		Name:        s.Name,
		Email:       s.Email,
		Avatar:      s.Avatar,
		Address:     s.Address,
		PhoneNumber: s.PhoneNumber,
		Bio:         s.Bio,
		CreatedAt:   s.CreatedAt,
		Role:        s.Role,
	}
}

// Login authenticates against the backend and stores the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// Register creates a backend account. The user logs in afterwards.
//
// @Summary      Register a new user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegistrationForm  true  "Registration form"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req ports.RegistrationForm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := h.auth.Register(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "registration successful, please log in"})
}

// Logout clears the stored session.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh renews the stored token once. A failed refresh logs the user out.
//
// @Summary      Refresh the session token
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	renewed, err := h.refresher.Refresh(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(renewed))
}

// Current returns the logged-in identity.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}
