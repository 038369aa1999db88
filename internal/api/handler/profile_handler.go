package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
)

type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileResponse struct {
	sessionResponse
	// Status holds Verified / Not Verified per editable field.
	Status map[string]string `json:"status"`
}

type profileFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=address phone_number bio"`
	Value string `json:"value"`
}

type publicProfileResponse struct {
	*ports.PublicProfile
	Tab    string         `json:"tab"`
	Counts map[string]int `json:"counts"`
}

func toProfileResponse(s *domain.Session) profileResponse {
	return profileResponse{
		sessionResponse: toSessionResponse(s),
		Status: map[string]string{
			service.FieldAddress:     service.FieldStatus(s.Address),
			service.FieldPhoneNumber: service.FieldStatus(s.PhoneNumber),
			service.FieldBio:         service.FieldStatus(s.Bio),
		},
	}
}

// Get returns the logged-in user's profile.
//
// @Summary      My profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	sess, err := h.profiles.Profile(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(sess))
}

// Patch edits one profile field.
//
// @Summary      Edit a profile field
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      profileFieldRequest  true  "Field and value"
// @Success      200   {object}  profileResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/me/profile [patch]
func (h *ProfileHandler) Patch(c echo.Context) error {
	var req profileFieldRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sess, err := h.profiles.UpdateField(c.Request().Context(), req.Field, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(sess))
}

// Public returns another user's showcase, filtered to the for_sale or sold
// tab.
//
// @Summary      Public profile
// @Tags         profile
// @Produce      json
// @Param        username  path      string  true   "Username"
// @Param        tab       query     string  false  "for_sale (default) or sold"
// @Success      200  {object}  publicProfileResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/{username} [get]
func (h *ProfileHandler) Public(c echo.Context) error {
	tab := c.QueryParam("tab")
	if tab == "" {
		tab = "for_sale"
	}
	if !listing.ShowcaseTabs.Has(tab) {
		return domain.ErrUnknownTab
	}

	p, err := h.profiles.PublicProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	counts := listing.Counts(p.Items, listing.ShowcaseTabs)
	p.Items = listing.Derive(p.Items, listing.ShowcaseTabs, listing.DefaultParams(tab))
	return c.JSON(http.StatusOK, publicProfileResponse{PublicProfile: p, Tab: tab, Counts: counts})
}
