package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		code     int
		redirect string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, LoginPath},
		{"expired", fmt.Errorf("orders: %w", domain.ErrSessionExpired), http.StatusUnauthorized, LoginPath},
		{"no session", domain.ErrNoSession, http.StatusUnauthorized, LoginPath},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"mismatch", domain.ErrTokenMismatch, http.StatusUnauthorized, ""},
		{"not found", domain.ErrNotFound, http.StatusNotFound, ""},
		{"unknown tab", domain.ErrUnknownTab, http.StatusBadRequest, ""},
		{"fetch", &domain.FetchError{Op: "orders", Status: 500, Message: "boom"}, http.StatusBadGateway, ""},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, ""},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, ""},
		{"unexpected", errors.New("kaboom"), http.StatusInternalServerError, ""},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" || body.Redirect != tc.redirect {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	verr := domain.NewValidationError("quantity", "only 2 left in stock")
	NewHTTPErrorHandler(zerolog.Nop())(fmt.Errorf("checkout: %w", verr), c)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if got := body.Errors["quantity"]; len(got) != 1 || got[0] != "only 2 left in stock" {
		t.Fatalf("unexpected errors %+v", body.Errors)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)
	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response must not be rewritten, got %d %q", rec.Code, rec.Body.String())
	}
}
