package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
)

func TestRBAC(t *testing.T) {
	cases := []struct {
		name    string
		sess    *domain.Session
		wantErr int // 0 means the next handler runs
	}{
		{"member", &domain.Session{UserID: "7", Role: domain.RoleUser}, 0},
		{"admin", &domain.Session{UserID: "1", Role: domain.RoleAdmin}, 0},
		{"legacy session without role", &domain.Session{UserID: "7"}, 0},
		{"other role", &domain.Session{UserID: "9", Role: "guest"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.Set(KeySession, tc.sess)

			called := false
			err := RBAC(domain.RoleUser, domain.RoleAdmin)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)

			if tc.wantErr == 0 {
				if err != nil || !called {
					t.Fatalf("expected next handler to run, err=%v called=%v", err, called)
				}
				if got, _ := c.Get(KeyRole).(string); got == "" {
					t.Fatalf("role should be set on the context")
				}
				return
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != tc.wantErr {
				t.Fatalf("expected %d, got %v", tc.wantErr, err)
			}
			if called {
				t.Fatalf("should not reach next handler")
			}
		})
	}
}

func TestRBAC_WithoutSession(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RBAC(domain.RoleUser)(func(c echo.Context) error { return nil })(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
