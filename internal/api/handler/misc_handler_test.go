package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
	"github.com/99minutos/storefront/internal/pkg/clock"
)

// ── Catalog ──

func TestCatalogHandler_CatalogIsGrouped(t *testing.T) {
	e := newEcho()
	view := newProductView(t, service.ViewConfig{Name: "catalog", Grouped: true}, staticProducts(
		domain.Product{ID: "1", Name: "Lamp", Category: &domain.Category{ID: "1", Name: "Home"}},
		domain.Product{ID: "2", Name: "Shirt", Category: &domain.Category{ID: "2", Name: "Fashion"}},
		domain.Product{ID: "3", Name: "Sofa", Category: &domain.Category{ID: "1", Name: "Home"}},
	))
	h := NewCatalogHandler(view, &stubCatalogService{})

	c, rec := jsonContext(e, http.MethodGet, "/v1/catalog", "")
	if err := h.Catalog(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body struct {
		Groups []struct {
			Name  string           `json:"name"`
			Items []domain.Product `json:"items"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Groups) != 2 || body.Groups[0].Name != "Home" || len(body.Groups[0].Items) != 2 {
		t.Fatalf("unexpected groups %+v", body.Groups)
	}
}

func TestCatalogHandler_Product(t *testing.T) {
	e := newEcho()
	h := NewCatalogHandler(nil, &stubCatalogService{
		product: &ports.ProductDetail{Product: domain.Product{ID: "5", Name: "Lamp"}, CoverURL: "http://x/storage/a.png"},
	})

	c, rec := jsonContext(e, http.MethodGet, "/v1/products/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Product(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["name"] != "Lamp" || body["cover_url"] != "http://x/storage/a.png" {
		t.Fatalf("unexpected body %v", body)
	}

	c, _ = jsonContext(e, http.MethodGet, "/v1/products/6", "")
	c.SetParamNames("id")
	c.SetParamValues("6")
	if err := h.Product(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ── Promo ──

func TestPromoHandler_Countdown(t *testing.T) {
	e := newEcho()
	c, _ := jsonContext(e, http.MethodGet, "/v1/promo/countdown", "")
	var he *echo.HTTPError
	if err := NewPromoHandler(nil).Countdown(c); !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a launch, got %v", err)
	}

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cd := service.NewCountdown(clock.Fake(now), now.Add(26*time.Hour+5*time.Second))
	c, rec := jsonContext(e, http.MethodGet, "/v1/promo/countdown", "")
	if err := NewPromoHandler(cd).Countdown(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body countdownResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Ended || body.Remaining.Days != 1 || body.Remaining.Hours != 2 || body.Remaining.Seconds != 5 {
		t.Fatalf("unexpected countdown %+v", body)
	}
}

// ── Health ──

func TestReadinessHandler(t *testing.T) {
	e := newEcho()
	h := NewReadinessHandler(map[string]Check{
		"redis": func(context.Context) error { return nil },
		"mongo": func(context.Context) error { return errors.New("no reachable servers") },
	})

	c, rec := jsonContext(e, http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Status != "degraded" || body.Dependencies["redis"].Status != "ok" || body.Dependencies["mongo"].Error == "" {
		t.Fatalf("unexpected body %+v", body)
	}

	c, rec = jsonContext(e, http.MethodGet, "/health/ready", "")
	if err := NewReadinessHandler(nil).Readiness(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("no checks should be ready, got %d %v", rec.Code, err)
	}
}
