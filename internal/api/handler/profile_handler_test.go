package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

func TestProfileHandler_Get(t *testing.T) {
	e := newEcho()
	h := NewProfileHandler(&stubProfileService{sess: &domain.Session{UserID: "7", Name: "Seven", Bio: "hi"}})

	c, rec := jsonContext(e, http.MethodGet, "/v1/me/profile", "")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Name != "Seven" || resp.Status["bio"] != "Verified" || resp.Status["address"] != "Not Verified" {
		t.Fatalf("unexpected profile %+v", resp)
	}
}

func TestProfileHandler_Patch(t *testing.T) {
	e := newEcho()
	svc := &stubProfileService{sess: &domain.Session{UserID: "7", Address: "Jl. Baru"}}
	h := NewProfileHandler(svc)

	c, rec := jsonContext(e, http.MethodPatch, "/v1/me/profile", `{"field":"address","value":"Jl. Baru"}`)
	if err := h.Patch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.updated["address"] != "Jl. Baru" {
		t.Fatalf("unexpected result %d %v", rec.Code, svc.updated)
	}

	c, _ = jsonContext(e, http.MethodPatch, "/v1/me/profile", `{"field":"email","value":"x@example.com"}`)
	if err := h.Patch(c); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProfileHandler_Public(t *testing.T) {
	e := newEcho()
	h := NewProfileHandler(&stubProfileService{public: &ports.PublicProfile{
		Username: "dina",
		Name:     "Dina",
		Items: []domain.Product{
			{ID: "1", Status: domain.ProductStatusPublished},
			{ID: "2", Status: domain.ProductStatusSold},
			{ID: "3", Status: domain.ProductStatusDraft},
		},
	}})

	c, rec := jsonContext(e, http.MethodGet, "/v1/users/dina?tab=sold", "")
	c.SetParamNames("username")
	c.SetParamValues("dina")
	if err := h.Public(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp struct {
		Username string           `json:"username"`
		Items    []domain.Product `json:"items"`
		Tab      string           `json:"tab"`
		Counts   map[string]int   `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Tab != "sold" || len(resp.Items) != 1 || resp.Items[0].ID != "2" {
		t.Fatalf("unexpected showcase %+v", resp)
	}
	if resp.Counts["for_sale"] != 1 || resp.Counts["sold"] != 1 {
		t.Fatalf("unexpected counts %+v", resp.Counts)
	}

	c, _ = jsonContext(e, http.MethodGet, "/v1/users/dina?tab=draft", "")
	c.SetParamNames("username")
	c.SetParamValues("dina")
	if err := h.Public(c); !errors.Is(err, domain.ErrUnknownTab) {
		t.Fatalf("expected ErrUnknownTab, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodGet, "/v1/users/ghost", "")
	c.SetParamNames("username")
	c.SetParamValues("ghost")
	if err := h.Public(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
