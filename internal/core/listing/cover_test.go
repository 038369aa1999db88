package listing

import (
	"testing"

	"github.com/99minutos/storefront/internal/core/domain"
)

func TestSelectCover(t *testing.T) {
	cases := []struct {
		name   string
		images []domain.Image
		want   string
	}{
		{"empty", nil, domain.DefaultItemImage},
		{"flagged second", []domain.Image{{URL: "a.jpg"}, {URL: "b.jpg", IsCover: true}}, "b.jpg"},
		{"none flagged", []domain.Image{{URL: "a.jpg"}, {URL: "b.jpg"}}, "a.jpg"},
		{"first flagged wins", []domain.Image{{URL: "a.jpg", IsCover: true}, {URL: "b.jpg", IsCover: true}}, "a.jpg"},
	}
	for _, tc := range cases {
		if got := SelectCover(tc.images); got != tc.want {
			t.Errorf("%s: SelectCover = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCoverURL(t *testing.T) {
	base := "http://localhost:8000"
	if got := CoverURL(base, []domain.Image{{URL: "products/1.jpg"}}); got != "http://localhost:8000/storage/products/1.jpg" {
		t.Errorf("unexpected url %q", got)
	}
	if got := CoverURL(base, nil); got != domain.DefaultItemImage {
		t.Errorf("expected placeholder, got %q", got)
	}
	if got := CoverURL(base, []domain.Image{{URL: "https://cdn.example.com/x.png"}}); got != "https://cdn.example.com/x.png" {
		t.Errorf("absolute url rewritten: %q", got)
	}
}
