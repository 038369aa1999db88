package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Session.Backend != SessionBackendMemory || cfg.BulkWorkers != 4 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Backend.StorageURL != cfg.Backend.URL {
		t.Fatalf("storage url should default to backend url, got %q", cfg.Backend.StorageURL)
	}
	if cfg.Checkout.KeyTTL != 2*time.Minute || cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("unexpected durations %+v %+v", cfg.Checkout, cfg.Backend)
	}
	if !cfg.Development() {
		t.Fatalf("default env should be development")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND_URL":      "https://api.example.com/",
		"STORAGE_BASE_URL": "https://cdn.example.com/",
		"SESSION_BACKEND":  "Redis",
		"LAUNCH_AT":        "2025-03-01T10:00:00Z",
		"ENV":              "production",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.URL != "https://api.example.com" || cfg.Backend.StorageURL != "https://cdn.example.com" {
		t.Fatalf("trailing slashes should be trimmed, got %+v", cfg.Backend)
	}
	if cfg.Session.Backend != SessionBackendRedis {
		t.Fatalf("backend should be lower-cased, got %q", cfg.Session.Backend)
	}
	launch, _ := cfg.LaunchTime()
	if !launch.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected launch %v", launch)
	}
	if cfg.Development() {
		t.Fatalf("production is not development")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"SESSION_BACKEND": {"SESSION_BACKEND": "etcd"},
		"BULK_WORKERS":    {"BULK_WORKERS": "0"},
		"LAUNCH_AT":       {"LAUNCH_AT": "tomorrow"},
		"BACKEND_URL":     {"BACKEND_URL": "not a url"},
	}
	for want, env := range cases {
		_, err := load(context.Background(), envconfig.MapLookuper(env))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s: expected error mentioning it, got %v", want, err)
		}
	}
}
