package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "0123456789abcdef0123456789abcdef",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("expected postgres driver, got %q", cfg.StoreDriver)
	}
	if cfg.Auth.JWTTTL != 10*time.Hour {
		t.Errorf("expected 10h ttl, got %s", cfg.Auth.JWTTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.AllowRoleAssignment {
		t.Errorf("expected role assignment disabled by default")
	}
	if !cfg.Seed.Enabled {
		t.Errorf("expected seeding enabled by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected 15s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development env")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                 "0123456789abcdef0123456789abcdef",
		"JWT_TTL":                    "30m",
		"STORE_DRIVER":               "memory",
		"AUTH_ALLOW_ROLE_ASSIGNMENT": "true",
		"CORS_ALLOWED_ORIGINS":       "http://localhost:3000,https://shop.example.com",
		"ENV":                        "production",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Auth.JWTTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %s", cfg.Auth.JWTTTL)
	}
	if cfg.StoreDriver != DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.StoreDriver)
	}
	if !cfg.Auth.AllowRoleAssignment {
		t.Errorf("expected role assignment enabled")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected two CORS origins, got %v", cfg.CORSOrigins)
	}
	if cfg.IsDevelopment() {
		t.Errorf("expected production env")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"unknown driver", map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"}},
		{"zero ttl", map[string]string{"JWT_SECRET": "x", "JWT_TTL": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(tt.env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
