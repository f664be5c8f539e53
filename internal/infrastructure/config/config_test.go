package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(nil))
	if err != nil {
		t.Fatalf("load with empty env: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port default: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.Env != "development" {
		t.Errorf("Env default: got %q, want %q", cfg.Env, "development")
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWTSecret must have no default, got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL default: got %v, want 24h", cfg.TokenTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel default: got %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("Mongo.URI default: got %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "microbio_portal" {
		t.Errorf("Mongo.Database default: got %q", cfg.Mongo.Database)
	}
	if cfg.Mongo.Timeout != 10*time.Second {
		t.Errorf("Mongo.Timeout default: got %v, want 10s", cfg.Mongo.Timeout)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr default: got %q", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("Redis.DB default: got %d, want 0", cfg.Redis.DB)
	}
	if cfg.Redis.Timeout != 5*time.Second {
		t.Errorf("Redis.Timeout default: got %v, want 5s", cfg.Redis.Timeout)
	}
	if cfg.Storage.Dir != "./data/uploads" {
		t.Errorf("Storage.Dir default: got %q", cfg.Storage.Dir)
	}
	if cfg.Storage.MaxUploadMB != 10 {
		t.Errorf("Storage.MaxUploadMB default: got %d, want 10", cfg.Storage.MaxUploadMB)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":          "9090",
		"ENV":           "production",
		"JWT_SECRET":    "s3cret",
		"TOKEN_TTL":     "1h",
		"MONGO_DB":      "portal_test",
		"REDIS_DB":      "3",
		"REDIS_TIMEOUT": "250ms",
		"MAX_UPLOAD_MB": "25",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "9090")
	}
	if cfg.Env != "production" {
		t.Errorf("Env: got %q, want %q", cfg.Env, "production")
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL: got %v, want 1h", cfg.TokenTTL)
	}
	if cfg.Mongo.Database != "portal_test" {
		t.Errorf("Mongo.Database: got %q", cfg.Mongo.Database)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("Redis.DB: got %d, want 3", cfg.Redis.DB)
	}
	if cfg.Redis.Timeout != 250*time.Millisecond {
		t.Errorf("Redis.Timeout: got %v, want 250ms", cfg.Redis.Timeout)
	}
	if cfg.Storage.MaxUploadMB != 25 {
		t.Errorf("Storage.MaxUploadMB: got %d, want 25", cfg.Storage.MaxUploadMB)
	}
}

func TestLoad_MalformedValue(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"TOKEN_TTL": "soon",
	})); err == nil {
		t.Fatal("expected error for malformed duration")
	}

	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"REDIS_DB": "not-a-number",
	})); err == nil {
		t.Fatal("expected error for malformed integer")
	}
}
