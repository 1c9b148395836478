// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"BACKEND_URL", "BACKEND_TIMEOUT", "SESSION_SECRET",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD", "VALKEY_DB",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
	"UPLOAD_MODE", "DRAFT_TTL", "ORPHAN_GRACE", "SWEEP_INTERVAL", "LOGIN_RATE_LIMIT",
}

// clearEnv blanks every key Load reads; envOrDefault treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("BackendURL", cfg.BackendURL, "http://localhost:4000")
	check("DBUser", cfg.DBUser, "sellerconsole")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("UploadMode", cfg.UploadMode, UploadBackend)
	check("S3Region", cfg.S3Region, "us-east-1")

	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("BackendTimeout = %v, want 15s", cfg.BackendTimeout)
	}
	if cfg.DraftTTL != 2*time.Hour || cfg.OrphanGrace != 24*time.Hour || cfg.SweepInterval != time.Hour {
		t.Errorf("durations = %v/%v/%v", cfg.DraftTTL, cfg.OrphanGrace, cfg.SweepInterval)
	}
	if cfg.LoginRateLimit != 10 {
		t.Errorf("LoginRateLimit = %d, want 10", cfg.LoginRateLimit)
	}
	if cfg.SessionSecret == "" {
		t.Error("development should fall back to a session secret")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"APP_HOST":          "127.0.0.1",
		"APP_PORT":          "9090",
		"APP_ENV":           "testing",
		"BACKEND_URL":       "https://api.buybox.test",
		"BACKEND_TIMEOUT":   "3s",
		"SESSION_SECRET":    "custom-secret",
		"POSTGRES_HOST":     "db.example.com",
		"POSTGRES_PASSWORD": "testpass",
		"VALKEY_PASSWORD":   "cachepass",
		"VALKEY_HOST":       "cache.example.com",
		"VALKEY_DB":         "3",
		"S3_ENDPOINT":       "https://s3.example.com",
		"S3_ACCESS_KEY":     "AKIATEST",
		"S3_SECRET_KEY":     "secrettest",
		"S3_BUCKET":         "buybox-media",
		"S3_PUBLIC_URL":     "https://cdn.example.com",
		"UPLOAD_MODE":       "s3",
		"DRAFT_TTL":         "30m",
		"ORPHAN_GRACE":      "6h",
		"SWEEP_INTERVAL":    "10m",
		"LOGIN_RATE_LIMIT":  "3",
	}
	for key, val := range overrides {
		t.Setenv(key, val)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.BackendURL != "https://api.buybox.test" || cfg.BackendTimeout != 3*time.Second {
		t.Errorf("backend = %q %v", cfg.BackendURL, cfg.BackendTimeout)
	}
	if cfg.SessionSecret != "custom-secret" {
		t.Errorf("SessionSecret = %q", cfg.SessionSecret)
	}
	if cfg.UploadMode != UploadS3 || cfg.S3Bucket != "buybox-media" || cfg.S3PublicURL != "https://cdn.example.com" {
		t.Errorf("s3 = %q %q %q", cfg.UploadMode, cfg.S3Bucket, cfg.S3PublicURL)
	}
	if cfg.DraftTTL != 30*time.Minute || cfg.OrphanGrace != 6*time.Hour || cfg.SweepInterval != 10*time.Minute {
		t.Errorf("durations = %v/%v/%v", cfg.DraftTTL, cfg.OrphanGrace, cfg.SweepInterval)
	}
	if cfg.LoginRateLimit != 3 {
		t.Errorf("LoginRateLimit = %d", cfg.LoginRateLimit)
	}
	if cfg.ValkeyAddr() != "cache.example.com:6379" || cfg.ValkeyDB != 3 {
		t.Errorf("valkey = %q db %d", cfg.ValkeyAddr(), cfg.ValkeyDB)
	}
}

// TestLoad_Production verifies the production guard.
func TestLoad_Production(t *testing.T) {
	longSecret := strings.Repeat("k", 32)
	tests := []struct {
		name     string
		password string
		secret   string
		wantErr  string
	}{
		{"default password", "", longSecret, "POSTGRES_PASSWORD"},
		{"explicit changeme", "changeme", longSecret, "POSTGRES_PASSWORD"},
		{"missing secret", "s3cur3", "", "SESSION_SECRET"},
		{"short secret", "s3cur3", "short", "SESSION_SECRET"},
		{"valid", "s3cur3", longSecret, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "production")
			t.Setenv("POSTGRES_PASSWORD", tt.password)
			t.Setenv("SESSION_SECRET", tt.secret)

			cfg, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Load() returned unexpected error: %v", err)
				}
				if !cfg.IsProduction() {
					t.Error("IsProduction() = false")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s, got: %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoad_Invalid verifies that malformed values are rejected.
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"UPLOAD_MODE", "ftp"},
		{"BACKEND_TIMEOUT", "soon"},
		{"DRAFT_TTL", "-1h"},
		{"LOGIN_RATE_LIMIT", "zero"},
		{"LOGIN_RATE_LIMIT", "0"},
		{"VALKEY_DB", "16"},
		{"VALKEY_DB", "first"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

// TestLoad_S3ModeRequiresSettings verifies UPLOAD_MODE=s3 without a bucket fails.
func TestLoad_S3ModeRequiresSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_MODE", "s3")
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when s3 mode lacks credentials")
	}
}

// TestDSN verifies the PostgreSQL connection string format.
func TestDSN(t *testing.T) {
	cfg := Config{DBUser: "admin", DBPassword: "h@ck&me!", DBHost: "10.0.0.5", DBPort: "5432", DBName: "ledger"}
	want := "postgres://admin:h@ck&me!@10.0.0.5:5432/ledger?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

// TestIsDev verifies the IsDev method for various environment modes.
func TestIsDev(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"development", true},
		{"production", false},
		{"testing", false},
		{"Development", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("env="+tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDev(); got != tt.expected {
				t.Errorf("IsDev() = %v, want %v", got, tt.expected)
			}
		})
	}
}
