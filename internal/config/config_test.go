package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Create temporary config file
	content := `
server:
  port: 9090
  host: "127.0.0.1"

mongo:
  uri: "mongodb://testhost:27017"
  database: "podpirate_test"

auth:
  jwtSecret: "test-secret"
  accessTokenTTL: "48h"
  verificationTTL: "5m"
  adminEmail: "admin@podpirate.dev"
`

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Load config
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Server.Host)
	}

	if cfg.Mongo.Database != "podpirate_test" {
		t.Errorf("Expected database podpirate_test, got %s", cfg.Mongo.Database)
	}

	if cfg.Auth.AccessTokenTTL != 48*time.Hour {
		t.Errorf("Expected access TTL 48h, got %v", cfg.Auth.AccessTokenTTL)
	}

	if cfg.Auth.VerificationTTL != 5*time.Minute {
		t.Errorf("Expected verification TTL 5m, got %v", cfg.Auth.VerificationTTL)
	}

	if cfg.Auth.AdminEmail != "admin@podpirate.dev" {
		t.Errorf("Expected admin email admin@podpirate.dev, got %s", cfg.Auth.AdminEmail)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte("server:\n  port: 8080\n")); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Auth.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("Expected default refresh TTL 168h, got %v", cfg.Auth.RefreshTokenTTL)
	}

	if cfg.Storage.BucketName != "podpirate-media" {
		t.Errorf("Expected default bucket podpirate-media, got %s", cfg.Storage.BucketName)
	}

	if cfg.Mail.MaxAttempts != 4 {
		t.Errorf("Expected default mail attempts 4, got %d", cfg.Mail.MaxAttempts)
	}
}
