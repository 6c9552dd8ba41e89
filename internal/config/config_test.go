package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("VALID_PINS", " demo1 , demo2,, ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LinkLimit != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.ValidPINs, []string{"demo1", "demo2"}) {
		t.Fatalf("expected trimmed pin set, got %v", cfg.ValidPINs)
	}
	if !cfg.IsDev() {
		t.Fatal("default env should be development")
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without SESSION_SECRET")
	}
}

func TestLoadRejectsBadLinkLimit(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("LINK_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive LINK_LIMIT")
	}
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL_SECONDS", "120")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != 2*time.Minute {
		t.Fatalf("expected 2m session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.ShutdownPeriod != 5*time.Second {
		t.Fatalf("expected 5s shutdown, got %s", cfg.ShutdownPeriod)
	}
}

func TestAddress(t *testing.T) {
	if (Config{Port: "9000"}).Address() != ":9000" {
		t.Fatal("expected colon prefix added")
	}
	if (Config{Port: ":9000"}).Address() != ":9000" {
		t.Fatal("expected existing colon preserved")
	}
}
