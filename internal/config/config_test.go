package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIPrefix != "/api" {
		t.Fatalf("APIPrefix = %q", cfg.Backend.APIPrefix)
	}
	if cfg.Backend.Timeout != 30*time.Second || cfg.Backend.IdleTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v / %v", cfg.Backend.Timeout, cfg.Backend.IdleTimeout)
	}
	if !cfg.Backend.AllowAI || !cfg.Send.Streaming {
		t.Fatal("expected fallback and streaming on by default")
	}
	if cfg.Store.Driver != "file" {
		t.Fatalf("store driver = %q", cfg.Store.Driver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PTH_BASE_URL", "http://backend:9000/")
	t.Setenv("PTH_TIMEOUT", "5")
	t.Setenv("PTH_LANG", "my")
	t.Setenv("PTH_STREAM", "false")
	t.Setenv("PTH_DUPLICATE_WINDOW_MS", "750")
	t.Setenv("PTH_STORE", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v", cfg.Backend.Timeout)
	}
	if cfg.Backend.LangHint != "my" {
		t.Fatalf("LangHint = %q", cfg.Backend.LangHint)
	}
	if cfg.Send.Streaming {
		t.Fatal("PTH_STREAM=false not honored")
	}
	if cfg.Send.DuplicateWindow != 750*time.Millisecond {
		t.Fatalf("DuplicateWindow = %v", cfg.Send.DuplicateWindow)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Fatalf("store driver = %q", cfg.Store.Driver)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PTH_LANG", "fr")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid PTH_LANG")
	}
	t.Setenv("PTH_LANG", "en")

	t.Setenv("PTH_TIMEOUT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive PTH_TIMEOUT")
	}
	t.Setenv("PTH_TIMEOUT", "30")

	t.Setenv("PTH_STREAM", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid PTH_STREAM")
	}
}
