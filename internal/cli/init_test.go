package cli

import (
	"context"
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MONEYBOOK_CONFIG", "")
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("AMQP_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" || cfg.LogFormat != "json" {
		t.Fatalf("cfg = %+v", cfg)
	}

	logger := SetupLogger(cfg, "test")
	if logger == nil {
		t.Fatal("nil logger")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("MONEYBOOK_CONFIG", "")
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInitBackend(t *testing.T) {
	t.Setenv("MONEYBOOK_CONFIG", "")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", t.TempDir()+"/mb.db")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	result, err := InitBackend(context.Background(), SetupLogger(cfg, "test"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Close()
	if err := result.Backend.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestGracefulShutdownIdle(t *testing.T) {
	t.Setenv("MONEYBOOK_CONFIG", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	ctx, done := GracefulShutdown(SetupLogger(cfg, "test"), time.Second, nil)
	select {
	case <-ctx.Done():
		t.Fatal("context cancelled without a signal")
	case <-done:
		t.Fatal("done closed without a signal")
	case <-time.After(20 * time.Millisecond):
	}
}
