package backend

import (
	"context"
	"path/filepath"
	"testing"

	"moneybook/internal/config"
	"moneybook/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataBackend = "postgres"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("postgres without a database URL should fail")
	}

	cfg.DatabaseURL = "postgres://localhost/moneybook"
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != PostgresBackend || got.DatabaseURL != cfg.DatabaseURL {
		t.Fatalf("config = %+v", got)
	}

	cfg.DataBackend = "sheets"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("unknown backend should fail")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config should fail")
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "test.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Close()

			if err := res.Backend.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
			rec, err := res.Backend.CreateRecord(ctx, core.NewRecord{
				OwnerID: "u1", Kind: core.KindIncome, Amount: 10, Period: "2024-03",
			})
			if err != nil {
				t.Fatalf("CreateRecord: %v", err)
			}
			list, err := res.Backend.ListByPeriod(ctx, "u1", "2024-03")
			if err != nil || len(list) != 1 || list[0].ID != rec.ID {
				t.Fatalf("ListByPeriod = %v, %v", list, err)
			}
		})
	}
}

func TestCreateBackendRejectsInvalidType(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "nope"}); err == nil {
		t.Fatal("expected error")
	}
	if (&BackendResult{}).Close() != nil {
		t.Fatal("Close without cleanup should be nil")
	}
}
