package backend

import (
	"context"
	"path/filepath"
	"testing"

	"nexo/internal/config"
)

func TestCreateSnapshotBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "snapshot", DataDir: t.TempDir()}
	result, err := Create(context.Background(), cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer result.Cleanup()

	if result.Store == nil {
		t.Fatal("store is nil")
	}
	if len(result.State.Transactions) != 0 || len(result.State.Accounts) != 0 {
		t.Fatalf("expected empty state, got %+v", result.State)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "nexo.db"),
	}
	result, err := Create(context.Background(), cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer result.Cleanup()

	if result.Store == nil {
		t.Fatal("store is nil")
	}
}

func TestCreateRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory"}
	if _, err := Create(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBackendTypeValidity(t *testing.T) {
	if !SnapshotBackend.IsValid() || !SQLiteBackend.IsValid() {
		t.Fatal("known backends must be valid")
	}
	if BackendType("sheets").IsValid() {
		t.Fatal("sheets is not a backend")
	}
}
