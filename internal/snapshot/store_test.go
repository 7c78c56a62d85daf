package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nexo/internal/core"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	txs := []core.Transaction{{
		ID:          "t1",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1234},
		Description: "Mercado",
		Category:    core.CategoryFood,
		Date:        time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
		AccountID:   "a1",
	}}
	accounts := []core.Account{{ID: "a1", Name: "Carteira", Balance: core.Money{Cents: -1234}}}

	if err := s.SaveAll(ctx, txs, accounts); err != nil {
		t.Fatalf("save all: %v", err)
	}
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	profile := &core.Profile{Name: "Ana", Email: "ana@example.com", HasPaid: true, SubscriptionEndDate: &end}
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	state, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Transactions) != 1 || state.Transactions[0].ID != "t1" {
		t.Fatalf("unexpected transactions: %+v", state.Transactions)
	}
	if len(state.Accounts) != 1 || state.Accounts[0].Balance.Cents != -1234 {
		t.Fatalf("unexpected accounts: %+v", state.Accounts)
	}
	if state.Profile == nil || !state.Profile.HasPaid {
		t.Fatalf("unexpected profile: %+v", state.Profile)
	}
}

func TestCorruptSliceDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	accounts := []core.Account{{ID: "a1", Name: "Carteira"}}
	if err := s.SaveAll(ctx, nil, accounts); err != nil {
		t.Fatalf("save all: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	state, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load must not fail on corrupt content: %v", err)
	}
	if len(state.Transactions) != 0 {
		t.Fatalf("corrupt slice must load empty, got %+v", state.Transactions)
	}
	if len(state.Accounts) != 1 {
		t.Fatalf("healthy slice must still load, got %+v", state.Accounts)
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	state, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Transactions) != 0 || len(state.Accounts) != 0 || state.Profile != nil {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestGetTransaction(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStore(t.TempDir())
	txs := []core.Transaction{
		{ID: "t1", Type: core.Income, Amount: core.Money{Cents: 100}, Description: "x", Category: core.CategoryIncome, Date: time.Now(), AccountID: "a"},
	}
	if err := s.SaveAll(ctx, txs, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetTransaction(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 100 {
		t.Fatalf("unexpected transaction: %+v", got)
	}
	if _, err := s.GetTransaction(ctx, "ghost"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
