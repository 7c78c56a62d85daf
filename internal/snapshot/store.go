// Package snapshot persists the tracker state as JSON files, one per slice,
// rewritten in full after every mutation. It mirrors the durable key-value
// semantics the tracker started with: no incremental writes, no schema
// versioning.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"nexo/internal/core"
)

const (
	transactionsFile = "transactions.json"
	accountsFile     = "accounts.json"
	profileFile      = "profile.json"
)

// State is everything the store knows how to load.
type State struct {
	Transactions []core.Transaction
	Accounts     []core.Account
	Profile      *core.Profile
}

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load reads all slices. A missing file yields an empty slice; a corrupt file
// is logged and skipped so the remaining slices still load. Load never fails
// because of bad content, only on I/O errors other than not-exist.
func (s *Store) Load(ctx context.Context) (State, error) {
	var state State

	if err := s.loadSlice(ctx, transactionsFile, &state.Transactions); err != nil {
		return State{}, err
	}
	if err := s.loadSlice(ctx, accountsFile, &state.Accounts); err != nil {
		return State{}, err
	}
	if err := s.loadSlice(ctx, profileFile, &state.Profile); err != nil {
		return State{}, err
	}

	slog.InfoContext(ctx, "Loaded snapshot state",
		"dir", s.dir,
		"transactions", len(state.Transactions),
		"accounts", len(state.Accounts),
		"has_profile", state.Profile != nil)
	return state, nil
}

func (s *Store) loadSlice(ctx context.Context, name string, dst any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.WarnContext(ctx, "Skipping corrupt snapshot slice",
			"file", name, "error", err)
		return nil
	}
	return nil
}

// SaveAll rewrites the transaction and account slices in full.
func (s *Store) SaveAll(ctx context.Context, txs []core.Transaction, accounts []core.Account) error {
	if err := s.writeSlice(transactionsFile, txs); err != nil {
		return err
	}
	return s.writeSlice(accountsFile, accounts)
}

// SaveProfile rewrites the profile slice. A nil profile clears it.
func (s *Store) SaveProfile(ctx context.Context, p *core.Profile) error {
	if p == nil {
		err := os.Remove(filepath.Join(s.dir, profileFile))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", profileFile, err)
		}
		return nil
	}
	return s.writeSlice(profileFile, p)
}

// GetTransaction looks up a single transaction by id from the persisted
// slice.
func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var txs []core.Transaction
	if err := s.loadSlice(ctx, transactionsFile, &txs); err != nil {
		return core.Transaction{}, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, fs.ErrNotExist)
}

// writeSlice writes via a temp file and rename so a crash mid-write never
// leaves a half-serialized slice behind.
func (s *Store) writeSlice(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
