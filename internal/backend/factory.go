package backend

import (
	"context"
	"fmt"
	"log/slog"

	"nexo/internal/config"
	"nexo/internal/snapshot"
	"nexo/internal/storage"
)

// Create builds the configured store and loads its persisted state.
func Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		return createSQLite(ctx, cfg)
	default:
		return createSnapshot(ctx, cfg)
	}
}

func createSnapshot(ctx context.Context, cfg *config.Config) (*Result, error) {
	store, err := snapshot.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initialize snapshot store: %w", err)
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot state: %w", err)
	}

	slog.InfoContext(ctx, "Initialized snapshot backend", "data_dir", cfg.DataDir)

	return &Result{
		Store: store,
		State: State{
			Transactions: state.Transactions,
			Accounts:     state.Accounts,
			Profile:      state.Profile,
		},
		Cleanup: store.Close,
	}, nil
}

func createSQLite(ctx context.Context, cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	txs, accounts, profile, err := repo.LoadState(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load SQLite state: %w", err)
	}

	slog.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Store: repo,
		State: State{
			Transactions: txs,
			Accounts:     accounts,
			Profile:      profile,
		},
		Cleanup: repo.Close,
	}, nil
}
