// Package storage provides the SQLite persistence backend. Writes follow the
// tracker's snapshot semantics: every mutation rewrites the full transaction
// and account slices inside one database transaction. Export bookkeeping
// survives rewrites so the backup worker can catch up after restarts.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nexo/internal/core"

	_ "modernc.org/sqlite"
)

const (
	ExportPending = "pending"
	ExportDone    = "done"
	ExportError   = "error"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadState reads the full persisted state. Row-level corruption (an
// unparseable date, an invalid type) skips the row rather than failing the
// whole load.
func (r *SQLiteRepository) LoadState(ctx context.Context) ([]core.Transaction, []core.Account, *core.Profile, error) {
	accounts, err := r.loadAccounts(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	txs, err := r.loadTransactions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	profile, err := r.loadProfile(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	slog.InfoContext(ctx, "Loaded state from SQLite",
		"transactions", len(txs),
		"accounts", len(accounts),
		"has_profile", profile != nil)
	return txs, accounts, profile, nil
}

func (r *SQLiteRepository) loadAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance_cents, color FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance.Cents, &a.Color); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount_cents, description, category, date, account_id
		 FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			slog.Warn("Skipping unreadable transaction row", "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var date string
	if err := row.Scan(&t.ID, &t.Type, &t.Amount.Cents, &t.Description, &t.Category, &date, &t.AccountID); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Date = parsed
	return t, nil
}

func (r *SQLiteRepository) loadProfile(ctx context.Context) (*core.Profile, error) {
	var (
		p               core.Profile
		onboardingJSON  sql.NullString
		subscriptionEnd sql.NullString
		hasPaid         int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT name, email, password, phone, onboarding_json, has_paid, subscription_end_date
		 FROM profile WHERE id = 1`).
		Scan(&p.Name, &p.Email, &p.Password, &p.Phone, &onboardingJSON, &hasPaid, &subscriptionEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	p.HasPaid = hasPaid != 0
	if onboardingJSON.Valid && onboardingJSON.String != "" {
		var ob core.Onboarding
		if err := json.Unmarshal([]byte(onboardingJSON.String), &ob); err != nil {
			slog.Warn("Skipping corrupt onboarding answers", "error", err)
		} else {
			p.Onboarding = &ob
		}
	}
	if subscriptionEnd.Valid && subscriptionEnd.String != "" {
		if ts, err := time.Parse(time.RFC3339Nano, subscriptionEnd.String); err == nil {
			p.SubscriptionEndDate = &ts
		}
	}
	return &p, nil
}

// SaveAll rewrites both slices in full. Export status of rows that already
// existed is preserved across the rewrite.
func (r *SQLiteRepository) SaveAll(ctx context.Context, txs []core.Transaction, accounts []core.Account) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	statuses, err := exportStatuses(ctx, dbTx)
	if err != nil {
		return err
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := dbTx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}

	for i, a := range accounts {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, balance_cents, color, position) VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Balance.Cents, a.Color, i); err != nil {
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
	}
	for i, t := range txs {
		status := ExportPending
		if prev, ok := statuses[t.ID]; ok {
			status = prev
		}
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO transactions (id, type, amount_cents, description, category, date, account_id, position, export_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Type), t.Amount.Cents, t.Description, string(t.Category),
			t.Date.Format(time.RFC3339Nano), t.AccountID, i, status); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func exportStatuses(ctx context.Context, dbTx *sql.Tx) (map[string]string, error) {
	rows, err := dbTx.QueryContext(ctx, `SELECT id, export_status FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("query export statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scan export status: %w", err)
		}
		out[id] = status
	}
	return out, rows.Err()
}

// SaveProfile upserts the single profile row. A nil profile clears it.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, p *core.Profile) error {
	if p == nil {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM profile WHERE id = 1`); err != nil {
			return fmt.Errorf("clear profile: %w", err)
		}
		return nil
	}

	var onboardingJSON any
	if p.Onboarding != nil {
		data, err := json.Marshal(p.Onboarding)
		if err != nil {
			return fmt.Errorf("marshal onboarding: %w", err)
		}
		onboardingJSON = string(data)
	}
	var subscriptionEnd any
	if p.SubscriptionEndDate != nil {
		subscriptionEnd = p.SubscriptionEndDate.Format(time.RFC3339Nano)
	}
	hasPaid := 0
	if p.HasPaid {
		hasPaid = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profile (id, name, email, password, phone, onboarding_json, has_paid, subscription_end_date)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   email = excluded.email,
		   password = excluded.password,
		   phone = excluded.phone,
		   onboarding_json = excluded.onboarding_json,
		   has_paid = excluded.has_paid,
		   subscription_end_date = excluded.subscription_end_date`,
		p.Name, p.Email, p.Password, p.Phone, onboardingJSON, hasPaid, subscriptionEnd)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetTransaction retrieves a single transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, amount_cents, description, category, date, account_id
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// GetPendingExport returns transactions not yet appended to the backup
// spreadsheet, oldest first. Rows that previously failed are included so the
// catch-up pass retries them.
func (r *SQLiteRepository) GetPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount_cents, description, category, date, account_id
		 FROM transactions WHERE export_status IN (?, ?) ORDER BY position DESC LIMIT ?`,
		ExportPending, ExportError, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			slog.Warn("Skipping unreadable pending transaction", "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkExported records a successful backup append.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	return r.setExportStatus(ctx, id, ExportDone)
}

// MarkExportError records a failed backup append so operators can spot it.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	return r.setExportStatus(ctx, id, ExportError)
}

func (r *SQLiteRepository) setExportStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_status = ?, exported_at = ? WHERE id = ?`,
		status, time.Now().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("set export status %s: %w", status, err)
	}
	return nil
}
