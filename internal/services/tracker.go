// Package services wires the in-memory ledger to persistence and the event
// bus. Handlers talk to the Tracker, never to the ledger or store directly.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nexo/internal/core"
	"nexo/internal/ledger"
)

// ErrNoProfile is returned when an operation needs a registered profile and
// none exists.
var ErrNoProfile = errors.New("no profile registered")

// Store persists ledger snapshots and the user profile. Both the JSON
// snapshot backend and the SQLite backend implement it.
type Store interface {
	SaveAll(ctx context.Context, transactions []core.Transaction, accounts []core.Account) error
	SaveProfile(ctx context.Context, profile *core.Profile) error
	Close() error
}

// Publisher emits transaction events after mutations. Nil-able; the tracker
// works fully offline without one.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, id, action string) error
}

const (
	ActionRecorded = "recorded"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
)

const (
	defaultAccountName  = "Carteira Principal"
	defaultAccountColor = "818CF8"
)

// Tracker orchestrates mutations: ledger first, then persistence, then a
// best-effort event publish. Publish failures never fail the mutation.
type Tracker struct {
	ledger    *ledger.Ledger
	store     Store
	publisher Publisher

	mu      sync.Mutex
	profile *core.Profile
}

func NewTracker(l *ledger.Ledger, store Store, publisher Publisher, profile *core.Profile) *Tracker {
	return &Tracker{
		ledger:    l,
		store:     store,
		publisher: publisher,
		profile:   profile,
	}
}

// AddTransaction records a transaction and persists the full state.
func (t *Tracker) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	created, err := t.ledger.AddTransaction(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := t.persist(ctx); err != nil {
		return core.Transaction{}, fmt.Errorf("persist after add: %w", err)
	}
	t.publish(ctx, created.ID, ActionRecorded)
	return created, nil
}

// UpdateTransaction replaces a transaction by id and persists the full state.
func (t *Tracker) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	updated, err := t.ledger.UpdateTransaction(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := t.persist(ctx); err != nil {
		return core.Transaction{}, fmt.Errorf("persist after update: %w", err)
	}
	t.publish(ctx, updated.ID, ActionUpdated)
	return updated, nil
}

// DeleteTransaction removes a transaction, reversing its balance effect.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	if err := t.ledger.DeleteTransaction(id); err != nil {
		return err
	}
	if err := t.persist(ctx); err != nil {
		return fmt.Errorf("persist after delete: %w", err)
	}
	t.publish(ctx, id, ActionDeleted)
	return nil
}

// AddAccount registers a new account.
func (t *Tracker) AddAccount(ctx context.Context, name string, initial core.Money, color string) (core.Account, error) {
	account, err := t.ledger.AddAccount(name, initial, color)
	if err != nil {
		return core.Account{}, err
	}
	if err := t.persist(ctx); err != nil {
		return core.Account{}, fmt.Errorf("persist after add account: %w", err)
	}
	return account, nil
}

// EnsureDefaultAccount seeds the wallet account on a fresh install so the
// first transaction has an account to land on. No-op when any account exists.
func (t *Tracker) EnsureDefaultAccount(ctx context.Context) error {
	if len(t.ledger.Accounts()) > 0 {
		return nil
	}
	if _, err := t.AddAccount(ctx, defaultAccountName, core.Money{}, defaultAccountColor); err != nil {
		return fmt.Errorf("seed default account: %w", err)
	}
	return nil
}

// SetAccountBalance rebases an account to an explicit balance.
func (t *Tracker) SetAccountBalance(ctx context.Context, id string, balance core.Money) (core.Account, error) {
	account, err := t.ledger.SetAccountBalance(id, balance)
	if err != nil {
		return core.Account{}, err
	}
	if err := t.persist(ctx); err != nil {
		return core.Account{}, fmt.Errorf("persist after set balance: %w", err)
	}
	return account, nil
}

func (t *Tracker) Transactions() []core.Transaction { return t.ledger.Transactions() }
func (t *Tracker) Accounts() []core.Account         { return t.ledger.Accounts() }

func (t *Tracker) Transaction(id string) (core.Transaction, bool) {
	return t.ledger.Transaction(id)
}

// SetProfile stores the user profile (registration and profile edits).
func (t *Tracker) SetProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.SaveProfile(ctx, &p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	t.profile = &p
	return nil
}

// Profile returns a copy of the stored profile, or false when none exists.
func (t *Tracker) Profile() (core.Profile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return core.Profile{}, false
	}
	return *t.profile, true
}

// Login checks credentials against the stored profile. This is a local
// simulation; there is no real authentication.
func (t *Tracker) Login(email, password string) (core.Profile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return core.Profile{}, false
	}
	if t.profile.Email != email || t.profile.Password != password {
		return core.Profile{}, false
	}
	return *t.profile, true
}

// ActivateSubscription stamps the profile after a successful payment.
func (t *Tracker) ActivateSubscription(ctx context.Context, until time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return ErrNoProfile
	}

	updated := *t.profile
	updated.HasPaid = true
	updated.SubscriptionEndDate = &until
	if err := t.store.SaveProfile(ctx, &updated); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	t.profile = &updated
	return nil
}

func (t *Tracker) persist(ctx context.Context) error {
	return t.store.SaveAll(ctx, t.ledger.Transactions(), t.ledger.Accounts())
}

func (t *Tracker) publish(ctx context.Context, id, action string) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishTransactionEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}

func (t *Tracker) Close() error {
	if t.store != nil {
		return t.store.Close()
	}
	return nil
}
