// Package ledger owns the transaction and account lists and keeps every
// account balance consistent with the transactions referencing it. All
// mutation goes through this type; direct list access is never exposed, so
// the balance invariant cannot be bypassed.
package ledger

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"nexo/internal/core"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
)

// Ledger holds the in-memory state. Transactions are kept most-recent-first.
// Balances are adjusted incrementally on each mutation, never recomputed from
// history.
type Ledger struct {
	mu           sync.Mutex
	transactions []core.Transaction
	accounts     []core.Account
}

// New creates a ledger seeded with previously persisted state. The slices are
// copied; callers keep no handle into the ledger's internals.
func New(transactions []core.Transaction, accounts []core.Account) *Ledger {
	l := &Ledger{
		transactions: make([]core.Transaction, len(transactions)),
		accounts:     make([]core.Account, len(accounts)),
	}
	copy(l.transactions, transactions)
	copy(l.accounts, accounts)
	return l
}

// AddTransaction validates t, assigns it an id if absent, prepends it to the
// list and applies its effect to the referenced account. Nothing is mutated
// when validation fails or the account does not exist.
func (l *Ledger) AddTransaction(t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.accountIndex(t.AccountID)
	if idx < 0 {
		return core.Transaction{}, ErrAccountNotFound
	}

	l.transactions = append([]core.Transaction{t}, l.transactions...)
	l.accounts[idx].Balance.Cents += t.Signed()
	return t, nil
}

// UpdateTransaction replaces the stored transaction carrying t.ID. The old
// effect is reversed and the new one applied as a single composed delta, so
// updating an expense of 50 to 80 on the same account moves the balance by
// exactly -30.
func (l *Ledger) UpdateTransaction(t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := -1
	for i, old := range l.transactions {
		if old.ID == t.ID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return core.Transaction{}, ErrTransactionNotFound
	}
	old := l.transactions[pos]

	oldIdx := l.accountIndex(old.AccountID)
	newIdx := l.accountIndex(t.AccountID)
	if newIdx < 0 {
		return core.Transaction{}, ErrAccountNotFound
	}

	if oldIdx >= 0 {
		l.accounts[oldIdx].Balance.Cents -= old.Signed()
	}
	l.accounts[newIdx].Balance.Cents += t.Signed()
	l.transactions[pos] = t
	return t, nil
}

// DeleteTransaction reverses the transaction's effect on its account and
// removes it from the list.
func (l *Ledger) DeleteTransaction(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := -1
	for i, t := range l.transactions {
		if t.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ErrTransactionNotFound
	}
	old := l.transactions[pos]

	if idx := l.accountIndex(old.AccountID); idx >= 0 {
		l.accounts[idx].Balance.Cents -= old.Signed()
	}
	l.transactions = append(l.transactions[:pos], l.transactions[pos+1:]...)
	return nil
}

// AddAccount registers a new account with its configured initial balance.
func (l *Ledger) AddAccount(name string, initial core.Money, color string) (core.Account, error) {
	a := core.Account{
		ID:      uuid.NewString(),
		Name:    name,
		Balance: initial,
		Color:   color,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = append(l.accounts, a)
	return a, nil
}

// SetAccountBalance rebases an account to an explicit balance. This is the
// manual adjustment flow; it deliberately sits outside the transaction
// invariant, acting as a new initial balance.
func (l *Ledger) SetAccountBalance(id string, balance core.Money) (core.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.accountIndex(id)
	if idx < 0 {
		return core.Account{}, ErrAccountNotFound
	}
	l.accounts[idx].Balance = balance
	return l.accounts[idx], nil
}

// Transactions returns a copy of the transaction list, most recent first.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Accounts returns a copy of the account list.
func (l *Ledger) Accounts() []core.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Account, len(l.accounts))
	copy(out, l.accounts)
	return out
}

// Account returns the account with the given id.
func (l *Ledger) Account(id string) (core.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx := l.accountIndex(id); idx >= 0 {
		return l.accounts[idx], true
	}
	return core.Account{}, false
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id string) (core.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// accountIndex must be called with the lock held.
func (l *Ledger) accountIndex(id string) int {
	for i, a := range l.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
