package ledger

import (
	"testing"
	"time"

	"nexo/internal/core"
)

func testDate() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)
}

func expense(accountID string, cents int64) core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: "Mercado",
		Category:    core.CategoryFood,
		Date:        testDate(),
		AccountID:   accountID,
	}
}

func income(accountID string, cents int64) core.Transaction {
	return core.Transaction{
		Type:        core.Income,
		Amount:      core.Money{Cents: cents},
		Description: "Salário",
		Category:    core.CategoryIncome,
		Date:        testDate(),
		AccountID:   accountID,
	}
}

func newAccount(t *testing.T, l *Ledger, name string, cents int64) core.Account {
	t.Helper()
	a, err := l.AddAccount(name, core.Money{Cents: cents}, "bg-purple-600")
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	return a
}

func balance(t *testing.T, l *Ledger, id string) int64 {
	t.Helper()
	a, ok := l.Account(id)
	if !ok {
		t.Fatalf("account %s not found", id)
	}
	return a.Balance.Cents
}

func TestAddIncomeAndExpenseSign(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 0)

	if _, err := l.AddTransaction(income(a.ID, 20000)); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if got := balance(t, l, a.ID); got != 20000 {
		t.Fatalf("after income: expected 20000, got %d", got)
	}

	if _, err := l.AddTransaction(expense(a.ID, 5000)); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if got := balance(t, l, a.ID); got != 15000 {
		t.Fatalf("after expense: expected 15000, got %d", got)
	}
}

func TestAddPrependsMostRecentFirst(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 0)

	first, _ := l.AddTransaction(income(a.ID, 100))
	second, _ := l.AddTransaction(income(a.ID, 200))

	txs := l.Transactions()
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].ID != second.ID || txs[1].ID != first.ID {
		t.Fatal("transactions not ordered most-recent-first")
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 10000)

	bad := expense(a.ID, 0)
	if _, err := l.AddTransaction(bad); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := l.AddTransaction(expense("ghost", 100)); err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	// No partial application.
	if got := balance(t, l, a.ID); got != 10000 {
		t.Fatalf("balance must be untouched, got %d", got)
	}
	if len(l.Transactions()) != 0 {
		t.Fatal("transaction list must be untouched")
	}
}

func TestUpdateSameAccountAmountChange(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 10000)

	tx, err := l.AddTransaction(expense(a.ID, 5000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := balance(t, l, a.ID); got != 5000 {
		t.Fatalf("after add: expected 5000, got %d", got)
	}

	tx.Amount.Cents = 8000
	if _, err := l.UpdateTransaction(tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := balance(t, l, a.ID); got != 2000 {
		t.Fatalf("after update: expected 2000, got %d", got)
	}
}

func TestUpdateCrossAccountMove(t *testing.T) {
	l := New(nil, nil)
	x := newAccount(t, l, "X", 10000)
	y := newAccount(t, l, "Y", 10000)

	tx, err := l.AddTransaction(expense(x.ID, 3000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := balance(t, l, x.ID); got != 7000 {
		t.Fatalf("X after add: expected 7000, got %d", got)
	}

	tx.AccountID = y.ID
	if _, err := l.UpdateTransaction(tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := balance(t, l, x.ID); got != 10000 {
		t.Fatalf("X after move: expected 10000, got %d", got)
	}
	if got := balance(t, l, y.ID); got != 7000 {
		t.Fatalf("Y after move: expected 7000, got %d", got)
	}
}

func TestUpdateUnknownIDIsNoOp(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 10000)

	ghost := expense(a.ID, 100)
	ghost.ID = "missing"
	if _, err := l.UpdateTransaction(ghost); err != ErrTransactionNotFound {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if got := balance(t, l, a.ID); got != 10000 {
		t.Fatalf("balance must be untouched, got %d", got)
	}
}

func TestDeleteReversesEffect(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 10000)

	tx, _ := l.AddTransaction(expense(a.ID, 3000))
	if err := l.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := balance(t, l, a.ID); got != 10000 {
		t.Fatalf("after delete: expected 10000, got %d", got)
	}
	if len(l.Transactions()) != 0 {
		t.Fatal("transaction must be removed")
	}
	if err := l.DeleteTransaction(tx.ID); err != ErrTransactionNotFound {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestSetAccountBalanceRebaseline(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 1000)

	updated, err := l.SetAccountBalance(a.ID, core.Money{Cents: 123456})
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if updated.Balance.Cents != 123456 {
		t.Fatalf("expected 123456, got %d", updated.Balance.Cents)
	}
	if _, err := l.SetAccountBalance("ghost", core.Money{}); err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

// TestBalanceInvariant drives a mixed sequence of valid mutations and checks
// that every account balance equals its initial value plus the signed sum of
// the transactions currently referencing it.
func TestBalanceInvariant(t *testing.T) {
	l := New(nil, nil)
	x := newAccount(t, l, "X", 50000)
	y := newAccount(t, l, "Y", -2000)

	initial := map[string]int64{x.ID: 50000, y.ID: -2000}

	t1, _ := l.AddTransaction(income(x.ID, 12000))
	t2, _ := l.AddTransaction(expense(x.ID, 700))
	l.AddTransaction(expense(y.ID, 4500))
	t2.Amount.Cents = 1300
	l.UpdateTransaction(t2)
	t1.AccountID = y.ID
	l.UpdateTransaction(t1)
	l.DeleteTransaction(t2.ID)
	l.AddTransaction(income(y.ID, 99))

	sums := map[string]int64{}
	for _, tx := range l.Transactions() {
		sums[tx.AccountID] += tx.Signed()
	}
	for _, a := range l.Accounts() {
		want := initial[a.ID] + sums[a.ID]
		if a.Balance.Cents != want {
			t.Fatalf("account %s: balance %d does not match initial+sum %d", a.Name, a.Balance.Cents, want)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	l := New(nil, nil)
	a := newAccount(t, l, "Carteira", 100)
	l.AddTransaction(income(a.ID, 100))

	accs := l.Accounts()
	accs[0].Balance.Cents = -1
	if got := balance(t, l, a.ID); got != 200 {
		t.Fatalf("mutating the returned slice must not affect the ledger, got %d", got)
	}

	txs := l.Transactions()
	txs[0].Amount.Cents = -1
	fresh, _ := l.Transaction(txs[0].ID)
	if fresh.Amount.Cents != 100 {
		t.Fatal("mutating the returned slice must not affect stored transactions")
	}
}
