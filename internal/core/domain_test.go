package core

import (
	"strings"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "t1",
		Type:        Expense,
		Amount:      Money{Cents: 5000},
		Description: "Almoço",
		Category:    CategoryFood,
		Date:        time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local),
		AccountID:   "a1",
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount.Cents = 0 }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount.Cents = -100 }, ErrInvalidAmount},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
		{"unknown category", func(tx *Transaction) { tx.Category = "Viagens" }, ErrUnknownCategory},
		{"income with expense category", func(tx *Transaction) { tx.Type = Income }, ErrUnknownCategory},
		{"expense with income category", func(tx *Transaction) { tx.Category = CategoryIncome }, ErrUnknownCategory},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"missing account", func(tx *Transaction) { tx.AccountID = "" }, ErrMissingAccount},
	}
	for _, tc := range cases {
		tx := validTransaction()
		tc.mutate(&tx)
		if err := tx.Validate(); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestIncomeCategoryValid(t *testing.T) {
	tx := validTransaction()
	tx.Type = Income
	tx.Category = CategoryIncome
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestTransactionSigned(t *testing.T) {
	tx := validTransaction()
	if got := tx.Signed(); got != -5000 {
		t.Fatalf("expense signed: expected -5000, got %d", got)
	}
	tx.Type = Income
	tx.Category = CategoryIncome
	if got := tx.Signed(); got != 5000 {
		t.Fatalf("income signed: expected 5000, got %d", got)
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Nubank"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: " "}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Account{Name: strings.Repeat("a", 101)}).Validate(); err != ErrNameTooLong {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	if err := (Profile{Name: "Ana", Email: "ana@example.com"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Profile{Email: "ana@example.com"}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Profile{Name: "Ana"}).Validate(); err != ErrEmptyEmail {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
}

func TestExpenseCategoriesExcludeIncome(t *testing.T) {
	for _, c := range ExpenseCategories() {
		if c == CategoryIncome {
			t.Fatal("expense categories must not contain Renda")
		}
	}
}
