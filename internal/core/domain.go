package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Categories match the fixed set the tracker was launched with. Renda is
// reserved for income transactions and never appears in expense aggregations.
const (
	CategoryFood      Category = "Alimentação"
	CategoryTransport Category = "Transporte"
	CategoryHousing   Category = "Moradia"
	CategoryLeisure   Category = "Lazer"
	CategoryHealth    Category = "Saúde"
	CategoryEducation Category = "Educação"
	CategoryOther     Category = "Outros"
	CategoryIncome    Category = "Renda"
)

type (
	TransactionType string

	Category string

	Money struct {
		Cents int64 `json:"cents"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    Category        `json:"category"`
		Date        time.Time       `json:"date"`
		AccountID   string          `json:"account_id"`
	}

	Account struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Balance Money  `json:"balance"` // signed; derived from transactions
		Color   string `json:"color"`
	}

	Onboarding struct {
		TracksSpending string `json:"anota_gastos"`
		BiggestBurden  string `json:"maior_peso"`
		Goal           string `json:"objetivo"`
	}

	Profile struct {
		Name                string      `json:"name"`
		Email               string      `json:"email"`
		Password            string      `json:"password,omitempty"`
		Phone               string      `json:"phone,omitempty"`
		Onboarding          *Onboarding `json:"onboarding,omitempty"`
		HasPaid             bool        `json:"has_paid"`
		SubscriptionEndDate *time.Time  `json:"subscription_end_date,omitempty"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrMissingAccount     = errors.New("missing account reference")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 100 characters)")
	ErrEmptyEmail         = errors.New("empty email")
)

// ExpenseCategories returns the spendable categories in display order.
func ExpenseCategories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryHousing,
		CategoryLeisure,
		CategoryHealth,
		CategoryEducation,
		CategoryOther,
	}
}

// CategoryColor returns the display color for a category as a hex string
// without the leading '#'.
func CategoryColor(c Category) string {
	switch c {
	case CategoryFood:
		return "C084FC"
	case CategoryTransport:
		return "818CF8"
	case CategoryHousing:
		return "A78BFA"
	case CategoryLeisure:
		return "F472B6"
	case CategoryHealth:
		return "F87171"
	case CategoryEducation:
		return "34D399"
	case CategoryIncome:
		return "10B981"
	default:
		return "94A3B8"
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Signed returns the amount's effect on an account balance in cents:
// positive for income, negative for expenses.
func (t Transaction) Signed() int64 {
	if t.Type == Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.validCategory(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	return nil
}

// validCategory pins income transactions to Renda and expenses to the
// spendable set, so income can never leak into expense aggregations.
func (t Transaction) validCategory() error {
	if t.Type == Income {
		if t.Category != CategoryIncome {
			return ErrUnknownCategory
		}
		return nil
	}
	for _, c := range ExpenseCategories() {
		if t.Category == c {
			return nil
		}
	}
	return ErrUnknownCategory
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

func (p Profile) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(strings.TrimSpace(p.Email)) == 0 {
		return ErrEmptyEmail
	}
	return nil
}
