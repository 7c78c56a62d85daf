// Package report derives read-only chart and summary data from the
// transaction list. Every function is a pure transformation of its inputs and
// an explicit "now"; nothing here mutates ledger state.
package report

import (
	"time"

	"nexo/internal/core"
)

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category core.Category `json:"category"`
	Total    core.Money    `json:"total"`
}

// DayTotal is the summed expense amount for one calendar day.
type DayTotal struct {
	Day   time.Time  `json:"day"`
	Label string     `json:"label"` // abbreviated weekday
	Total core.Money `json:"total"`
}

// MonthTotal is the summed expense amount for one calendar month.
type MonthTotal struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Total core.Money `json:"total"`
}

// MonthSummary aggregates the current calendar month plus the overall
// balance position.
type MonthSummary struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	Income       core.Money `json:"income"`
	Expenses     core.Money `json:"expenses"`
	Net          core.Money `json:"net"`
	TotalBalance core.Money `json:"total_balance"`
}

// CategoryTotals sums expense amounts per category in the fixed display
// order. Renda never appears and categories with no spend are omitted.
func CategoryTotals(txs []core.Transaction) []CategoryTotal {
	sums := make(map[core.Category]int64)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if t.Category == core.CategoryIncome {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}

	var out []CategoryTotal
	for _, c := range core.ExpenseCategories() {
		if total := sums[c]; total > 0 {
			out = append(out, CategoryTotal{Category: c, Total: core.Money{Cents: total}})
		}
	}
	return out
}

// LastDays buckets expense amounts into the trailing n calendar days,
// inclusive of now's day, oldest first. Days without expenses report zero so
// the series always has exactly n entries.
func LastDays(txs []core.Transaction, now time.Time, n int) []DayTotal {
	out := make([]DayTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		var total int64
		for _, t := range txs {
			if t.Type != core.Expense {
				continue
			}
			if sameDay(t.Date.In(now.Location()), day) {
				total += t.Amount.Cents
			}
		}
		out = append(out, DayTotal{
			Day:   day,
			Label: weekdayAbbr(day.Weekday()),
			Total: core.Money{Cents: total},
		})
	}
	return out
}

// SummarizeMonth totals income and expenses for now's calendar month and
// year, using local calendar semantics, alongside the summed account
// balances.
func SummarizeMonth(txs []core.Transaction, accounts []core.Account, now time.Time) MonthSummary {
	s := MonthSummary{Year: now.Year(), Month: now.Month()}
	for _, t := range txs {
		d := t.Date.In(now.Location())
		if d.Year() != now.Year() || d.Month() != now.Month() {
			continue
		}
		switch t.Type {
		case core.Income:
			s.Income.Cents += t.Amount.Cents
		case core.Expense:
			s.Expenses.Cents += t.Amount.Cents
		}
	}
	s.Net.Cents = s.Income.Cents - s.Expenses.Cents
	for _, a := range accounts {
		s.TotalBalance.Cents += a.Balance.Cents
	}
	return s
}

// MonthlyHistory sums expense amounts per calendar month for the trailing
// months window, inclusive of now's month, oldest first. Months without
// expenses report zero.
func MonthlyHistory(txs []core.Transaction, now time.Time, months int) []MonthTotal {
	out := make([]MonthTotal, 0, months)
	for i := months - 1; i >= 0; i-- {
		ref := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		var total int64
		for _, t := range txs {
			d := t.Date.In(now.Location())
			if t.Type == core.Expense && d.Year() == ref.Year() && d.Month() == ref.Month() {
				total += t.Amount.Cents
			}
		}
		out = append(out, MonthTotal{Year: ref.Year(), Month: ref.Month(), Total: core.Money{Cents: total}})
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

var weekdayAbbrs = [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}

func weekdayAbbr(d time.Weekday) string {
	return weekdayAbbrs[int(d)%7]
}
