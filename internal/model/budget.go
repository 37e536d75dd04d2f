package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Category is an expense category. Matching on Name is case-insensitive.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExpenseRow is a validated, not yet submitted expense.
// CategoryID is the 1-based position of the category in the registry list.
type ExpenseRow struct {
	CategoryID  int             `json:"cate_id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"`
}

// Expense is a persisted expense as listed by the API.
type Expense struct {
	ID           int             `json:"id"`
	CategoryID   int             `json:"cate_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseDate  string          `json:"expense_date"`
}

// Date parses ExpenseDate. Server timestamps are truncated to the day.
func (e Expense) Date() (time.Time, bool) {
	return ParseWireDate(e.ExpenseDate)
}

// Earning is one month's income record.
type Earning struct {
	ID          int             `json:"id,omitempty"`
	UserID      int             `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	EarningDate string          `json:"earning_date"`
}

// Date parses EarningDate.
func (e Earning) Date() (time.Time, bool) {
	return ParseWireDate(e.EarningDate)
}

// ParseWireDate accepts the date shapes the API emits: plain dates,
// RFC 3339 timestamps and RFC 1123 (Flask's default datetime encoding).
func ParseWireDate(s string) (time.Time, bool) {
	if len(s) >= 10 {
		if t, err := time.Parse(DateLayout, s[:10]); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{time.RFC3339, time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
