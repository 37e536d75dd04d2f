// Package review assembles the post-import summary: the latest earning
// against the expenses recorded in its month.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/model"
)

// ErrNoEarning means the user has not recorded an earning yet.
var ErrNoEarning = errors.New("no earning found, please add earning first")

// Source is the subset of the API the review needs.
type Source interface {
	LatestEarning(ctx context.Context, userID int) (model.Earning, error)
	Expenses(ctx context.Context, userID int) ([]model.Expense, error)
}

// Summary is the review screen's content.
type Summary struct {
	Earning   model.Earning
	Month     time.Time
	Expenses  []model.Expense
	Total     decimal.Decimal
	Remaining decimal.Decimal
}

// Count returns the number of expenses in the month.
func (s Summary) Count() int { return len(s.Expenses) }

// Build loads the latest earning and the user's expenses dated in the
// same calendar month.
func Build(ctx context.Context, src Source, userID int) (Summary, error) {
	earning, err := src.LatestEarning(ctx, userID)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return Summary{}, fmt.Errorf("%w: %w", ErrNoEarning, err)
		}
		return Summary{}, err
	}
	month, ok := earning.Date()
	if !ok {
		return Summary{}, fmt.Errorf("earning has an unreadable date %q", earning.EarningDate)
	}

	all, err := src.Expenses(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading expenses: %w", err)
	}

	s := Summary{
		Earning: earning,
		Month:   time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC),
		Total:   decimal.Zero,
	}
	for _, e := range all {
		d, ok := e.Date()
		if !ok || !model.SameMonth(d, month) {
			continue
		}
		s.Expenses = append(s.Expenses, e)
		s.Total = s.Total.Add(e.Amount)
	}
	s.Remaining = earning.Amount.Sub(s.Total)
	return s, nil
}
