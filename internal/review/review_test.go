package review

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/model"
)

type fakeSource struct {
	earning    model.Earning
	earningErr error
	expenses   []model.Expense
}

func (f fakeSource) LatestEarning(context.Context, int) (model.Earning, error) {
	return f.earning, f.earningErr
}

func (f fakeSource) Expenses(context.Context, int) ([]model.Expense, error) {
	return f.expenses, nil
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBuild(t *testing.T) {
	src := fakeSource{
		earning: model.Earning{UserID: 1, Amount: amount("5000"), EarningDate: "2024-03-01"},
		expenses: []model.Expense{
			{ID: 1, Amount: amount("250.50"), ExpenseDate: "2024-03-05"},
			{ID: 2, Amount: amount("1200"), ExpenseDate: "Fri, 01 Mar 2024 00:00:00 GMT"},
			{ID: 3, Amount: amount("99"), ExpenseDate: "2024-02-29"},
			{ID: 4, Amount: amount("10"), ExpenseDate: "2023-03-10"},
		},
	}

	s, err := Build(context.Background(), src, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}
	if !s.Total.Equal(amount("1450.5")) {
		t.Errorf("Total = %s", s.Total)
	}
	if !s.Remaining.Equal(amount("3549.5")) {
		t.Errorf("Remaining = %s", s.Remaining)
	}
	if s.Month.Format("2006-01") != "2024-03" {
		t.Errorf("Month = %v", s.Month)
	}
}

func TestBuildWithoutEarning(t *testing.T) {
	src := fakeSource{earningErr: &api.APIError{Status: 404, Message: "No earning found"}}
	_, err := Build(context.Background(), src, 1)
	if !errors.Is(err, ErrNoEarning) {
		t.Fatalf("err = %v, want ErrNoEarning", err)
	}

	src = fakeSource{earningErr: api.ErrConnect}
	_, err = Build(context.Background(), src, 1)
	if errors.Is(err, ErrNoEarning) || !errors.Is(err, api.ErrConnect) {
		t.Fatalf("err = %v, want connectivity error", err)
	}
}
