package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/smartexpense/smartexpense/internal/model"
)

type categoriesResponse struct {
	Categories json.RawMessage `json:"categories"`
}

// Categories lists every expense category in server order.
// Items may be plain names or {id, name} objects.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var resp categoriesResponse
	if err := c.get(ctx, "/category/all", nil, &resp); err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(resp.Categories)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: categories is not a list", ErrMalformed)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: categories: %w", ErrMalformed, err)
	}

	cats := make([]model.Category, 0, len(items))
	for i, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			cats = append(cats, model.Category{ID: i + 1, Name: name})
			continue
		}
		var cat model.Category
		if err := json.Unmarshal(item, &cat); err != nil || cat.Name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", ErrMalformed, i+1)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

type addBulkRequest struct {
	UserID   int                `json:"user_id"`
	Expenses []model.ExpenseRow `json:"expenses"`
}

type addBulkResponse struct {
	Inserted []json.RawMessage `json:"inserted"`
}

// AddExpenses submits rows in one call. The server either stores all of
// them or reports a failure; there is no partial acknowledgement.
func (c *Client) AddExpenses(ctx context.Context, userID int, rows []model.ExpenseRow) (int, error) {
	var resp addBulkResponse
	req := addBulkRequest{UserID: userID, Expenses: rows}
	if err := c.post(ctx, "/expense/add_bulk", req, &resp); err != nil {
		return 0, err
	}
	return len(resp.Inserted), nil
}

type expensesResponse struct {
	Expenses []model.Expense `json:"expenses"`
}

// Expenses lists the user's expenses.
func (c *Client) Expenses(ctx context.Context, userID int) ([]model.Expense, error) {
	var resp expensesResponse
	q := url.Values{"user_id": {strconv.Itoa(userID)}}
	if err := c.get(ctx, "/expense/all", q, &resp); err != nil {
		return nil, err
	}
	return resp.Expenses, nil
}

// ExpensesByMonth lists the user's expenses dated in month/year.
func (c *Client) ExpensesByMonth(ctx context.Context, userID, month, year int) ([]model.Expense, error) {
	var resp expensesResponse
	q := url.Values{
		"user_id": {strconv.Itoa(userID)},
		"month":   {strconv.Itoa(month)},
		"year":    {strconv.Itoa(year)},
	}
	if err := c.get(ctx, "/expense/by_month", q, &resp); err != nil {
		return nil, err
	}
	return resp.Expenses, nil
}
