package api

import (
	"context"
	"fmt"

	"github.com/smartexpense/smartexpense/internal/model"
)

type earningResponse struct {
	Earning *model.Earning `json:"earning"`
}

// LatestEarning returns the user's most recent earning record.
func (c *Client) LatestEarning(ctx context.Context, userID int) (model.Earning, error) {
	var resp earningResponse
	if err := c.get(ctx, fmt.Sprintf("/earning/latest/%d", userID), nil, &resp); err != nil {
		return model.Earning{}, err
	}
	if resp.Earning == nil {
		return model.Earning{}, fmt.Errorf("%w: no earning in response", ErrMalformed)
	}
	return *resp.Earning, nil
}

// AddEarning records income for the month of e.EarningDate. The server
// replaces an existing record for the same month.
func (c *Client) AddEarning(ctx context.Context, e model.Earning) (model.Earning, error) {
	var resp earningResponse
	if err := c.post(ctx, "/earning/add", e, &resp); err != nil {
		return model.Earning{}, err
	}
	if resp.Earning == nil {
		return e, nil
	}
	return *resp.Earning, nil
}
