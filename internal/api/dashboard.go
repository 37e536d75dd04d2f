package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/smartexpense/smartexpense/internal/model"
)

type chartsResponse struct {
	Charts model.Charts `json:"charts"`
}

type summaryResponse struct {
	Summary model.Summary `json:"summary"`
}

func monthQuery(month, year int) url.Values {
	return url.Values{
		"month": {strconv.Itoa(month)},
		"year":  {strconv.Itoa(year)},
	}
}

// Charts fetches the chart series for month/year.
func (c *Client) Charts(ctx context.Context, userID, month, year int) (model.Charts, error) {
	var resp chartsResponse
	if err := c.get(ctx, fmt.Sprintf("/dashboard/charts/%d", userID), monthQuery(month, year), &resp); err != nil {
		return model.Charts{}, err
	}
	return resp.Charts, nil
}

// Summary fetches totals and the cumulative monthly series for month/year.
func (c *Client) Summary(ctx context.Context, userID, month, year int) (model.Summary, error) {
	var resp summaryResponse
	if err := c.get(ctx, fmt.Sprintf("/dashboard/summary/%d", userID), monthQuery(month, year), &resp); err != nil {
		return model.Summary{}, err
	}
	return resp.Summary, nil
}
