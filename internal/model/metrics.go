package model

// Series is the server's aggregate chart shape: parallel label and value lists.
type Series struct {
	X []string  `json:"x"`
	Y []float64 `json:"y"`
}

// Len returns the number of complete (label, value) pairs.
func (s Series) Len() int {
	return min(len(s.X), len(s.Y))
}

// Charts is the payload of /dashboard/charts/:id.
type Charts struct {
	CategoryTotals Series `json:"category_totals"`
	ExpenseTrend   Series `json:"expense_trend"`
	EarningTrend   Series `json:"earning_trend"`
}

// MonthlySeries carries month labels with earning and expense values per month.
type MonthlySeries struct {
	X       []string  `json:"x"`
	Earning []float64 `json:"earning"`
	Expense []float64 `json:"expense"`
}

// Summary is the payload of /dashboard/summary/:id.
type Summary struct {
	TotalEarning float64       `json:"total_earning"`
	TotalExpense float64       `json:"total_expense"`
	Cumulative   MonthlySeries `json:"cumulative"`
}
