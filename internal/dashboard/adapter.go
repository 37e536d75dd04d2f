// Package dashboard reshapes the API's aggregate series for charting and
// keeps the dashboard in step with the selected month.
package dashboard

import (
	"time"

	"github.com/smartexpense/smartexpense/internal/model"
)

// Point is one labelled value.
type Point struct {
	Label string
	Value float64
}

// Slice is a pie segment. Share is the fraction of the whole, 0..1.
type Slice struct {
	Label string
	Value float64
	Share float64
}

// MonthPoint pairs a month's earning and expense.
type MonthPoint struct {
	Label   string
	Earning float64
	Expense float64
}

// View is everything the dashboard draws.
type View struct {
	CategoryBars []Point
	CategoryPie  []Slice
	ExpenseTrend []Point
	EarningTrend []Point
	// Cumulative starts with a zero month so the lines rise from the origin.
	Cumulative []MonthPoint

	TotalEarning float64
	TotalExpense float64
}

// Remaining is earning left after expenses.
func (v View) Remaining() float64 {
	return v.TotalEarning - v.TotalExpense
}

// Empty reports whether there is nothing to chart.
func (v View) Empty() bool {
	return len(v.CategoryBars) == 0 && len(v.ExpenseTrend) == 0 &&
		len(v.EarningTrend) == 0 && len(v.Cumulative) <= 1
}

// Adapt zips the server series into chart-ready points.
func Adapt(c model.Charts, s model.Summary) View {
	v := View{
		CategoryBars: points(c.CategoryTotals),
		ExpenseTrend: points(c.ExpenseTrend),
		EarningTrend: points(c.EarningTrend),
		Cumulative:   cumulative(s.Cumulative),
		TotalEarning: s.TotalEarning,
		TotalExpense: s.TotalExpense,
	}
	v.CategoryPie = pie(v.CategoryBars)
	return v
}

func points(s model.Series) []Point {
	n := s.Len()
	out := make([]Point, n)
	for i := range n {
		out[i] = Point{Label: s.X[i], Value: s.Y[i]}
	}
	return out
}

func pie(bars []Point) []Slice {
	var total float64
	for _, p := range bars {
		total += p.Value
	}
	out := make([]Slice, len(bars))
	for i, p := range bars {
		out[i] = Slice{Label: p.Label, Value: p.Value}
		if total > 0 {
			out[i].Share = p.Value / total
		}
	}
	return out
}

func cumulative(m model.MonthlySeries) []MonthPoint {
	n := min(len(m.X), len(m.Earning), len(m.Expense))
	if n == 0 {
		return nil
	}
	out := make([]MonthPoint, 0, n+1)
	out = append(out, MonthPoint{Label: previousMonth(m.X[0])})
	for i := range n {
		out = append(out, MonthPoint{Label: m.X[i], Earning: m.Earning[i], Expense: m.Expense[i]})
	}
	return out
}

// previousMonth labels the month before label, keeping label's format.
// Unrecognised labels yield an empty label.
func previousMonth(label string) string {
	for _, layout := range []string{"2006-01", model.DateLayout, "Jan 2006", "January 2006"} {
		t, err := time.Parse(layout, label)
		if err != nil {
			continue
		}
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, -1, 0).Format(layout)
	}
	return ""
}
