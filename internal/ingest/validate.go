package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartexpense/smartexpense/internal/model"
)

// ErrNoEarning is returned when the same-month policy is on but no earning
// has been recorded yet.
var ErrNoEarning = errors.New("no earning recorded: add this month's earning before adding expenses")

// ValidationError rejects a row. Row is the spreadsheet row number, or 0
// for a manual entry.
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Column, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Column, e.Value, e.Reason)
}

// dateLayouts are the textual date forms accepted in a date cell.
var dateLayouts = []string{
	model.DateLayout,
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses s in any accepted form and returns the calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New("not a valid date")
}

// Validator turns raw input into expense rows against a category registry.
type Validator struct {
	reg       *Registry
	sameMonth bool
	earning   *model.Earning
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// RequireSameMonth makes every expense date fall in the calendar month of
// earning. A nil earning fails every row with ErrNoEarning.
func RequireSameMonth(earning *model.Earning) ValidatorOption {
	return func(v *Validator) {
		v.sameMonth = true
		v.earning = earning
	}
}

// NewValidator returns a validator for reg.
func NewValidator(reg *Registry, opts ...ValidatorOption) *Validator {
	v := &Validator{reg: reg}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Rows validates every row in order. The first failure rejects the whole
// input and no rows are returned.
func (v *Validator) Rows(rows []RawRow) ([]model.ExpenseRow, error) {
	out := make([]model.ExpenseRow, 0, len(rows))
	for _, r := range rows {
		row, err := v.row(r.Line, r.Get(ColCategory).Text, r.Get(ColDate), r.Get(ColAmount).Text)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Entry validates one manually entered expense. Date serials are not
// interpreted here.
func (v *Validator) Entry(category, date, amount string) (model.ExpenseRow, error) {
	return v.row(0, category, Cell{Text: date}, amount)
}

func (v *Validator) row(line int, category string, date Cell, amount string) (model.ExpenseRow, error) {
	if v.reg == nil {
		return model.ExpenseRow{}, errors.New("categories are not loaded")
	}

	cat, id, ok := v.reg.Lookup(category)
	if !ok {
		return model.ExpenseRow{}, &ValidationError{Row: line, Column: ColCategory, Value: strings.TrimSpace(category), Reason: "unknown category"}
	}

	day, err := v.date(date)
	if err != nil {
		return model.ExpenseRow{}, &ValidationError{Row: line, Column: ColDate, Value: date.Text, Reason: "not a valid date"}
	}

	if v.sameMonth {
		if err := v.checkMonth(day); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Row = line
			}
			return model.ExpenseRow{}, err
		}
	}

	amt, err := parseAmount(amount)
	if err != nil {
		return model.ExpenseRow{}, &ValidationError{Row: line, Column: ColAmount, Value: strings.TrimSpace(amount), Reason: err.Error()}
	}

	return model.ExpenseRow{
		CategoryID:  id,
		Category:    cat.Name,
		Amount:      amt,
		ExpenseDate: day,
	}, nil
}

func (v *Validator) date(c Cell) (string, error) {
	if c.Numeric {
		serial, err := strconv.ParseFloat(c.Text, 64)
		if err != nil {
			return "", err
		}
		return SerialToDate(serial), nil
	}
	t, err := ParseDate(c.Text)
	if err != nil {
		return "", err
	}
	return t.Format(model.DateLayout), nil
}

func (v *Validator) checkMonth(day string) error {
	if v.earning == nil {
		return ErrNoEarning
	}
	earned, ok := v.earning.Date()
	if !ok {
		return fmt.Errorf("stored earning has an unreadable date %q", v.earning.EarningDate)
	}
	t, _ := time.Parse(model.DateLayout, day)
	if !model.SameMonth(t, earned) {
		return &ValidationError{
			Column: ColDate,
			Value:  day,
			Reason: fmt.Sprintf("not in the earning month %s", earned.Format("January 2006")),
		}
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errors.New("not a number")
	}
	// decimal accepts any exponent; the API only takes float-sized values.
	if f := d.InexactFloat64(); math.IsInf(f, 0) {
		return decimal.Decimal{}, errors.New("not a finite number")
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, errors.New("must be greater than zero")
	}
	return d, nil
}
