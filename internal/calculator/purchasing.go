package calculator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"InflationTracker/internal/model"
)

// PurchasingPower returns CPI[base] / CPI[d] for every date d in the series,
// i.e. how much of one unit of base-date money remains at d. The base is
// matched by calendar month.
func PurchasingPower(cpi []model.Observation, baseDate time.Time) ([]model.Observation, error) {
	base, ok := valueInMonth(cpi, baseDate)
	if !ok {
		return nil, fmt.Errorf("purchasing power base %s: %w", baseDate.Format("2006-01"), model.ErrInvalidBaseDate)
	}

	out := make([]model.Observation, 0, len(cpi))
	for _, o := range cpi {
		if o.Value == 0 {
			continue
		}
		out = append(out, model.Observation{Date: o.Date, Value: base / o.Value})
	}
	return out, nil
}

// Equivalent is the result of converting an amount between two CPI dates.
type Equivalent struct {
	Amount              decimal.Decimal `json:"amount"`
	From                time.Time       `json:"from"`
	To                  time.Time       `json:"to"`
	Value               decimal.Decimal `json:"value"`
	CumulativeInflation float64         `json:"cumulative_inflation"`
}

// EquivalentValue converts amount in from-date money into to-date money,
// rounded to cents.
func EquivalentValue(cpi []model.Observation, amount decimal.Decimal, from, to time.Time) (Equivalent, error) {
	if amount.IsNegative() {
		return Equivalent{}, fmt.Errorf("%w: amount must not be negative", model.ErrInvalidRequest)
	}
	fromCPI, ok := valueInMonth(cpi, from)
	if !ok || fromCPI == 0 {
		return Equivalent{}, fmt.Errorf("from %s: %w", from.Format("2006-01"), model.ErrInvalidBaseDate)
	}
	toCPI, ok := valueInMonth(cpi, to)
	if !ok {
		return Equivalent{}, fmt.Errorf("to %s: %w", to.Format("2006-01"), model.ErrInvalidBaseDate)
	}

	ratio := decimal.NewFromFloat(toCPI).Div(decimal.NewFromFloat(fromCPI))
	return Equivalent{
		Amount:              amount,
		From:                from,
		To:                  to,
		Value:               amount.Mul(ratio).Round(2),
		CumulativeInflation: (toCPI - fromCPI) * 100 / fromCPI,
	}, nil
}

func valueInMonth(obs []model.Observation, date time.Time) (float64, bool) {
	k := model.MonthKey(date)
	for _, o := range obs {
		if model.MonthKey(o.Date) == k {
			return o.Value, true
		}
	}
	return 0, false
}
