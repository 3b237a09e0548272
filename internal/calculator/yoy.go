package calculator

import "InflationTracker/internal/model"

// YearOverYear returns the percentage change of each observation against the
// observation in the same calendar month one year earlier. Points without a
// prior-year match are omitted, so the output dates are a subset of the input.
func YearOverYear(obs []model.Observation) []model.Observation {
	// first observation of each month is the reference for that month
	byMonth := make(map[int]float64, len(obs))
	for _, o := range obs {
		k := model.MonthKey(o.Date)
		if _, ok := byMonth[k]; !ok {
			byMonth[k] = o.Value
		}
	}

	out := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		prev, ok := byMonth[model.MonthKey(o.Date)-12]
		if !ok || prev == 0 {
			continue
		}
		out = append(out, model.Observation{
			Date:  o.Date,
			Value: (o.Value - prev) * 100 / prev,
		})
	}
	return out
}

// InflationRate computes the YoY inflation rate from a CPI series.
func InflationRate(cpi []model.Observation) []model.Observation {
	return YearOverYear(cpi)
}

// M2GrowthRate computes the YoY growth rate of the M2 money supply.
func M2GrowthRate(m2 []model.Observation) []model.Observation {
	return YearOverYear(m2)
}
