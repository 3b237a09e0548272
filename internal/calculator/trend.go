package calculator

import (
	"fmt"
	"math"

	"InflationTracker/internal/model"
)

// MovingAverage returns the trailing simple moving average over period points.
// The first result is dated at index period-1.
func MovingAverage(obs []model.Observation, period int) ([]model.Observation, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive", model.ErrInvalidRequest)
	}
	if len(obs) < period {
		return nil, fmt.Errorf("moving average(%d) over %d points: %w", period, len(obs), model.ErrInsufficientData)
	}

	out := make([]model.Observation, 0, len(obs)-period+1)
	sum := 0.0
	for i, o := range obs {
		sum += o.Value
		if i >= period {
			sum -= obs[i-period].Value
		}
		if i >= period-1 {
			out = append(out, model.Observation{Date: o.Date, Value: sum / float64(period)})
		}
	}
	return out, nil
}

// TrendStatistics summarises a monthly series: growth of the last point
// against the point 12 periods earlier, annualized volatility of
// period-over-period changes, and the direction of the last three points.
// Requires at least 13 points and two usable changes.
func TrendStatistics(obs []model.Observation) (model.TrendStats, error) {
	n := len(obs)
	if n < 13 {
		return model.TrendStats{}, fmt.Errorf("trend statistics over %d points: %w", n, model.ErrInsufficientData)
	}

	changes := pctChanges(obs)
	if len(changes) < 2 {
		return model.TrendStats{}, fmt.Errorf("trend statistics over %d usable changes: %w", len(changes), model.ErrInsufficientData)
	}

	var stats model.TrendStats
	if prev := obs[n-13].Value; prev != 0 {
		stats.AnnualGrowth = (obs[n-1].Value - prev) * 100 / prev
	}
	stats.Volatility = stdDev(changes) * math.Sqrt(12) * 100

	recent := mean(changes[len(changes)-2:]) * 100
	switch {
	case recent > 0.1:
		stats.Direction = "Increasing"
	case recent < -0.1:
		stats.Direction = "Decreasing"
	default:
		stats.Direction = "Stable"
	}
	return stats, nil
}

// MaxAverageYears bounds the window accepted by AverageInflation.
const MaxAverageYears = 100

// AverageInflation annualizes the mean monthly CPI change over the last
// years*12 periods (or all available periods if fewer).
func AverageInflation(cpi []model.Observation, years int) (float64, error) {
	if years <= 0 || years > MaxAverageYears {
		return 0, fmt.Errorf("%w: years must be between 1 and %d", model.ErrInvalidRequest, MaxAverageYears)
	}
	if len(cpi) < 13 {
		return 0, fmt.Errorf("average inflation over %d points: %w", len(cpi), model.ErrInsufficientData)
	}

	changes := pctChanges(cpi)
	if len(changes) == 0 {
		return 0, fmt.Errorf("average inflation: no usable changes: %w", model.ErrInsufficientData)
	}
	periods := years * 12
	if periods > len(changes) {
		periods = len(changes)
	}
	m := mean(changes[len(changes)-periods:])
	return (math.Pow(1+m, 12) - 1) * 100, nil
}

// pctChanges returns v[i]/v[i-1]-1, skipping pairs with a zero denominator.
func pctChanges(obs []model.Observation) []float64 {
	out := make([]float64, 0, len(obs))
	for i := 1; i < len(obs); i++ {
		prev := obs[i-1].Value
		if prev == 0 {
			continue
		}
		out = append(out, obs[i].Value/prev-1)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
