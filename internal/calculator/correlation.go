package calculator

import (
	"fmt"
	"math"
	"time"

	"InflationTracker/internal/model"
)

const minCorrelationPoints = 3

// Correlation computes the Pearson correlation of two series over the dates
// present in both.
func Correlation(a, b []model.Observation) (float64, error) {
	_, xs, ys := align(a, b)
	if len(xs) < minCorrelationPoints {
		return 0, fmt.Errorf("correlation over %d aligned points: %w", len(xs), model.ErrInsufficientData)
	}
	return pearson(xs, ys)
}

// RollingCorrelation computes Pearson correlation over a sliding window of
// aligned points. Each result is dated at the last date of its window.
// Windows with zero variance are skipped.
func RollingCorrelation(a, b []model.Observation, window int) ([]model.Observation, error) {
	if window < minCorrelationPoints {
		return nil, fmt.Errorf("%w: window must be at least %d", model.ErrInvalidRequest, minCorrelationPoints)
	}
	dates, xs, ys := align(a, b)
	if len(xs) < window {
		return nil, fmt.Errorf("rolling correlation needs %d aligned points, have %d: %w", window, len(xs), model.ErrInsufficientData)
	}

	out := make([]model.Observation, 0, len(xs)-window+1)
	for end := window; end <= len(xs); end++ {
		r, err := pearson(xs[end-window:end], ys[end-window:end])
		if err != nil {
			continue
		}
		out = append(out, model.Observation{Date: dates[end-1], Value: r})
	}
	return out, nil
}

// correlationTiers maps |r| to a strength label, strongest first.
var correlationTiers = []struct {
	Min   float64
	Label string
}{
	{0.8, "Very Strong"},
	{0.6, "Strong"},
	{0.4, "Moderate"},
	{0.2, "Weak"},
}

// InterpretCorrelation labels the strength of a correlation coefficient.
func InterpretCorrelation(r float64) string {
	abs := math.Abs(r)
	for _, t := range correlationTiers {
		if abs >= t.Min {
			return t.Label
		}
	}
	return "Very Weak"
}

// align returns the values of a and b on the dates both contain, ordered as in a.
func align(a, b []model.Observation) (dates []time.Time, xs, ys []float64) {
	byDay := make(map[int]float64, len(b))
	for _, o := range b {
		byDay[model.DayKey(o.Date)] = o.Value
	}
	for _, o := range a {
		v, ok := byDay[model.DayKey(o.Date)]
		if !ok {
			continue
		}
		dates = append(dates, o.Date)
		xs = append(xs, o.Value)
		ys = append(ys, v)
	}
	return dates, xs, ys
}

func pearson(xs, ys []float64) (float64, error) {
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, fmt.Errorf("zero variance: %w", model.ErrInsufficientData)
	}

	r := cov / math.Sqrt(varX*varY)
	return math.Max(-1, math.Min(1, r)), nil
}
