package httpapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"InflationTracker/internal/model"
)

const (
	day = 24 * time.Hour
	// MaxLookback bounds every accepted lookback.
	MaxLookback = 200 * 365 * day
)

// ParseLookback accepts "Nd", "Ny" or a Go duration, up to MaxLookback.
// Empty means the default (0).
func ParseLookback(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	var d time.Duration
	switch unit := s[len(s)-1]; unit {
	case 'd', 'y':
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, fmt.Errorf("%w: lookback %q", model.ErrInvalidRequest, s)
		}
		perUnit := day
		if unit == 'y' {
			perUnit = 365 * day
		}
		if n <= 0 || n > int(MaxLookback/perUnit) {
			return 0, fmt.Errorf("%w: lookback %q out of range", model.ErrInvalidRequest, s)
		}
		d = time.Duration(n) * perUnit
	default:
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("%w: lookback %q", model.ErrInvalidRequest, s)
		}
	}
	if d <= 0 || d > MaxLookback {
		return 0, fmt.Errorf("%w: lookback must be positive and at most 200y, got %q", model.ErrInvalidRequest, s)
	}
	return d, nil
}

// ParseDate accepts YYYY-MM-DD or YYYY-MM. Empty yields the zero time.
func ParseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD or YYYY-MM, got %q", model.ErrInvalidRequest, name, s)
}

func parseInt(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", model.ErrInvalidRequest, name, s)
	}
	return n, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.NewFromInt(100), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q", model.ErrInvalidRequest, s)
	}
	return d, nil
}
