package model

import "errors"

// Error taxonomy shared by the fetcher, the calculators and the presenters.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w").
var (
	ErrNetwork          = errors.New("upstream unreachable")
	ErrAuth             = errors.New("missing or invalid API credential")
	ErrEmptyData        = errors.New("upstream returned no observations")
	ErrInvalidBaseDate  = errors.New("date not present in series")
	ErrInsufficientData = errors.New("not enough aligned data points")
	ErrInvalidRequest   = errors.New("invalid request")
)
