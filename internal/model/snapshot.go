package model

import "time"

// Headline is the latest value of a series plus its change over 12 periods.
// Change is nil when the series has no point 12 periods back.
type Headline struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Change *float64  `json:"change,omitempty"`
}

// Snapshot holds the dashboard's key figures at one point in time.
type Snapshot struct {
	TakenAt         time.Time `json:"taken_at"`
	CPI             Headline  `json:"cpi"`
	Inflation       Headline  `json:"inflation"`
	M2Growth        Headline  `json:"m2_growth"`
	FedRate         Headline  `json:"fed_rate"`
	PurchasingPower float64   `json:"purchasing_power"` // what $100 from a year earlier is worth now
	Correlation     float64   `json:"correlation"`      // inflation vs M2 growth
	CorrelationTier string    `json:"correlation_tier"`
}

// TrendStats summarises the recent behaviour of a series.
type TrendStats struct {
	AnnualGrowth float64 `json:"annual_growth"`
	Volatility   float64 `json:"volatility"`
	Direction    string  `json:"direction"`
}
