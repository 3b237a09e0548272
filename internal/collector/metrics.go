package collector

import (
	"context"
	"fmt"
	"time"

	"InflationTracker/internal/calculator"
	"InflationTracker/internal/model"
)

// MetricKind selects a derived metric.
type MetricKind string

const (
	MetricInflation          MetricKind = "inflation"
	MetricM2Growth           MetricKind = "m2_growth"
	MetricFedRate            MetricKind = "fed_rate"
	MetricPurchasingPower    MetricKind = "purchasing_power"
	MetricCorrelation        MetricKind = "correlation"
	MetricRollingCorrelation MetricKind = "rolling_correlation"
	MetricMovingAverage      MetricKind = "moving_average"
	MetricTrend              MetricKind = "trend"
	MetricAverageInflation   MetricKind = "average_inflation"
)

// Operand is a correlation input: a raw series or a derived growth rate.
type Operand string

const (
	OperandCPI       Operand = "CPI"
	OperandM2        Operand = "M2"
	OperandFedRate   Operand = "FED_RATE"
	OperandInflation Operand = "INFLATION"
	OperandM2Growth  Operand = "M2_GROWTH"
)

// Defaults applied by GetMetric to zero-valued parameters.
const (
	DefaultWindow = 12
	DefaultPeriod = 3
	DefaultYears  = 10
)

// MetricParams carries the inputs of every metric kind; each kind reads only
// the fields it needs.
type MetricParams struct {
	Lookback time.Duration
	BaseDate time.Time
	Series   model.SeriesID
	A, B     Operand
	Window   int
	Period   int
	Years    int
}

func (p MetricParams) withDefaults() MetricParams {
	if p.Lookback == 0 {
		p.Lookback = DefaultLookback
	}
	if p.Series == "" {
		p.Series = model.SeriesCPI
	}
	if p.A == "" {
		p.A = OperandInflation
	}
	if p.B == "" {
		p.B = OperandM2Growth
	}
	if p.Window == 0 {
		p.Window = DefaultWindow
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	if p.Years == 0 {
		p.Years = DefaultYears
	}
	return p
}

// MetricResult holds a derived series, a scalar, or both.
type MetricResult struct {
	Kind   MetricKind           `json:"kind"`
	Metric *model.DerivedMetric `json:"metric,omitempty"`
	Value  *float64             `json:"value,omitempty"`
	Label  string               `json:"label,omitempty"`
	Trend  *model.TrendStats    `json:"trend,omitempty"`
}

// GetMetric computes one derived metric from cached series.
func (c *Collector) GetMetric(ctx context.Context, kind MetricKind, p MetricParams) (*MetricResult, error) {
	p = p.withDefaults()
	res := &MetricResult{Kind: kind}

	switch kind {
	case MetricInflation, MetricM2Growth, MetricFedRate:
		op := map[MetricKind]Operand{
			MetricInflation: OperandInflation,
			MetricM2Growth:  OperandM2Growth,
			MetricFedRate:   OperandFedRate,
		}[kind]
		obs, err := c.operand(ctx, op, p.Lookback)
		if err != nil {
			return nil, err
		}
		res.Metric = &model.DerivedMetric{Label: operandLabel(op), Points: obs}

	case MetricPurchasingPower:
		if p.BaseDate.IsZero() {
			return nil, fmt.Errorf("%w: purchasing power needs a base date", model.ErrInvalidRequest)
		}
		cpi, err := c.GetSeries(ctx, model.SeriesCPI, p.Lookback)
		if err != nil {
			return nil, err
		}
		pp, err := calculator.PurchasingPower(cpi, p.BaseDate)
		if err != nil {
			return nil, err
		}
		res.Metric = &model.DerivedMetric{
			Label:  fmt.Sprintf("Purchasing power relative to %s", p.BaseDate.Format("2006-01")),
			Points: pp,
		}

	case MetricCorrelation, MetricRollingCorrelation:
		a, err := c.operand(ctx, p.A, p.Lookback)
		if err != nil {
			return nil, err
		}
		b, err := c.operand(ctx, p.B, p.Lookback)
		if err != nil {
			return nil, err
		}
		label := fmt.Sprintf("%s vs %s", operandLabel(p.A), operandLabel(p.B))
		if kind == MetricRollingCorrelation {
			pts, err := calculator.RollingCorrelation(a, b, p.Window)
			if err != nil {
				return nil, err
			}
			res.Metric = &model.DerivedMetric{Label: fmt.Sprintf("%d-period rolling correlation: %s", p.Window, label), Points: pts}
			break
		}
		r, err := calculator.Correlation(a, b)
		if err != nil {
			return nil, err
		}
		res.Value = &r
		res.Label = calculator.InterpretCorrelation(r)

	case MetricMovingAverage:
		obs, err := c.GetSeries(ctx, p.Series, p.Lookback)
		if err != nil {
			return nil, err
		}
		ma, err := calculator.MovingAverage(obs, p.Period)
		if err != nil {
			return nil, err
		}
		res.Metric = &model.DerivedMetric{Label: fmt.Sprintf("%s %d-period moving average", p.Series, p.Period), Points: ma}

	case MetricTrend:
		obs, err := c.GetSeries(ctx, p.Series, p.Lookback)
		if err != nil {
			return nil, err
		}
		stats, err := calculator.TrendStatistics(obs)
		if err != nil {
			return nil, err
		}
		res.Trend = &stats
		res.Label = stats.Direction

	case MetricAverageInflation:
		lookback := p.Lookback
		if p.Years <= calculator.MaxAverageYears {
			if need := time.Duration(p.Years+1) * 366 * 24 * time.Hour; need > lookback {
				lookback = need
			}
		}
		cpi, err := c.GetSeries(ctx, model.SeriesCPI, lookback)
		if err != nil {
			return nil, err
		}
		v, err := calculator.AverageInflation(cpi, p.Years)
		if err != nil {
			return nil, err
		}
		res.Value = &v
		res.Label = fmt.Sprintf("Average annual inflation over %d years (%%)", p.Years)

	default:
		return nil, fmt.Errorf("%w: unknown metric %q", model.ErrInvalidRequest, kind)
	}
	return res, nil
}

// operand resolves a correlation input to a series.
func (c *Collector) operand(ctx context.Context, op Operand, lookback time.Duration) ([]model.Observation, error) {
	switch op {
	case OperandInflation:
		cpi, err := c.GetSeries(ctx, model.SeriesCPI, lookback)
		if err != nil {
			return nil, err
		}
		return calculator.InflationRate(cpi), nil
	case OperandM2Growth:
		m2, err := c.GetSeries(ctx, model.SeriesM2, lookback)
		if err != nil {
			return nil, err
		}
		return calculator.M2GrowthRate(m2), nil
	}
	id, err := model.ParseSeriesID(string(op))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown operand %q", model.ErrInvalidRequest, op)
	}
	return c.GetSeries(ctx, id, lookback)
}

func operandLabel(op Operand) string {
	switch op {
	case OperandCPI:
		return "Consumer Price Index"
	case OperandM2:
		return "M2 money supply"
	case OperandFedRate:
		return "Federal funds rate (%)"
	case OperandInflation:
		return "CPI YoY inflation (%)"
	case OperandM2Growth:
		return "M2 YoY growth (%)"
	}
	return string(op)
}
