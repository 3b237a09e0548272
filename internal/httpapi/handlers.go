package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"InflationTracker/internal/cache"
	"InflationTracker/internal/calculator"
	"InflationTracker/internal/collector"
	"InflationTracker/internal/model"
	"InflationTracker/internal/recorder"
)

// Service is the presenter boundary served by the API.
// *collector.Collector implements it.
type Service interface {
	GetSeries(ctx context.Context, id model.SeriesID, lookback time.Duration) ([]model.Observation, error)
	GetMetric(ctx context.Context, kind collector.MetricKind, p collector.MetricParams) (*collector.MetricResult, error)
	Snapshot(ctx context.Context, lookback time.Duration) (*model.Snapshot, error)
	EquivalentValue(ctx context.Context, amount decimal.Decimal, from, to time.Time) (calculator.Equivalent, error)
	Health(ctx context.Context) error
	CacheStats() cache.Stats
}

// HealthChecker is an optional dependency reported by /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type App struct {
	Service  Service
	Recorder recorder.Recorder
	// Deps are checked by /healthz alongside the upstream provider.
	Deps    map[string]HealthChecker
	started time.Time
}

func NewApp(svc Service, rec recorder.Recorder) *App {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &App{Service: svc, Recorder: rec, started: time.Now()}
}

type seriesResponse struct {
	Series       model.SeriesID      `json:"series"`
	Code         string              `json:"code"`
	Observations []model.Observation `json:"observations"`
}

func (a *App) seriesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseSeriesID(strings.ToUpper(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	lookback, err := ParseLookback(r.URL.Query().Get("lookback"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	obs, err := a.Service.GetSeries(r.Context(), id, lookback)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{Series: id, Code: id.FREDCode(), Observations: obs})
}

func (a *App) metricHandler(w http.ResponseWriter, r *http.Request) {
	p, err := metricParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.Service.GetMetric(r.Context(), collector.MetricKind(r.PathValue("kind")), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func metricParams(r *http.Request) (collector.MetricParams, error) {
	q := r.URL.Query()
	var (
		p   collector.MetricParams
		err error
	)
	if p.Lookback, err = ParseLookback(q.Get("lookback")); err != nil {
		return p, err
	}
	if p.BaseDate, err = ParseDate("base", q.Get("base")); err != nil {
		return p, err
	}
	if s := q.Get("series"); s != "" {
		if p.Series, err = model.ParseSeriesID(strings.ToUpper(s)); err != nil {
			return p, err
		}
	}
	p.A = collector.Operand(strings.ToUpper(q.Get("a")))
	p.B = collector.Operand(strings.ToUpper(q.Get("b")))
	if p.Window, err = parseInt("window", q.Get("window")); err != nil {
		return p, err
	}
	if p.Period, err = parseInt("period", q.Get("period")); err != nil {
		return p, err
	}
	if p.Years, err = parseInt("years", q.Get("years")); err != nil {
		return p, err
	}
	return p, nil
}

func (a *App) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	lookback, err := ParseLookback(r.URL.Query().Get("lookback"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := a.Service.Snapshot(r.Context(), lookback)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *App) equivalentHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := parseAmount(q.Get("amount"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := ParseDate("from", q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := ParseDate("to", q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	eq, err := a.Service.EquivalentValue(r.Context(), amount, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (a *App) historyHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseInt("limit", r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	snaps, err := a.Recorder.RecentSnapshots(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks := map[string]string{"upstream": "ok"}
	healthy := true
	if err := a.Service.Health(ctx); err != nil {
		healthy = false
		checks["upstream"] = UserMessage(err)
		log.Printf("[WARN] health upstream: %v", err)
	}
	for name, dep := range a.Deps {
		checks[name] = "ok"
		if err := dep.Health(ctx); err != nil {
			healthy = false
			checks[name] = "unavailable"
			log.Printf("[WARN] health %s: %v", name, err)
		}
	}

	resp := map[string]any{
		"status": "ok",
		"uptime": time.Since(a.started).Round(time.Second).String(),
		"checks": checks,
	}
	if !healthy {
		resp["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) cacheHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Service.CacheStats())
}
