package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"InflationTracker/internal/cache"
	"InflationTracker/internal/collector"
	"InflationTracker/internal/model"
	"InflationTracker/internal/recorder"
)

func monthlySeries(n int, f func(i int) float64) []model.Observation {
	obs := make([]model.Observation, n)
	for i := range obs {
		obs[i] = model.Observation{Date: model.Date(2021, time.June, 1).AddDate(0, i, 0), Value: f(i)}
	}
	return obs
}

func newTestServer(t *testing.T, mock *collector.MockFetcher) http.Handler {
	t.Helper()
	if mock.Data == nil && mock.Err == nil {
		mock.Data = map[model.SeriesID][]model.Observation{
			model.SeriesCPI:     monthlySeries(36, func(i int) float64 { return 100 + float64(i) + 0.05*float64(i*i) }),
			model.SeriesM2:      monthlySeries(36, func(i int) float64 { return 1000 + 10*float64(i) + 0.7*float64(i*i) }),
			model.SeriesFedRate: monthlySeries(36, func(i int) float64 { return 5 }),
		}
	}
	col := collector.NewCollector(mock, cache.New(time.Minute))
	col.Now = func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }
	rec, err := recorder.NewSQLiteRecorder(t.TempDir() + "/history.db")
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return NewRouter(NewApp(col, rec))
}

func do(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: decode body %q: %v", target, rr.Body.String(), err)
	}
	return rr, body
}

func TestSeriesEndpoint(t *testing.T) {
	h := newTestServer(t, &collector.MockFetcher{})
	rr, body := do(t, h, "/api/series/cpi?lookback=3y")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rr.Code, body)
	}
	if body["series"] != "CPI" || body["code"] != "CPIAUCSL" {
		t.Errorf("body = %v", body)
	}
	if obs, _ := body["observations"].([]any); len(obs) != 36 {
		t.Errorf("expected 36 observations, got %d", len(obs))
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestServer(t, &collector.MockFetcher{})
	req := httptest.NewRequest(http.MethodGet, "/api/series/GOLD", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body jsonError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Header().Get("X-Request-Id") != "abc-123" || body.RequestID != "abc-123" {
		t.Errorf("request id not propagated: header %q body %q", rr.Header().Get("X-Request-Id"), body.RequestID)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		mock   *collector.MockFetcher
		target string
		status int
		code   string
	}{
		{"unknown series", &collector.MockFetcher{}, "/api/series/GOLD", 400, "invalid_request"},
		{"bad lookback", &collector.MockFetcher{}, "/api/series/CPI?lookback=forever", 400, "invalid_request"},
		{"unknown metric", &collector.MockFetcher{}, "/api/metrics/velocity", 400, "invalid_request"},
		{"bad base date", &collector.MockFetcher{}, "/api/metrics/purchasing_power?base=1990-01", 400, "invalid_base_date"},
		{"window too large", &collector.MockFetcher{}, "/api/metrics/rolling_correlation?window=50", 422, "insufficient_data"},
		{"years overflow", &collector.MockFetcher{}, "/api/metrics/average_inflation?years=9223372036854775807", 400, "invalid_request"},
		{"lookback overflow", &collector.MockFetcher{}, "/api/series/CPI?lookback=600y", 400, "invalid_request"},
		{"network", &collector.MockFetcher{Err: fmt.Errorf("%w: status 500", model.ErrNetwork)}, "/api/snapshot", 502, "upstream_unavailable"},
		{"auth", &collector.MockFetcher{Err: model.ErrAuth}, "/api/series/M2", 503, "upstream_auth"},
		{"empty", &collector.MockFetcher{Err: model.ErrEmptyData}, "/api/series/M2", 404, "no_data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.mock)
			rr, body := do(t, h, tt.target)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d (body %v)", rr.Code, tt.status, body)
			}
			if body["error"] != tt.code {
				t.Errorf("error = %v, want %s", body["error"], tt.code)
			}
			if tt.status >= 500 && body["details"] != nil {
				t.Errorf("upstream details leaked: %v", body["details"])
			}
		})
	}
}

func TestMetricEndpoints(t *testing.T) {
	h := newTestServer(t, &collector.MockFetcher{})

	rr, body := do(t, h, "/api/metrics/inflation")
	if rr.Code != http.StatusOK {
		t.Fatalf("inflation status = %d: %v", rr.Code, body)
	}
	metric, _ := body["metric"].(map[string]any)
	if pts, _ := metric["points"].([]any); len(pts) != 24 {
		t.Errorf("expected 24 inflation points, got %d", len(pts))
	}

	rr, body = do(t, h, "/api/metrics/correlation?a=cpi&b=cpi")
	if rr.Code != http.StatusOK || body["label"] != "Very Strong" {
		t.Errorf("correlation: %d %v", rr.Code, body)
	}

	rr, body = do(t, h, "/api/metrics/moving_average?series=fed_rate&period=12")
	if rr.Code != http.StatusOK {
		t.Errorf("moving average: %d %v", rr.Code, body)
	}
}

func TestSnapshotAndHistory(t *testing.T) {
	h := newTestServer(t, &collector.MockFetcher{})

	rr, body := do(t, h, "/api/snapshot")
	if rr.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d: %v", rr.Code, body)
	}
	if body["correlation_tier"] == "" {
		t.Errorf("snapshot = %v", body)
	}

	rr, body = do(t, h, "/api/history?limit=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("history status = %d", rr.Code)
	}
	if snaps, ok := body["snapshots"].([]any); !ok || len(snaps) != 0 {
		t.Errorf("expected empty history, got %v", body["snapshots"])
	}
}

func TestEquivalentEndpoint(t *testing.T) {
	h := newTestServer(t, &collector.MockFetcher{})
	rr, body := do(t, h, "/api/equivalent?amount=100&from=2021-06&to=2022-06")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rr.Code, body)
	}
	// CPI 100 -> 119.2
	if body["value"] != "119.2" {
		t.Errorf("value = %v, want 119.2", body["value"])
	}

	rr, _ = do(t, h, "/api/equivalent?amount=lots&from=2021-06&to=2022-06")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad amount status = %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	rr, body := do(t, newTestServer(t, &collector.MockFetcher{}), "/healthz")
	if rr.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthy: %d %v", rr.Code, body)
	}

	rr, body = do(t, newTestServer(t, &collector.MockFetcher{Err: model.ErrAuth}), "/healthz")
	if rr.Code != http.StatusServiceUnavailable || body["status"] != "degraded" {
		t.Errorf("degraded: %d %v", rr.Code, body)
	}
}

type failingDep struct{}

func (failingDep) Health(context.Context) error { return errors.New("connection refused") }

func TestHealthz_Dependencies(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{}, cache.New(time.Minute))
	app := NewApp(col, nil)
	app.Deps = map[string]HealthChecker{"redis": failingDep{}}

	rr, body := do(t, NewRouter(app), "/healthz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rr.Code)
	}
	checks, _ := body["checks"].(map[string]any)
	if checks["redis"] != "unavailable" || checks["upstream"] != "ok" {
		t.Errorf("checks = %v", checks)
	}
}

func TestDebugCache(t *testing.T) {
	h := newTestServer(t, &collector.MockFetcher{})
	do(t, h, "/api/series/CPI")
	do(t, h, "/api/series/CPI")

	_, body := do(t, h, "/debug/cache")
	if body["hits"] != float64(1) || body["fetches"] != float64(1) {
		t.Errorf("stats = %v", body)
	}
}

func TestParseLookback(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"2y", 730 * 24 * time.Hour, false},
		{"36h", 36 * time.Hour, false},
		{"0d", 0, true},
		{"-1y", 0, true},
		{"abc", 0, true},
		{"xd", 0, true},
		{"200y", 200 * 365 * 24 * time.Hour, false},
		{"73000d", 73000 * 24 * time.Hour, false},
		{"201y", 0, true},
		{"600y", 0, true},
		{"73001d", 0, true},
		{"9223372036854775807d", 0, true},
		{"2000000h", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLookback(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLookback(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, model.ErrInvalidRequest) {
			t.Errorf("ParseLookback(%q) should wrap ErrInvalidRequest", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseLookback(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStatusCodeAndUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("snapshot: fetch CPI: %w", model.ErrInsufficientData)
	if StatusCode(wrapped) != http.StatusUnprocessableEntity {
		t.Errorf("wrapped insufficient data = %d", StatusCode(wrapped))
	}
	if StatusCode(errors.New("boom")) != http.StatusInternalServerError {
		t.Error("unknown errors should map to 500")
	}
	if UserMessage(model.ErrNetwork) == model.ErrNetwork.Error() {
		t.Error("user message should differ from internal error text")
	}
}
