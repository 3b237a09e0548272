package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"InflationTracker/internal/model"
)

// DefaultFREDBaseURL is the public FRED API root.
const DefaultFREDBaseURL = "https://api.stlouisfed.org"

const fredDateLayout = "2006-01-02"

// FREDFetcher implements Fetcher using the FRED series/observations API.
type FREDFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
}

// NewFREDFetcher creates a new fetcher with optional proxy support.
func NewFREDFetcher(baseURL, apiKey, proxyURL string) *FREDFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultFREDBaseURL
	}
	return &FREDFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Now: time.Now,
	}
}

func (f *FREDFetcher) Name() string { return "fred" }

// fredResponse is the JSON shape of series/observations, including errors.
type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// FetchSeries fetches observations between now-lookback and now.
func (f *FREDFetcher) FetchSeries(ctx context.Context, id model.SeriesID, lookback time.Duration) ([]model.Observation, error) {
	req := model.SeriesRequest{ID: id, Lookback: lookback}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	end := f.Now().UTC()
	start := end.Add(-lookback)
	q := url.Values{}
	q.Set("series_id", id.FREDCode())
	q.Set("observation_start", start.Format(fredDateLayout))
	q.Set("observation_end", end.Format(fredDateLayout))

	resp, err := f.get(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	obs := make([]model.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		v := parseFREDValue(o.Value)
		if !v.Valid {
			continue
		}
		d, err := time.Parse(fredDateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch %s: bad date %q", model.ErrNetwork, id, o.Date)
		}
		obs = append(obs, model.Observation{Date: d, Value: v.Float64})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("fetch %s (%s to %s): %w", id,
			start.Format(fredDateLayout), end.Format(fredDateLayout), model.ErrEmptyData)
	}
	return normalize(obs), nil
}

// Ping fetches the most recent CPI observation to check reachability and credentials.
func (f *FREDFetcher) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("series_id", model.SeriesCPI.FREDCode())
	q.Set("sort_order", "desc")
	q.Set("limit", "1")
	if _, err := f.get(ctx, q); err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}

func (f *FREDFetcher) get(ctx context.Context, q url.Values) (*fredResponse, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("%w: FRED API key is not configured (set FRED_API_KEY)", model.ErrAuth)
	}
	q.Set("api_key", f.APIKey)
	q.Set("file_type", "json")
	endpoint := f.BaseURL + "/fred/series/observations?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "inflation-tracker/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrNetwork, redactKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", model.ErrNetwork, err)
	}

	var out fredResponse
	decodeErr := json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", model.ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(out.ErrorMessage), "api_key"):
		return nil, fmt.Errorf("%w: %s", model.ErrAuth, out.ErrorMessage)
	case resp.StatusCode != http.StatusOK:
		msg := out.ErrorMessage
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("%w: status %d: %s", model.ErrNetwork, resp.StatusCode, msg)
	case decodeErr != nil:
		return nil, fmt.Errorf("%w: decode observations: %w", model.ErrNetwork, decodeErr)
	}
	return &out, nil
}

// parseFREDValue decodes an observation value. FRED marks missing values with ".".
func parseFREDValue(s string) null.Float {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return null.NewFloat(0, false)
	}
	return null.FloatFrom(v)
}

// normalize sorts by date and keeps the last value for duplicate dates.
func normalize(obs []model.Observation) []model.Observation {
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	out := obs[:0]
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Date.Equal(o.Date) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}
	return out
}

// redactKey strips the query string, which carries the API key, from transport errors.
func redactKey(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			ue.URL = u.String()
		}
	}
	return err
}
