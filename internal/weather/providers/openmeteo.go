package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

// DefaultOpenMeteoURL is the public Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo hourly forecasts.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// OpenMeteoOption configures an OpenMeteoProvider.
type OpenMeteoOption func(*OpenMeteoProvider)

// WithBaseURL points the provider at another Open-Meteo compatible endpoint.
func WithBaseURL(u string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.httpCfg.Backoff = b
	}
}

func NewOpenMeteoProvider(client *http.Client, opts ...OpenMeteoOption) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: DefaultOpenMeteoURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("openmeteo"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Hourly fetches the requested hourly variables for the UTC days spanned by
// req.From..req.To. Times come back as unix seconds on a regular grid.
func (p *OpenMeteoProvider) Hourly(ctx context.Context, req weather.ForecastRequest) (weather.HourlyForecast, error) {
	if len(req.Variables) == 0 {
		return weather.HourlyForecast{}, fmt.Errorf("openmeteo: no hourly variables requested")
	}
	if req.To.Before(req.From) {
		return weather.HourlyForecast{}, fmt.Errorf("openmeteo: window end %s before start %s", req.To, req.From)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(req.Lat, 'f', 5, 64))
		values.Set("longitude", strconv.FormatFloat(req.Lon, 'f', 5, 64))
		values.Set("hourly", strings.Join(req.Variables, ","))
		values.Set("start_date", req.From.UTC().Format("2006-01-02"))
		values.Set("end_date", req.To.UTC().Format("2006-01-02"))
		values.Set("timezone", "GMT")
		values.Set("timeformat", "unixtime")
		values.Set("wind_speed_unit", "kmh")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.HourlyForecast{}, fmt.Errorf("openmeteo: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.HourlyForecast{}, fmt.Errorf("openmeteo: decode response: %w", err)
	}

	forecast, err := toHourlyForecast(payload.Hourly, req.Variables)
	if err != nil {
		return weather.HourlyForecast{}, fmt.Errorf("openmeteo: %w", err)
	}
	return forecast, nil
}

// toHourlyForecast converts the "hourly" block into a regular grid. A grid
// with uneven spacing is rejected since nearest-record lookup relies on it.
func toHourlyForecast(hourly map[string]json.RawMessage, variables []string) (weather.HourlyForecast, error) {
	rawTimes, ok := hourly["time"]
	if !ok {
		return weather.HourlyForecast{}, fmt.Errorf("response has no hourly time axis")
	}
	var times []int64
	if err := json.Unmarshal(rawTimes, &times); err != nil {
		return weather.HourlyForecast{}, fmt.Errorf("decode time axis: %w", err)
	}
	if len(times) == 0 {
		return weather.HourlyForecast{}, fmt.Errorf("response has an empty time axis")
	}

	interval := time.Hour
	if len(times) > 1 {
		interval = time.Duration(times[1]-times[0]) * time.Second
		if interval <= 0 {
			return weather.HourlyForecast{}, fmt.Errorf("time axis is not increasing")
		}
		for i := 2; i < len(times); i++ {
			if time.Duration(times[i]-times[i-1])*time.Second != interval {
				return weather.HourlyForecast{}, fmt.Errorf("irregular time axis at index %d", i)
			}
		}
	}

	values := make(map[string][]*float64, len(variables))
	for _, name := range variables {
		raw, ok := hourly[name]
		if !ok {
			continue
		}
		var series []*float64
		if err := json.Unmarshal(raw, &series); err != nil {
			return weather.HourlyForecast{}, fmt.Errorf("decode %s: %w", name, err)
		}
		if len(series) != len(times) {
			return weather.HourlyForecast{}, fmt.Errorf("%s has %d values for %d timestamps", name, len(series), len(times))
		}
		values[name] = series
	}

	return weather.HourlyForecast{
		Start:    time.Unix(times[0], 0).UTC(),
		Interval: interval,
		Count:    len(times),
		Values:   values,
	}, nil
}
