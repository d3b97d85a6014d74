package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/ride-weather-dashboard/internal/briefing"
	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

type stubProvider struct {
	err error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Hourly(_ context.Context, req weather.ForecastRequest) (weather.HourlyForecast, error) {
	if s.err != nil {
		return weather.HourlyForecast{}, s.err
	}
	start := req.From.Truncate(time.Hour)
	count := int(req.To.Sub(start)/time.Hour) + 2
	values := map[string][]*float64{}
	for _, name := range req.Variables {
		series := make([]*float64, count)
		for i := range series {
			v := 12.0
			series[i] = &v
		}
		values[name] = series
	}
	return weather.HourlyForecast{Start: start, Interval: time.Hour, Count: count, Values: values}, nil
}

// fileRenderer writes a fixed payload so handlers can stream it back.
type fileRenderer struct {
	err error
}

func (f fileRenderer) Render(_ *dashboard.ChartSpec, path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("rendered"), 0o600)
}

func newTestApp(provider weather.ForecastProvider, renderer dashboard.Renderer) *fiber.App {
	app := fiber.New()
	pipeline := briefing.New(
		route.NewSampler(6),
		weather.NewCorrelator(provider),
		dashboard.NewComposer(renderer, nil),
	)
	RegisterRoutes(app, pipeline)
	return app
}

func gpxDoc(timed bool) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0"?><gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg>`)
	for i, lat := range []float64{45, 45.1, 45.2} {
		fmt.Fprintf(&b, `<trkpt lat="%.1f" lon="20">`, lat)
		if timed {
			fmt.Fprintf(&b, `<time>2024-05-01T06:0%d:00Z</time>`, i)
		}
		b.WriteString(`</trkpt>`)
	}
	b.WriteString(`</trkseg></trk></gpx>`)
	return b.String()
}

func multipartRequest(t *testing.T, target string, fields map[string]string, gpx string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if gpx != "" {
		part, err := w.CreateFormFile("track", "ride.gpx")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := io.WriteString(part, gpx); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestBriefingValidation(t *testing.T) {
	app := newTestApp(stubProvider{}, fileRenderer{})

	tests := []struct {
		name   string
		fields map[string]string
		gpx    string
		want   int
	}{
		{name: "missing track", fields: map[string]string{"speed": "25"}, want: http.StatusBadRequest},
		{name: "speed not a number", fields: map[string]string{"speed": "fast"}, gpx: gpxDoc(true), want: http.StatusBadRequest},
		{name: "zero speed", fields: map[string]string{"speed": "0"}, gpx: gpxDoc(true), want: http.StatusBadRequest},
		{name: "speed out of range", fields: map[string]string{"speed": "250"}, gpx: gpxDoc(true), want: http.StatusBadRequest},
		{name: "bad date", fields: map[string]string{"date": "2024-05-01"}, gpx: gpxDoc(true), want: http.StatusBadRequest},
		{name: "bad time", fields: map[string]string{"date": "01.05.2024", "time": "8am"}, gpx: gpxDoc(true), want: http.StatusBadRequest},
		{name: "track without timestamps", fields: map[string]string{}, gpx: gpxDoc(false), want: http.StatusUnprocessableEntity},
		{name: "track not gpx", fields: map[string]string{}, gpx: "hello", want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(multipartRequest(t, "/api/v1/briefing", tt.fields, tt.gpx))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestBriefingJSON(t *testing.T) {
	app := newTestApp(stubProvider{}, fileRenderer{})
	fields := map[string]string{"speed": "20", "date": "01.05.2024", "time": "09:30"}

	resp, err := app.Test(multipartRequest(t, "/api/v1/briefing", fields, gpxDoc(true)), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Start     time.Time `json:"start"`
		SpeedKmh  float64   `json:"speedKmh"`
		Poor      bool      `json:"poor"`
		Waypoints []struct {
			DistanceKm  float64          `json:"distanceKm"`
			Observation *json.RawMessage `json:"observation"`
		} `json:"waypoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !payload.Start.Equal(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)) || payload.SpeedKmh != 20 {
		t.Errorf("unexpected start/speed: %s %v", payload.Start, payload.SpeedKmh)
	}
	// 45.0 -> 45.2 along a meridian is about 22.2 km.
	if len(payload.Waypoints) != 3 || payload.Poor {
		t.Fatalf("expected 3 covered waypoints, got %d (poor=%v)", len(payload.Waypoints), payload.Poor)
	}
	for i, wp := range payload.Waypoints {
		if wp.Observation == nil {
			t.Errorf("waypoint %d has no observation", i)
		}
	}
}

func TestGeoJSONEndpoint(t *testing.T) {
	app := newTestApp(stubProvider{}, fileRenderer{})

	resp, err := app.Test(multipartRequest(t, "/api/v1/briefing/geojson", map[string]string{}, gpxDoc(true)), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 4 {
		t.Fatalf("expected feature collection with route and 3 waypoints, got %s with %d", fc.Type, len(fc.Features))
	}
}

func TestDashboardEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		provider weather.ForecastProvider
		renderer dashboard.Renderer
		query    string
		want     int
		wantType string
	}{
		{name: "png", provider: stubProvider{}, renderer: fileRenderer{}, want: http.StatusOK, wantType: "image/png"},
		{name: "svg", provider: stubProvider{}, renderer: fileRenderer{}, query: "?format=svg", want: http.StatusOK, wantType: "image/svg+xml"},
		{name: "no forecasts", provider: stubProvider{err: errors.New("down")}, renderer: fileRenderer{}, want: http.StatusUnprocessableEntity},
		{name: "renderer fails", provider: stubProvider{}, renderer: fileRenderer{err: errors.New("broken")}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.provider, tt.renderer)
			resp, err := app.Test(multipartRequest(t, "/api/v1/dashboard"+tt.query, map[string]string{}, gpxDoc(true)), -1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
			if tt.wantType == "" {
				return
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.wantType {
				t.Errorf("expected content type %s, got %s", tt.wantType, ct)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != "rendered" {
				t.Errorf("unexpected body %q", body)
			}
		})
	}
}
