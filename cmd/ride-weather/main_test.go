package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

func TestReportCoverage(t *testing.T) {
	tests := []struct {
		name     string
		coverage weather.Coverage
		want     string
	}{
		{name: "full coverage", coverage: weather.Coverage{Total: 4}, want: ""},
		{
			name: "missing forecasts",
			coverage: weather.Coverage{
				Total:   4,
				Missing: 2,
				Failures: []*weather.ForecastError{
					{Index: 1, Lat: 45, Lon: 20, Err: errors.New("timeout")},
					{Index: 3, Lat: 45.1, Lon: 20, Err: weather.ErrNoUsableRecord},
				},
			},
			want: "WARN: 2 of 4 waypoints have no forecast\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			log.SetFlags(0)
			t.Cleanup(func() {
				log.SetOutput(os.Stderr)
				log.SetFlags(log.LstdFlags)
			})

			reportCoverage(tt.coverage)

			got := buf.String()
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			for _, f := range tt.coverage.Failures {
				if strings.Contains(got, f.Error()) {
					t.Errorf("failure %d logged again: %q", f.Index, got)
				}
			}
		})
	}
}
