package weather

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ForecastRequest asks a provider for hourly variables at one position over a
// time window.
type ForecastRequest struct {
	Lat       float64
	Lon       float64
	From      time.Time
	To        time.Time
	Variables []string
}

// Key returns a canonical cache key. Coordinates are rounded to about 10 m and
// the window to whole UTC days, matching provider granularity.
func (r ForecastRequest) Key() string {
	return fmt.Sprintf("%.4f:%.4f:%s:%s:%s",
		r.Lat, r.Lon,
		r.From.UTC().Format("2006-01-02"),
		r.To.UTC().Format("2006-01-02"),
		strings.Join(r.Variables, ","),
	)
}

// ForecastProvider abstracts an hourly forecast source (e.g. Open-Meteo).
type ForecastProvider interface {
	Name() string
	Hourly(ctx context.Context, req ForecastRequest) (HourlyForecast, error)
}

// Cache is the contract the in-memory forecast cache must satisfy.
type Cache interface {
	Get(key string) (HourlyForecast, error)
	Set(key string, forecast HourlyForecast)
}
