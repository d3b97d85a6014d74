package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/route"
)

const (
	// DefaultWorkers bounds concurrent provider calls.
	DefaultWorkers = 4
	// WindowPadding widens the requested window on both sides of the ride.
	WindowPadding = time.Hour
)

// ErrNoUsableRecord is wrapped by ForecastError when the provider answered but
// had no record for the waypoint's time.
var ErrNoUsableRecord = errors.New("no usable forecast record")

// ForecastError describes a failed lookup for one waypoint.
type ForecastError struct {
	Index int
	Lat   float64
	Lon   float64
	Err   error
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast for waypoint %d (%.4f, %.4f): %v", e.Index, e.Lat, e.Lon, e.Err)
}

func (e *ForecastError) Unwrap() error {
	return e.Err
}

// Coverage summarizes how many waypoints received an observation.
type Coverage struct {
	Total    int              `json:"total"`
	Missing  int              `json:"missing"`
	Failures []*ForecastError `json:"-"`
}

// Poor reports whether more than half of the waypoints have no observation.
func (c Coverage) Poor() bool {
	return c.Missing*2 > c.Total
}

// Correlator matches waypoints with hourly forecasts.
type Correlator struct {
	provider  ForecastProvider
	workers   int
	variables []string
	progress  func()
}

// CorrelatorOption configures a Correlator.
type CorrelatorOption func(*Correlator)

// WithWorkers sets the number of concurrent provider calls.
func WithWorkers(n int) CorrelatorOption {
	return func(c *Correlator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithProgress registers fn to be called once per finished lookup. fn must be
// safe for concurrent use.
func WithProgress(fn func()) CorrelatorOption {
	return func(c *Correlator) {
		c.progress = fn
	}
}

// NewCorrelator creates a Correlator backed by provider.
func NewCorrelator(provider ForecastProvider, opts ...CorrelatorOption) *Correlator {
	c := &Correlator{
		provider:  provider,
		workers:   DefaultWorkers,
		variables: HourlyVariables,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the forecast window covering all projected times, padded by
// WindowPadding on each side.
func Window(waypoints []route.Waypoint) (time.Time, time.Time) {
	if len(waypoints) == 0 {
		return time.Time{}, time.Time{}
	}
	from, to := waypoints[0].ProjectedTime, waypoints[0].ProjectedTime
	for _, wp := range waypoints[1:] {
		if wp.ProjectedTime.Before(from) {
			from = wp.ProjectedTime
		}
		if wp.ProjectedTime.After(to) {
			to = wp.ProjectedTime
		}
	}
	return from.Add(-WindowPadding), to.Add(WindowPadding)
}

// Correlate looks up a forecast for every waypoint. The result has the same
// length and order as waypoints; failed lookups leave Observation nil and are
// reported in the returned Coverage.
func (c *Correlator) Correlate(ctx context.Context, waypoints []route.Waypoint) ([]AnnotatedWaypoint, Coverage) {
	out := make([]AnnotatedWaypoint, len(waypoints))
	for i, wp := range waypoints {
		out[i].Waypoint = wp
	}
	cov := Coverage{Total: len(waypoints)}
	if len(waypoints) == 0 {
		return out, cov
	}

	from, to := Window(waypoints)
	log.Printf("DEBUG: correlating %d waypoints with %s over %s .. %s",
		len(waypoints), c.provider.Name(), from.Format(time.RFC3339), to.Format(time.RFC3339))

	failures := make([]*ForecastError, len(waypoints))
	jobs := make(chan int)

	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)

	workers := c.workers
	if workers > len(waypoints) {
		workers = len(waypoints)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				obs, err := c.lookup(ctx, waypoints[i], from, to)
				if err != nil {
					failures[i] = &ForecastError{Index: i, Lat: waypoints[i].Lat, Lon: waypoints[i].Lon, Err: err}
				} else {
					out[i].Observation = obs
				}
				done.Add(1)
				if c.progress != nil {
					c.progress()
				}
			}
		}()
	}

feed:
	for i := range waypoints {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i := range waypoints {
		if out[i].Observation != nil {
			continue
		}
		cov.Missing++
		fe := failures[i]
		if fe == nil {
			fe = &ForecastError{Index: i, Lat: waypoints[i].Lat, Lon: waypoints[i].Lon, Err: ctx.Err()}
		}
		cov.Failures = append(cov.Failures, fe)
		log.Printf("WARN: %v", fe)
	}

	log.Printf("INFO: matched forecasts for %d of %d waypoints (%d lookups run)",
		cov.Total-cov.Missing, cov.Total, done.Load())
	return out, cov
}

func (c *Correlator) lookup(ctx context.Context, wp route.Waypoint, from, to time.Time) (*Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	forecast, err := c.provider.Hourly(ctx, ForecastRequest{
		Lat:       wp.Lat,
		Lon:       wp.Lon,
		From:      from,
		To:        to,
		Variables: c.variables,
	})
	if err != nil {
		return nil, err
	}

	idx, ok := forecast.NearestIndex(wp.ProjectedTime)
	if !ok {
		return nil, ErrNoUsableRecord
	}
	obs, ok := forecast.ObservationAt(idx)
	if !ok {
		return nil, ErrNoUsableRecord
	}
	return obs, nil
}
