package briefing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/places"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
	"github.com/i474232898/ride-weather-dashboard/internal/timezone"
	"github.com/i474232898/ride-weather-dashboard/internal/track"
	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

const (
	DateLayout   = "02.01.2006"
	ClockLayout  = "15:04"
	DefaultClock = "08:00"
	// DefaultSpeedKmh is the assumed average speed when a request has none.
	DefaultSpeedKmh = 27.0
)

// ErrInvalidStart is returned for an unparseable departure date or time.
var ErrInvalidStart = errors.New("invalid departure date or time")

// Request describes one briefing.
type Request struct {
	// TrackPath is read when Prepare is used; PrepareTrack takes a parsed track.
	TrackPath string
	// Date (DD.MM.YYYY) and Clock (HH:MM) are interpreted in the time zone of
	// the route start. Date defaults to tomorrow, Clock to DefaultClock.
	Date  string
	Clock string
	// Start overrides Date and Clock when set.
	Start time.Time
	// SpeedKmh is the average speed; nil uses the pipeline default. An explicit
	// non-positive value is rejected with route.ErrInvalidSpeed.
	SpeedKmh *float64
}

// Result carries every intermediate product of a briefing.
type Result struct {
	Track     *track.Track                `json:"track"`
	Start     time.Time                   `json:"start"`
	SpeedKmh  float64                     `json:"speedKmh"`
	Waypoints []weather.AnnotatedWaypoint `json:"waypoints"`
	Coverage  weather.Coverage            `json:"coverage"`
	Spec      *dashboard.ChartSpec        `json:"-"`
	Rendered  bool                        `json:"-"`
}

// Pipeline turns a track into an annotated, rendered ride briefing.
type Pipeline struct {
	sampler    route.Sampler
	correlator *weather.Correlator
	composer   *dashboard.Composer
	zones      timezone.Service
	namer      places.Namer
	speedKmh   float64
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimezones resolves departure times in the zone of the route start.
// Without it departure times are read as UTC.
func WithTimezones(s timezone.Service) Option {
	return func(p *Pipeline) { p.zones = s }
}

// WithNamer titles dashboards with the names of the start and finish.
func WithNamer(n places.Namer) Option {
	return func(p *Pipeline) { p.namer = n }
}

// WithDefaultSpeed sets the speed used when a request has none.
func WithDefaultSpeed(kmh float64) Option {
	return func(p *Pipeline) {
		if kmh > 0 {
			p.speedKmh = kmh
		}
	}
}

// WithClock replaces time.Now for default departure dates.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(sampler route.Sampler, correlator *weather.Correlator, composer *dashboard.Composer, opts ...Option) *Pipeline {
	p := &Pipeline{
		sampler:    sampler,
		correlator: correlator,
		composer:   composer,
		speedKmh:   DefaultSpeedKmh,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run prepares the briefing for req and renders it to outputPath.
func (p *Pipeline) Run(ctx context.Context, req Request, outputPath string) (*Result, error) {
	res, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.Compose(ctx, res, outputPath); err != nil {
		return res, err
	}
	return res, nil
}

// Prepare loads req.TrackPath and correlates it with forecasts.
func (p *Pipeline) Prepare(ctx context.Context, req Request) (*Result, error) {
	trk, err := track.Load(req.TrackPath)
	if err != nil {
		return nil, err
	}
	return p.PrepareTrack(ctx, trk, req)
}

// PrepareTrack samples trk and correlates the waypoints with forecasts.
func (p *Pipeline) PrepareTrack(ctx context.Context, trk *track.Track, req Request) (*Result, error) {
	start, err := p.departure(trk, req)
	if err != nil {
		return nil, err
	}
	speed := p.speedKmh
	if req.SpeedKmh != nil {
		speed = *req.SpeedKmh
	}

	waypoints, err := p.sampler.Sample(trk.Points, start, speed)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: sampled %d waypoints from %d track points (%.1f km), departure %s at %.1f km/h",
		len(waypoints), len(trk.Points), trk.Summary.LengthKm, start.Format(time.RFC3339), speed)

	annotated, coverage := p.correlator.Correlate(ctx, waypoints)
	if coverage.Poor() {
		log.Printf("WARN: only %d of %d waypoints have a forecast", coverage.Total-coverage.Missing, coverage.Total)
	}

	return &Result{
		Track:     trk,
		Start:     start,
		SpeedKmh:  speed,
		Waypoints: annotated,
		Coverage:  coverage,
	}, nil
}

// Compose builds the chart spec for res and renders it to outputPath.
// A renderer failure leaves res.Rendered false without an error.
func (p *Pipeline) Compose(ctx context.Context, res *Result, outputPath string) error {
	spec, err := p.Spec(ctx, res)
	if err != nil {
		return err
	}
	res.Rendered = p.composer.Render(spec, outputPath)
	return nil
}

// Spec builds and stores the chart spec for res without rendering it.
func (p *Pipeline) Spec(ctx context.Context, res *Result) (*dashboard.ChartSpec, error) {
	spec, err := p.composer.Build(dashboard.Input{
		Title:     p.title(ctx, res.Track),
		Waypoints: res.Waypoints,
		Route:     res.Track.Positions(),
	})
	if err != nil {
		return nil, err
	}
	res.Spec = spec
	return spec, nil
}

func (p *Pipeline) title(ctx context.Context, trk *track.Track) string {
	name := trk.Summary.Name
	if len(trk.Points) > 0 {
		first, last := trk.Points[0].Position(), trk.Points[len(trk.Points)-1].Position()
		if named := places.Title(ctx, p.namer, first, last); named != "" {
			name = named
		}
	}
	if name == "" {
		name = dashboard.DefaultTitle
	}
	if trk.Summary.UphillM >= 1 {
		return fmt.Sprintf("%s (+%.0f m)", name, trk.Summary.UphillM)
	}
	return name
}

// departure resolves the start time of a request.
func (p *Pipeline) departure(trk *track.Track, req Request) (time.Time, error) {
	if !req.Start.IsZero() {
		return req.Start, nil
	}

	loc := time.UTC
	if p.zones != nil && len(trk.Points) > 0 {
		first := trk.Points[0]
		zone, err := p.zones.Location(first.Lat, first.Lon)
		if err != nil {
			log.Printf("WARN: falling back to UTC for departure time: %v", err)
		} else {
			loc = zone
		}
	}

	date := req.Date
	if date == "" {
		date = p.now().In(loc).AddDate(0, 0, 1).Format(DateLayout)
	}
	clock := req.Clock
	if clock == "" {
		clock = DefaultClock
	}
	return ParseStart(date, clock, loc)
}

// ParseStart combines a DD.MM.YYYY date and an HH:MM time in loc.
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidStart, date, clock)
	}
	return t, nil
}
