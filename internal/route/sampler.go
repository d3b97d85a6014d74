package route

import (
	"errors"
	"math"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
	"github.com/i474232898/ride-weather-dashboard/internal/track"
)

// DefaultIntervalKm is the spacing between emitted waypoints.
const DefaultIntervalKm = 6.0

// ErrInvalidSpeed is returned when the travel speed is not positive.
var ErrInvalidSpeed = errors.New("travel speed must be greater than zero")

// Waypoint is a position on the route with the time the rider is expected there.
type Waypoint struct {
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	Elevation     float64   `json:"elevation"`
	DistanceKm    float64   `json:"distanceKm"`
	ProjectedTime time.Time `json:"projectedTime"`
}

// Position returns the waypoint's coordinates.
func (w Waypoint) Position() geo.Point {
	return geo.Point{Lat: w.Lat, Lon: w.Lon}
}

// Sampler resamples a track at a fixed along-route interval.
type Sampler struct {
	IntervalKm float64
}

// NewSampler returns a Sampler using intervalKm, or DefaultIntervalKm when intervalKm <= 0.
func NewSampler(intervalKm float64) Sampler {
	if intervalKm <= 0 {
		intervalKm = DefaultIntervalKm
	}
	return Sampler{IntervalKm: intervalKm}
}

// Sample emits one waypoint per full interval of route length (at least one for
// a route of non-zero length) and projects each waypoint's arrival time from
// start and a constant speedKmh.
func (s Sampler) Sample(points []track.Point, start time.Time, speedKmh float64) ([]Waypoint, error) {
	if speedKmh <= 0 {
		return nil, ErrInvalidSpeed
	}
	if len(points) < 2 {
		return []Waypoint{}, nil
	}

	intervalKm := s.IntervalKm
	if intervalKm <= 0 {
		intervalKm = DefaultIntervalKm
	}
	interval := intervalKm * 1000

	// cumulative[i] is the distance from the first point to points[i].
	cumulative := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cumulative[i] = cumulative[i-1] + geo.Distance(points[i-1].Position(), points[i].Position())
	}
	total := cumulative[len(cumulative)-1]
	if total <= 0 {
		return []Waypoint{}, nil
	}

	n := int(math.Floor(total / interval))
	if n < 1 {
		n = 1
	}

	speedMps := speedKmh * 1000 / 3600
	waypoints := make([]Waypoint, 0, n)
	seg := 1
	for k := 1; k <= n; k++ {
		target := math.Min(float64(k)*interval, total)

		for seg < len(points)-1 && cumulative[seg] < target {
			seg++
		}

		before := cumulative[seg-1]
		segLen := cumulative[seg] - before
		ratio := 1.0
		if segLen > 0 {
			ratio = clamp01((target - before) / segLen)
		}

		a, b := points[seg-1], points[seg]
		waypoints = append(waypoints, Waypoint{
			Lat:           lerp(a.Lat, b.Lat, ratio),
			Lon:           lerp(a.Lon, b.Lon, ratio),
			Elevation:     lerp(a.Elevation, b.Elevation, ratio),
			DistanceKm:    target / 1000,
			ProjectedTime: start.Add(travelTime(target, speedMps)),
		})
	}

	return waypoints, nil
}

// travelTime is rounded to the millisecond so equal distances give equal offsets.
func travelTime(meters, speedMps float64) time.Duration {
	ms := math.Round(meters / speedMps * 1000)
	return time.Duration(ms) * time.Millisecond
}

func lerp(a, b, ratio float64) float64 {
	return a + ratio*(b-a)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
