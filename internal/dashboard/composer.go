package dashboard

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

// DefaultTitle is used when the input carries no title.
const DefaultTitle = "Ride weather briefing"

// ErrNoRenderableData is returned when no waypoint has a forecast.
var ErrNoRenderableData = errors.New("no waypoints with weather data to render")

// RenderError wraps a renderer failure for one output path.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer draws a ChartSpec to a file.
type Renderer interface {
	Render(spec *ChartSpec, outputPath string) error
}

// Input is what the composer turns into a ChartSpec.
type Input struct {
	Title     string
	Waypoints []weather.AnnotatedWaypoint
	// Route is the full track geometry. When empty, retained waypoint
	// positions are used instead.
	Route []geo.Point
}

// Composer builds chart specs and hands them to a Renderer.
type Composer struct {
	renderer Renderer
	presets  []ScalePreset
}

// NewComposer creates a Composer. A nil or empty presets table selects DefaultPresets.
func NewComposer(renderer Renderer, presets []ScalePreset) *Composer {
	if len(presets) == 0 {
		presets = DefaultPresets()
	}
	return &Composer{renderer: renderer, presets: sortPresets(presets)}
}

// Compose builds the chart spec for in and renders it to outputPath. It
// returns ErrNoRenderableData when nothing can be drawn and false when the
// renderer fails.
func (c *Composer) Compose(in Input, outputPath string) (bool, error) {
	spec, err := c.Build(in)
	if err != nil {
		return false, err
	}
	return c.Render(spec, outputPath), nil
}

// Render draws spec and reports success. Renderer errors are logged.
func (c *Composer) Render(spec *ChartSpec, outputPath string) bool {
	if c.renderer == nil {
		log.Printf("ERROR: %v", &RenderError{Path: outputPath, Err: errors.New("no renderer configured")})
		return false
	}
	if err := c.renderer.Render(spec, outputPath); err != nil {
		log.Printf("ERROR: %v", &RenderError{Path: outputPath, Err: err})
		return false
	}
	log.Printf("INFO: dashboard written to %s", outputPath)
	return true
}

// Build derives the chart spec from in without side effects.
func (c *Composer) Build(in Input) (*ChartSpec, error) {
	retained := make([]weather.AnnotatedWaypoint, 0, len(in.Waypoints))
	for _, wp := range in.Waypoints {
		if wp.Observation != nil {
			retained = append(retained, wp)
		}
	}
	if len(retained) == 0 {
		return nil, ErrNoRenderableData
	}

	positions := make([]geo.Point, len(retained))
	for i, wp := range retained {
		positions[i] = wp.Position()
	}
	lengthKm := geo.PathLength(positions) / 1000
	preset := SelectPreset(c.presets, lengthKm)

	route := in.Route
	if len(route) == 0 {
		route = positions
	}

	n := len(retained)
	times := make([]time.Time, n)
	distances := make([]float64, n)
	temperature := make([]float64, n)
	feelsLike := make([]float64, n)
	precipitation := make([]float64, n)
	cloud := make([]float64, n)
	wind := make([]float64, n)
	gusts := make([]float64, n)
	elevation := make([]float64, n)
	vectors := make([]Vector, n)
	tails := make([]geo.Point, n)

	for i, wp := range retained {
		obs := wp.Observation
		times[i] = wp.ProjectedTime
		distances[i] = wp.DistanceKm
		temperature[i] = obs.TemperatureC
		feelsLike[i] = obs.FeelsLikeC
		precipitation[i] = obs.PrecipitationProbabilityPct
		cloud[i] = obs.CloudCoverPct
		wind[i] = obs.WindSpeedKmh
		gusts[i] = obs.WindGustsKmh
		elevation[i] = wp.Elevation

		tail, head := windVector(positions[i], obs.WindDirectionDeg, preset.WindVectorLength)
		vectors[i] = Vector{
			Tail:     tail,
			Head:     head,
			SpeedKmh: obs.WindSpeedKmh,
			Label:    fmt.Sprintf("%.0f %s", obs.WindSpeedKmh, obs.WindDirectionCardinal),
		}
		tails[i] = tail
	}

	title := in.Title
	if title == "" {
		title = DefaultTitle
	}
	subtitle := fmt.Sprintf("%.1f km, %s to %s, forecasts for %d of %d waypoints",
		lengthKm, times[0].Format("Mon 02.01.2006 15:04"), times[n-1].Format("15:04"), n, len(in.Waypoints))

	series := []Series{
		{Metric: MetricTemperature, Label: "Temperature", Unit: "°C", Values: temperature},
		{Metric: MetricFeelsLike, Label: "Feels like", Unit: "°C", Values: feelsLike},
		{Metric: MetricPrecipitationProbability, Label: "Precipitation probability", Unit: "%", Values: precipitation},
		{Metric: MetricCloudCover, Label: "Cloud cover", Unit: "%", Values: cloud},
		{Metric: MetricWindSpeed, Label: "Wind speed", Unit: "km/h", Values: wind},
		{Metric: MetricWindGusts, Label: "Wind gusts", Unit: "km/h", Values: gusts},
		{Metric: MetricElevation, Label: "Elevation", Unit: "m", Values: elevation},
	}

	return &ChartSpec{
		Title:           title,
		Subtitle:        subtitle,
		RouteLengthKm:   lengthKm,
		Preset:          preset,
		Times:           times,
		DistancesKm:     distances,
		Series:          series,
		Route:           route,
		WindVectors:     vectors,
		DirectionArrows: directionArrows(route, preset.RouteArrowLength),
		Start:           route[0],
		Finish:          route[len(route)-1],
		Bounds:          mapBounds(route, positions, tails),
	}, nil
}
