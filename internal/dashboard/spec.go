package dashboard

import (
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

// Metric identifies a plotted time series.
type Metric string

const (
	MetricTemperature              Metric = "temperature"
	MetricFeelsLike                Metric = "feels_like"
	MetricPrecipitationProbability Metric = "precipitation_probability"
	MetricCloudCover               Metric = "cloud_cover"
	MetricWindSpeed                Metric = "wind_speed"
	MetricWindGusts                Metric = "wind_gusts"
	MetricElevation                Metric = "elevation"
)

// Series is one metric sampled at ChartSpec.Times.
type Series struct {
	Metric Metric    `json:"metric"`
	Label  string    `json:"label"`
	Unit   string    `json:"unit"`
	Values []float64 `json:"values"`
}

// Vector is a wind arrow on the route map. Head sits on the waypoint.
type Vector struct {
	Tail     geo.Point `json:"tail"`
	Head     geo.Point `json:"head"`
	SpeedKmh float64   `json:"speedKmh"`
	Label    string    `json:"label"`
}

// Arrow marks the direction of travel along the route.
type Arrow struct {
	Tail geo.Point `json:"tail"`
	Head geo.Point `json:"head"`
}

// Bounds is the visible map area.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// ChartSpec is everything a renderer needs to draw one dashboard.
type ChartSpec struct {
	Title           string      `json:"title"`
	Subtitle        string      `json:"subtitle"`
	RouteLengthKm   float64     `json:"routeLengthKm"`
	Preset          ScalePreset `json:"preset"`
	Times           []time.Time `json:"times"`
	DistancesKm     []float64   `json:"distancesKm"`
	Series          []Series    `json:"series"`
	Route           []geo.Point `json:"route"`
	WindVectors     []Vector    `json:"windVectors"`
	DirectionArrows []Arrow     `json:"directionArrows"`
	Start           geo.Point   `json:"start"`
	Finish          geo.Point   `json:"finish"`
	Bounds          Bounds      `json:"bounds"`
}

// Values returns the series for m.
func (s *ChartSpec) Values(m Metric) (Series, bool) {
	for _, series := range s.Series {
		if series.Metric == m {
			return series, true
		}
	}
	return Series{}, false
}
