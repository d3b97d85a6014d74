package weather

import (
	"math"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/route"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// Hourly variables requested from forecast providers.
const (
	VarTemperature              = "temperature_2m"
	VarFeelsLike                = "apparent_temperature"
	VarHumidity                 = "relative_humidity_2m"
	VarWindSpeed                = "wind_speed_10m"
	VarWindGusts                = "wind_gusts_10m"
	VarWindDirection            = "wind_direction_10m"
	VarPressure                 = "pressure_msl"
	VarWeatherCode              = "weather_code"
	VarPrecipitationProbability = "precipitation_probability"
	VarCloudCover               = "cloud_cover"
)

// HourlyVariables lists every variable an Observation is built from.
var HourlyVariables = []string{
	VarTemperature,
	VarFeelsLike,
	VarHumidity,
	VarWindSpeed,
	VarWindGusts,
	VarWindDirection,
	VarPressure,
	VarWeatherCode,
	VarPrecipitationProbability,
	VarCloudCover,
}

// requiredVariables must be present for a record to be usable.
var requiredVariables = []string{VarTemperature, VarWindSpeed, VarWindDirection}

// Observation is the forecast record matched to one waypoint.
type Observation struct {
	Time                        time.Time `json:"time"`
	TemperatureC                float64   `json:"temperatureC"`
	FeelsLikeC                  float64   `json:"feelsLikeC"`
	HumidityPct                 float64   `json:"humidityPercent"`
	WindSpeedKmh                float64   `json:"windSpeedKmh"`
	WindGustsKmh                float64   `json:"windGustsKmh"`
	WindDirectionDeg            float64   `json:"windDirectionDeg"`
	WindDirectionCardinal       string    `json:"windDirectionCardinal"`
	PressureHpa                 float64   `json:"pressureHpa"`
	WeatherCode                 int       `json:"weatherCode"`
	Condition                   Condition `json:"condition"`
	Description                 string    `json:"description"`
	PrecipitationProbabilityPct float64   `json:"precipitationProbabilityPercent"`
	CloudCoverPct               float64   `json:"cloudCoverPercent"`
}

// AnnotatedWaypoint pairs a waypoint with its forecast. Observation is nil when
// no usable forecast could be obtained.
type AnnotatedWaypoint struct {
	route.Waypoint
	Observation *Observation `json:"observation"`
}

// HourlyForecast is a provider response laid out on a regular time grid.
// Values holds one array per variable, each of length Count; nil entries are
// missing values.
type HourlyForecast struct {
	Start    time.Time             `json:"start"`
	Interval time.Duration         `json:"interval"`
	Count    int                   `json:"count"`
	Values   map[string][]*float64 `json:"values"`
}

// Last returns the timestamp of the final grid record.
func (f HourlyForecast) Last() time.Time {
	if f.Count == 0 {
		return f.Start
	}
	return f.Start.Add(time.Duration(f.Count-1) * f.Interval)
}

// NearestIndex returns the grid index closest to t. Ties resolve to the earlier
// record. ok is false for an empty grid or when t lies more than one interval
// outside it.
func (f HourlyForecast) NearestIndex(t time.Time) (int, bool) {
	if f.Count == 0 || f.Interval <= 0 {
		return 0, false
	}
	if t.Before(f.Start.Add(-f.Interval)) || t.After(f.Last().Add(f.Interval)) {
		return 0, false
	}

	offset := t.Sub(f.Start)
	if offset <= 0 {
		return 0, true
	}
	idx := int(offset / f.Interval)
	if rem := offset % f.Interval; rem*2 > f.Interval {
		idx++
	}
	if idx > f.Count-1 {
		idx = f.Count - 1
	}
	return idx, true
}

// ObservationAt builds the observation for grid index i, or returns false when
// a required variable is missing there.
func (f HourlyForecast) ObservationAt(i int) (*Observation, bool) {
	if i < 0 || i >= f.Count {
		return nil, false
	}
	for _, name := range requiredVariables {
		if _, ok := f.value(name, i); !ok {
			return nil, false
		}
	}

	get := func(name string) float64 {
		v, _ := f.value(name, i)
		return v
	}

	code := int(math.Round(get(VarWeatherCode)))
	direction := get(VarWindDirection)
	return &Observation{
		Time:                        f.Start.Add(time.Duration(i) * f.Interval),
		TemperatureC:                get(VarTemperature),
		FeelsLikeC:                  get(VarFeelsLike),
		HumidityPct:                 get(VarHumidity),
		WindSpeedKmh:                get(VarWindSpeed),
		WindGustsKmh:                get(VarWindGusts),
		WindDirectionDeg:            direction,
		WindDirectionCardinal:       Cardinal(direction),
		PressureHpa:                 get(VarPressure),
		WeatherCode:                 code,
		Condition:                   ConditionFromCode(code),
		Description:                 Describe(code),
		PrecipitationProbabilityPct: get(VarPrecipitationProbability),
		CloudCoverPct:               get(VarCloudCover),
	}, true
}

func (f HourlyForecast) value(name string, i int) (float64, bool) {
	series, ok := f.Values[name]
	if !ok || i >= len(series) || series[i] == nil {
		return 0, false
	}
	return *series[i], true
}
