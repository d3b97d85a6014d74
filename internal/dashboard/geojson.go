package dashboard

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

// GeoJSON exports the route and every waypoint as a FeatureCollection.
// Waypoints without a forecast are included with "forecast": false.
func GeoJSON(spec *ChartSpec, waypoints []weather.AnnotatedWaypoint) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, len(spec.Route))
	for i, p := range spec.Route {
		line[i] = orb.Point{p.Lon, p.Lat}
	}
	routeFeature := geojson.NewFeature(line)
	routeFeature.Properties["name"] = spec.Title
	routeFeature.Properties["lengthKm"] = spec.RouteLengthKm
	routeFeature.Properties["preset"] = spec.Preset.Name
	fc.Append(routeFeature)

	for i, wp := range waypoints {
		f := geojson.NewFeature(orb.Point{wp.Lon, wp.Lat})
		f.Properties["index"] = i
		f.Properties["distanceKm"] = wp.DistanceKm
		f.Properties["elevation"] = wp.Elevation
		f.Properties["projectedTime"] = wp.ProjectedTime
		f.Properties["forecast"] = wp.Observation != nil
		if obs := wp.Observation; obs != nil {
			f.Properties["temperatureC"] = obs.TemperatureC
			f.Properties["feelsLikeC"] = obs.FeelsLikeC
			f.Properties["windSpeedKmh"] = obs.WindSpeedKmh
			f.Properties["windDirectionDeg"] = obs.WindDirectionDeg
			f.Properties["precipitationProbabilityPercent"] = obs.PrecipitationProbabilityPct
			f.Properties["cloudCoverPercent"] = obs.CloudCoverPct
			f.Properties["description"] = obs.Description
		}
		fc.Append(f)
	}

	return fc.MarshalJSON()
}
