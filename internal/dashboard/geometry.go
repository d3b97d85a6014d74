package dashboard

import (
	"math"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

// arrowEvery selects every n-th consecutive pair of route points for a
// direction marker.
const arrowEvery = 3

// windVector builds the wind arrow for a waypoint. The bearing is rotated by
// -90° into the planar angle; the vector ends at the waypoint. The longitude
// component is stretched by 1/cos(lat) so the arrow keeps its angle and length
// once the map is projected.
func windVector(at geo.Point, bearingDeg, length float64) (tail, head geo.Point) {
	theta := (bearingDeg - 90) * math.Pi / 180
	dx := math.Cos(theta) * length / math.Cos(at.Lat*math.Pi/180)
	dy := math.Sin(theta) * length
	return geo.Point{Lat: at.Lat - dy, Lon: at.Lon - dx}, at
}

// directionArrows places a marker of the given length at the start of every
// third consecutive pair of route points, pointing along the segment.
func directionArrows(route []geo.Point, length float64) []Arrow {
	arrows := make([]Arrow, 0, len(route)/arrowEvery+1)
	for i := 0; i+1 < len(route); i += arrowEvery {
		a, b := route[i], route[i+1]
		dx, dy := b.Lon-a.Lon, b.Lat-a.Lat
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		arrows = append(arrows, Arrow{
			Tail: a,
			Head: geo.Point{Lat: a.Lat + dy/norm*length, Lon: a.Lon + dx/norm*length},
		})
	}
	return arrows
}

// mapBounds covers all points with a margin of 10% of the span, at least 0.01°.
func mapBounds(points ...[]geo.Point) Bounds {
	b := Bounds{MinLat: math.Inf(1), MaxLat: math.Inf(-1), MinLon: math.Inf(1), MaxLon: math.Inf(-1)}
	for _, set := range points {
		for _, p := range set {
			b.MinLat = math.Min(b.MinLat, p.Lat)
			b.MaxLat = math.Max(b.MaxLat, p.Lat)
			b.MinLon = math.Min(b.MinLon, p.Lon)
			b.MaxLon = math.Max(b.MaxLon, p.Lon)
		}
	}
	if math.IsInf(b.MinLat, 1) {
		return Bounds{}
	}

	latMargin := math.Max((b.MaxLat-b.MinLat)*0.1, 0.01)
	lonMargin := math.Max((b.MaxLon-b.MinLon)*0.1, 0.01)
	b.MinLat -= latMargin
	b.MaxLat += latMargin
	b.MinLon -= lonMargin
	b.MaxLon += lonMargin
	return b
}
