package track

import (
	"errors"
	"fmt"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

// ErrNoTimedPoints is wrapped by LoadError when a document has no timestamped track points.
var ErrNoTimedPoints = errors.New("no timestamped track points")

// LoadError is returned when a track cannot be turned into a usable point sequence.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load track %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Point is a single recorded track position.
type Point struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Elevation float64   `json:"elevation"`
	Time      time.Time `json:"time"`
}

// Position returns the point's coordinates.
func (p Point) Position() geo.Point {
	return geo.Point{Lat: p.Lat, Lon: p.Lon}
}

// Summary holds whole-document figures reported alongside the dashboard.
type Summary struct {
	Name       string  `json:"name,omitempty"`
	LengthKm   float64 `json:"lengthKm"`
	UphillM    float64 `json:"uphillM"`
	DownhillM  float64 `json:"downhillM"`
	PointCount int     `json:"pointCount"`
}

// Track is the ordered sequence of timestamped points read from a GPX document.
type Track struct {
	Points  []Point `json:"points"`
	Summary Summary `json:"summary"`
}

// Positions returns the coordinates of all points in order.
func (t *Track) Positions() []geo.Point {
	out := make([]geo.Point, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Position()
	}
	return out
}

// Load reads and parses the GPX file at path.
func Load(path string) (*Track, error) {
	doc, err := gpx.ParseFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return fromDocument(doc, path)
}

// Parse reads a GPX document held in memory. source names it in errors.
func Parse(data []byte, source string) (*Track, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return fromDocument(doc, source)
}

func fromDocument(doc *gpx.GPX, source string) (*Track, error) {
	points := collectPoints(doc)
	if len(points) == 0 {
		return nil, &LoadError{Source: source, Err: ErrNoTimedPoints}
	}

	name := doc.Name
	if name == "" && len(doc.Tracks) > 0 {
		name = doc.Tracks[0].Name
	}

	climb := doc.UphillDownhill()
	return &Track{
		Points: points,
		Summary: Summary{
			Name:       name,
			LengthKm:   doc.Length2D() / 1000,
			UphillM:    climb.Uphill,
			DownhillM:  climb.Downhill,
			PointCount: len(points),
		},
	}, nil
}

// collectPoints walks tracks, segments and points in document order and keeps
// only points carrying a timestamp.
func collectPoints(doc *gpx.GPX) []Point {
	points := make([]Point, 0)

	for _, trk := range doc.Tracks {
		for _, segment := range trk.Segments {
			for _, pt := range segment.Points {
				if pt.Timestamp.IsZero() {
					continue
				}
				var ele float64
				if pt.Elevation.NotNull() {
					ele = pt.Elevation.Value()
				}
				points = append(points, Point{
					Lat:       pt.Latitude,
					Lon:       pt.Longitude,
					Elevation: ele,
					Time:      pt.Timestamp.UTC(),
				})
			}
		}
	}

	return points
}
