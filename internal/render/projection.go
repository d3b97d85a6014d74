package render

import (
	"math"

	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

// projection maps lon/lat onto a pixel box with an equirectangular
// projection scaled at the box's mean latitude, keeping aspect ratio.
type projection struct {
	midLat, midLon float64
	cx, cy         float64
	lonScale       float64
	scale          float64
}

func newProjection(b dashboard.Bounds, x, y, w, h float64) projection {
	midLat := (b.MinLat + b.MaxLat) / 2
	lonScale := math.Cos(midLat * math.Pi / 180)

	spanLon := (b.MaxLon - b.MinLon) * lonScale
	spanLat := b.MaxLat - b.MinLat
	scale := math.Inf(1)
	if spanLon > 0 {
		scale = w / spanLon
	}
	if spanLat > 0 {
		scale = math.Min(scale, h/spanLat)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	return projection{
		midLat:   midLat,
		midLon:   (b.MinLon + b.MaxLon) / 2,
		cx:       x + w/2,
		cy:       y + h/2,
		lonScale: lonScale,
		scale:    scale,
	}
}

func (p projection) xy(pt geo.Point) (float64, float64) {
	return p.cx + (pt.Lon-p.midLon)*p.lonScale*p.scale,
		p.cy - (pt.Lat-p.midLat)*p.scale
}

// pixels converts a length in degrees of latitude to pixels.
func (p projection) pixels(deg float64) float64 {
	return deg * p.scale
}

// arrowHead returns the two base corners of a triangular head of the given
// size whose tip is at (hx, hy) and which points away from (tx, ty).
func arrowHead(tx, ty, hx, hy, size float64) (lx, ly, rx, ry float64) {
	angle := math.Atan2(hy-ty, hx-tx)
	spread := math.Pi / 6
	lx = hx - size*math.Cos(angle-spread)
	ly = hy - size*math.Sin(angle-spread)
	rx = hx - size*math.Cos(angle+spread)
	ry = hy - size*math.Sin(angle+spread)
	return
}

// windColor buckets wind speed into calm, breezy and strong.
func windColor(speedKmh float64) string {
	switch {
	case speedKmh < 15:
		return "#2e86de"
	case speedKmh < 30:
		return "#f39c12"
	default:
		return "#c0392b"
	}
}

// valueRange pads the data range so flat series still get a drawable axis.
func valueRange(values ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, set := range values {
		for _, v := range set {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := math.Max((hi-lo)*0.1, 1)
	return lo - pad, hi + pad
}
