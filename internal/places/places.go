package places

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

// ErrNoPlace is returned when a position has no usable name.
var ErrNoPlace = errors.New("no place name for position")

// Namer names the place at a position.
type Namer interface {
	PlaceName(ctx context.Context, p geo.Point) (string, error)
}

// lookupFunc matches geocoder.GeocodingReverse.
type lookupFunc func(geocoder.Location) ([]geocoder.Address, error)

// GoogleNamer reverse geocodes through the Google Geocoding API.
type GoogleNamer struct {
	lookup lookupFunc
}

var keyOnce sync.Once

// NewGoogleNamer configures the geocoder with apiKey. The key is process
// wide in the geocoder package, so only the first call sets it.
func NewGoogleNamer(apiKey string) *GoogleNamer {
	keyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleNamer{lookup: geocoder.GeocodingReverse}
}

// PlaceName returns the city at p, falling back to the formatted address.
func (g *GoogleNamer) PlaceName(ctx context.Context, p geo.Point) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addresses, err := g.lookup(geocoder.Location{Latitude: p.Lat, Longitude: p.Lon})
	if err != nil {
		return "", err
	}
	for _, a := range addresses {
		if name := strings.TrimSpace(a.City); name != "" {
			return name, nil
		}
	}
	for _, a := range addresses {
		if name := strings.TrimSpace(a.FormattedAddress); name != "" {
			return name, nil
		}
	}
	return "", ErrNoPlace
}

// Title builds "From - To" for a route, or "" when either end has no name.
func Title(ctx context.Context, n Namer, from, to geo.Point) string {
	if n == nil {
		return ""
	}
	start, err := n.PlaceName(ctx, from)
	if err != nil {
		return ""
	}
	finish, err := n.PlaceName(ctx, to)
	if err != nil {
		return ""
	}
	if start == finish {
		return start + " loop"
	}
	return start + " - " + finish
}
