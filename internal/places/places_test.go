package places

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

func TestGoogleNamer(t *testing.T) {
	tests := []struct {
		name      string
		addresses []geocoder.Address
		err       error
		want      string
		wantErr   bool
	}{
		{name: "city", addresses: []geocoder.Address{{City: "Novi Sad", FormattedAddress: "Bulevar, Novi Sad"}}, want: "Novi Sad"},
		{name: "formatted fallback", addresses: []geocoder.Address{{FormattedAddress: "Fruska Gora, Serbia"}}, want: "Fruska Gora, Serbia"},
		{name: "empty", addresses: nil, wantErr: true},
		{name: "lookup error", err: errors.New("quota"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got geocoder.Location
			g := &GoogleNamer{lookup: func(loc geocoder.Location) ([]geocoder.Address, error) {
				got = loc
				return tt.addresses, tt.err
			}}

			name, err := g.PlaceName(context.Background(), geo.Point{Lat: 45.25, Lon: 19.85})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, name)
			}
			if got.Latitude != 45.25 || got.Longitude != 19.85 {
				t.Errorf("unexpected lookup location %+v", got)
			}
		})
	}
}

type staticNamer map[geo.Point]string

func (s staticNamer) PlaceName(_ context.Context, p geo.Point) (string, error) {
	if name, ok := s[p]; ok {
		return name, nil
	}
	return "", ErrNoPlace
}

func TestTitle(t *testing.T) {
	a, b, c := geo.Point{Lat: 1, Lon: 1}, geo.Point{Lat: 2, Lon: 2}, geo.Point{Lat: 3, Lon: 3}
	n := staticNamer{a: "Novi Sad", b: "Sremski Karlovci"}

	if got := Title(context.Background(), n, a, b); got != "Novi Sad - Sremski Karlovci" {
		t.Errorf("unexpected title %q", got)
	}
	if got := Title(context.Background(), n, a, a); got != "Novi Sad loop" {
		t.Errorf("unexpected loop title %q", got)
	}
	if got := Title(context.Background(), n, a, c); got != "" {
		t.Errorf("expected empty title for unknown place, got %q", got)
	}
	if got := Title(context.Background(), nil, a, b); got != "" {
		t.Errorf("expected empty title without namer, got %q", got)
	}
}
