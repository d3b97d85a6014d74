package render

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/geo"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
	"github.com/i474232898/ride-weather-dashboard/internal/weather"
)

func testSpec(t *testing.T, n int) *dashboard.ChartSpec {
	t.Helper()
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	wps := make([]weather.AnnotatedWaypoint, n)
	for i := range wps {
		wps[i] = weather.AnnotatedWaypoint{
			Waypoint: route.Waypoint{
				Lat:           45 + float64(i)*0.05,
				Lon:           20 + float64(i)*0.02,
				Elevation:     80 + float64(i*15),
				DistanceKm:    float64(i+1) * 6,
				ProjectedTime: start.Add(time.Duration(i+1) * 13 * time.Minute),
			},
			Observation: &weather.Observation{
				TemperatureC:                18 + float64(i),
				FeelsLikeC:                  17,
				WindSpeedKmh:                float64(8 + i*6),
				WindGustsKmh:                float64(14 + i*6),
				WindDirectionDeg:            float64(i * 40),
				PrecipitationProbabilityPct: 10,
				CloudCoverPct:               40,
			},
		}
	}

	spec, err := dashboard.NewComposer(nil, nil).Build(dashboard.Input{Title: "Render test", Waypoints: wps})
	if err != nil {
		t.Fatalf("build spec: %v", err)
	}
	return spec
}

func TestPNGRender(t *testing.T) {
	for _, n := range []int{1, 6} {
		path := filepath.Join(t.TempDir(), "nested", "dashboard.png")
		if err := (PNG{}).Render(testSpec(t, n), path); err != nil {
			t.Fatalf("render %d waypoints: %v", n, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open output: %v", err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		if cfg.Width != canvasWidth || cfg.Height != canvasHeight {
			t.Errorf("expected %dx%d image, got %dx%d", canvasWidth, canvasHeight, cfg.Width, cfg.Height)
		}
	}
}

func TestSVGRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.svg")
	if err := (SVG{}).Render(testSpec(t, 5), path); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	for _, want := range []string{"<svg", "<polyline", "<polygon", "Render test", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected SVG output to contain %q", want)
		}
	}
}

func TestRenderRejectsEmptySpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := (PNG{}).Render(&dashboard.ChartSpec{}, path); err == nil {
		t.Fatal("expected error for empty spec")
	}
	if err := (SVG{}).Render(nil, path); err == nil {
		t.Fatal("expected error for nil spec")
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want dashboard.Renderer
	}{
		{"weather_dashboard.png", PNG{}},
		{"out/ride.SVG", SVG{}},
		{"no-extension", PNG{}},
	}
	for _, tt := range tests {
		if got := ForPath(tt.path); got != tt.want {
			t.Errorf("ForPath(%q) = %T, want %T", tt.path, got, tt.want)
		}
	}
}

func TestProjectionKeepsAspect(t *testing.T) {
	b := dashboard.Bounds{MinLat: 44, MaxLat: 46, MinLon: 19, MaxLon: 21}
	p := newProjection(b, 0, 0, 1000, 500)

	cx, cy := p.xy(geo.Point{Lat: 45, Lon: 20})
	if round(cx) != 500 || round(cy) != 250 {
		t.Errorf("expected bounds centre at box centre, got %.1f,%.1f", cx, cy)
	}
	if p.pixels(2) > 500+1e-9 {
		t.Errorf("latitude span overflows box height: %f", p.pixels(2))
	}
}

// compassAngle returns the on-screen heading of the segment from (tx, ty) to
// (hx, hy), clockwise from north, with y growing downwards.
func compassAngle(tx, ty, hx, hy float64) float64 {
	deg := math.Atan2(hx-tx, ty-hy) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

func TestWindVectorAngleSurvivesProjection(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for _, lat := range []float64{0, 45, 60, 70} {
		for _, bearing := range []float64{45, 120, 300} {
			wps := []weather.AnnotatedWaypoint{{
				Waypoint: route.Waypoint{Lat: lat, Lon: 20, DistanceKm: 6, ProjectedTime: start},
				Observation: &weather.Observation{
					TemperatureC:     15,
					WindSpeedKmh:     20,
					WindDirectionDeg: bearing,
				},
			}}
			spec, err := dashboard.NewComposer(nil, nil).Build(dashboard.Input{Waypoints: wps})
			if err != nil {
				t.Fatalf("build spec: %v", err)
			}

			proj := newProjection(spec.Bounds, 0, 0, 1000, 1000)
			v := spec.WindVectors[0]
			tx, ty := proj.xy(v.Tail)
			hx, hy := proj.xy(v.Head)

			// The planar angle is bearing-90, which puts the drawn heading at 180-bearing.
			want := math.Mod(540-bearing, 360)
			got := compassAngle(tx, ty, hx, hy)
			if diff := math.Abs(math.Remainder(got-want, 360)); diff > 0.5 {
				t.Errorf("lat %.0f bearing %.0f: drawn at %.2f°, want %.2f°", lat, bearing, got, want)
			}

			wantLen := proj.pixels(spec.Preset.WindVectorLength)
			if gotLen := math.Hypot(hx-tx, hy-ty); math.Abs(gotLen-wantLen) > wantLen*0.01 {
				t.Errorf("lat %.0f bearing %.0f: drawn length %.2f px, want %.2f px", lat, bearing, gotLen, wantLen)
			}
		}
	}
}
