package track

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const timedGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Morning loop</name>
    <trkseg>
      <trkpt lat="45.2671" lon="19.8335"><ele>80</ele><time>2024-05-01T06:00:00Z</time></trkpt>
      <trkpt lat="45.2700" lon="19.8400"><time>2024-05-01T06:01:00Z</time></trkpt>
      <trkpt lat="45.2750" lon="19.8500"><ele>95</ele></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="45.2800" lon="19.8600"><ele>110</ele><time>2024-05-01T06:03:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

const untimedGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="45.2671" lon="19.8335"><ele>80</ele></trkpt>
    <trkpt lat="45.2700" lon="19.8400"><ele>85</ele></trkpt>
  </trkseg></trk>
</gpx>`

func TestParseKeepsOnlyTimedPoints(t *testing.T) {
	trk, err := Parse([]byte(timedGPX), "inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trk.Points) != 3 {
		t.Fatalf("expected 3 timed points, got %d", len(trk.Points))
	}
	if trk.Points[1].Elevation != 0 {
		t.Errorf("expected missing elevation to default to 0, got %f", trk.Points[1].Elevation)
	}
	if trk.Points[2].Lat != 45.28 || trk.Points[2].Elevation != 110 {
		t.Errorf("unexpected last point: %+v", trk.Points[2])
	}
	if trk.Summary.PointCount != 3 || trk.Summary.Name != "Morning loop" {
		t.Errorf("unexpected summary: %+v", trk.Summary)
	}
	if trk.Summary.LengthKm <= 0 {
		t.Errorf("expected positive track length, got %f", trk.Summary.LengthKm)
	}
	for i := 1; i < len(trk.Points); i++ {
		if !trk.Points[i].Time.After(trk.Points[i-1].Time) {
			t.Errorf("points out of document order at %d", i)
		}
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantNoTimed bool
	}{
		{name: "no timestamps", data: untimedGPX, wantNoTimed: true},
		{name: "not xml", data: "this is not a gpx document", wantNoTimed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "inline")
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
			if got := errors.Is(err, ErrNoTimedPoints); got != tt.wantNoTimed {
				t.Fatalf("errors.Is(ErrNoTimedPoints) = %v, want %v", got, tt.wantNoTimed)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ride.gpx")
	if err := os.WriteFile(path, []byte(timedGPX), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	trk, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trk.Positions()) != len(trk.Points) {
		t.Fatalf("positions and points differ in length")
	}

	_, err = Load(filepath.Join(dir, "missing.gpx"))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError for missing file, got %v", err)
	}
	if loadErr.Source != filepath.Join(dir, "missing.gpx") {
		t.Errorf("expected source path in error, got %q", loadErr.Source)
	}
}
