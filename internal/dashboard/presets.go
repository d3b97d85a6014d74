package dashboard

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ScalePreset holds the map annotation sizes used for routes shorter than
// MaxRouteKm. Lengths are in degrees. A MaxRouteKm of 0 means no upper bound.
type ScalePreset struct {
	Name             string  `yaml:"name" json:"name" validate:"required"`
	MaxRouteKm       float64 `yaml:"maxRouteKm" json:"maxRouteKm" validate:"gte=0"`
	WindStrokeWidth  float64 `yaml:"windStrokeWidth" json:"windStrokeWidth" validate:"gt=0"`
	WindVectorLength float64 `yaml:"windVectorLength" json:"windVectorLength" validate:"gt=0"`
	RouteArrowLength float64 `yaml:"routeArrowLength" json:"routeArrowLength" validate:"gt=0"`
	RouteArrowHead   float64 `yaml:"routeArrowHead" json:"routeArrowHead" validate:"gt=0"`
}

// DefaultPresets returns the built-in buckets: under 20, 100 and 200 km, and longer.
func DefaultPresets() []ScalePreset {
	return []ScalePreset{
		{Name: "short", MaxRouteKm: 20, WindStrokeWidth: 1.5, WindVectorLength: 0.006, RouteArrowLength: 0.002, RouteArrowHead: 0.001},
		{Name: "medium", MaxRouteKm: 100, WindStrokeWidth: 2, WindVectorLength: 0.015, RouteArrowLength: 0.005, RouteArrowHead: 0.0025},
		{Name: "long", MaxRouteKm: 200, WindStrokeWidth: 2.5, WindVectorLength: 0.03, RouteArrowLength: 0.01, RouteArrowHead: 0.005},
		{Name: "epic", MaxRouteKm: 0, WindStrokeWidth: 3, WindVectorLength: 0.05, RouteArrowLength: 0.02, RouteArrowHead: 0.01},
	}
}

// SelectPreset returns the first bucket whose bound exceeds routeKm, falling
// back to the unbounded bucket (or the largest one when none is unbounded).
func SelectPreset(presets []ScalePreset, routeKm float64) ScalePreset {
	if len(presets) == 0 {
		presets = DefaultPresets()
	}
	ordered := sortPresets(presets)
	for _, p := range ordered {
		if p.MaxRouteKm == 0 || routeKm < p.MaxRouteKm {
			return p
		}
	}
	return ordered[len(ordered)-1]
}

type presetFile struct {
	Presets []ScalePreset `yaml:"presets" validate:"required,min=1,dive"`
}

// LoadPresets reads a YAML preset table of the form
//
//	presets:
//	  - name: short
//	    maxRouteKm: 20
//	    windStrokeWidth: 1.5
//	    ...
func LoadPresets(path string) ([]ScalePreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes and validates a YAML preset table.
func ParsePresets(data []byte) ([]ScalePreset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid presets: %w", err)
	}

	unbounded := 0
	for _, p := range f.Presets {
		if p.MaxRouteKm == 0 {
			unbounded++
		}
	}
	if unbounded > 1 {
		return nil, errors.New("invalid presets: more than one preset without maxRouteKm")
	}
	return sortPresets(f.Presets), nil
}

// sortPresets orders bounded presets by ascending bound with the unbounded one last.
func sortPresets(presets []ScalePreset) []ScalePreset {
	out := append([]ScalePreset(nil), presets...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MaxRouteKm, out[j].MaxRouteKm
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})
	return out
}
