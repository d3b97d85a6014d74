package timezone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// Service resolves the time zone at a position.
type Service interface {
	Location(lat, lon float64) (*time.Location, error)
}

type service struct {
	finder tzf.F
}

var (
	instance *service
	initErr  error
	once     sync.Once
)

// NewService returns the shared tzf-backed Service. The finder holds the
// boundary data in memory, so it is built once per process.
func NewService() (Service, error) {
	once.Do(func() {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			initErr = fmt.Errorf("initialize timezone finder: %w", err)
			return
		}
		instance = &service{finder: finder}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// Location returns the IANA zone containing the coordinates.
func (s *service) Location(lat, lon float64) (*time.Location, error) {
	name := s.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return nil, fmt.Errorf("no timezone for lat=%f lon=%f", lat, lon)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", name, err)
	}
	return loc, nil
}

// Fixed always answers with the same location.
type Fixed struct {
	Loc *time.Location
}

func (f Fixed) Location(float64, float64) (*time.Location, error) {
	if f.Loc == nil {
		return time.UTC, nil
	}
	return f.Loc, nil
}
