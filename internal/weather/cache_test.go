package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errMiss = errors.New("miss")

type mapCache map[string]HourlyForecast

func (m mapCache) Get(key string) (HourlyForecast, error) {
	f, ok := m[key]
	if !ok {
		return HourlyForecast{}, errMiss
	}
	return f, nil
}

func (m mapCache) Set(key string, f HourlyForecast) { m[key] = f }

func TestCachedProvider(t *testing.T) {
	inner := &mockProvider{grid: hourlyGrid(4, 0)}
	cache := mapCache{}
	p := NewCachedProvider(inner, cache)

	req := ForecastRequest{
		Lat: 45.26712, Lon: 19.83351,
		From: gridStart, To: gridStart.Add(3 * time.Hour),
		Variables: HourlyVariables,
	}
	for i := 0; i < 3; i++ {
		if _, err := p.Hourly(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(inner.requests) != 1 {
		t.Fatalf("expected 1 upstream request, got %d", len(inner.requests))
	}
	if _, ok := cache[req.Key()]; !ok {
		t.Fatalf("expected forecast cached under %s", req.Key())
	}

	failing := NewCachedProvider(&mockProvider{err: errors.New("down")}, cache)
	req.Lat = 10
	if _, err := failing.Hourly(context.Background(), req); err == nil {
		t.Fatal("expected upstream error")
	}
	if _, ok := cache[req.Key()]; ok {
		t.Fatal("failed responses must not be cached")
	}
}
