package weather

import (
	"context"
	"log"
)

// CachedProvider serves repeated forecast requests from a Cache.
type CachedProvider struct {
	next  ForecastProvider
	cache Cache
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next ForecastProvider, cache Cache) *CachedProvider {
	return &CachedProvider{next: next, cache: cache}
}

func (p *CachedProvider) Name() string {
	return p.next.Name()
}

func (p *CachedProvider) Hourly(ctx context.Context, req ForecastRequest) (HourlyForecast, error) {
	key := req.Key()
	if cached, err := p.cache.Get(key); err == nil {
		log.Printf("DEBUG: forecast cache hit for %s", key)
		return cached, nil
	}

	forecast, err := p.next.Hourly(ctx, req)
	if err != nil {
		return HourlyForecast{}, err
	}
	p.cache.Set(key, forecast)
	return forecast, nil
}
