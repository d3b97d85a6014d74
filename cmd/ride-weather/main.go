package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/i474232898/ride-weather-dashboard/internal/briefing"
	"github.com/i474232898/ride-weather-dashboard/internal/config"
	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/logging"
	"github.com/i474232898/ride-weather-dashboard/internal/places"
	"github.com/i474232898/ride-weather-dashboard/internal/render"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
	"github.com/i474232898/ride-weather-dashboard/internal/store"
	"github.com/i474232898/ride-weather-dashboard/internal/timezone"
	"github.com/i474232898/ride-weather-dashboard/internal/track"
	"github.com/i474232898/ride-weather-dashboard/internal/weather"
	"github.com/i474232898/ride-weather-dashboard/internal/weather/providers"
)

const defaultOutput = "weather_dashboard.png"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	output := flag.String("o", defaultOutput, "output image path (.png or .svg)")
	speed := flag.Float64("s", cfg.DefaultSpeedKmh, "average speed in km/h")
	date := flag.String("d", "", "departure date DD.MM.YYYY (default tomorrow)")
	clock := flag.String("t", briefing.DefaultClock, "departure time HH:MM")
	geoJSON := flag.String("geojson", "", "also write the route and waypoints as GeoJSON to this path")
	debug := flag.Bool("debug", cfg.Debug, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] track.gpx\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logging.Init(*debug)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	trackPath := flag.Arg(0)
	if _, err := os.Stat(trackPath); err != nil {
		log.Printf("ERROR: track file %s not found", trackPath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	backoff := providers.DefaultBackoff
	backoff.MaxRetries = cfg.ForecastMaxRetries
	backoff.InitialInterval = cfg.ForecastBackoff
	provider := weather.NewCachedProvider(
		providers.NewOpenMeteoProvider(httpClient,
			providers.WithBaseURL(cfg.ForecastBaseURL),
			providers.WithBackoff(backoff),
		),
		store.NewForecastCache(cfg.CacheTTL, cfg.CacheMaxEntries),
	)

	bar := progressbar.Default(-1, "Fetching forecasts")
	correlator := weather.NewCorrelator(provider,
		weather.WithWorkers(cfg.ForecastWorkers),
		weather.WithProgress(func() { _ = bar.Add(1) }),
	)

	opts := []briefing.Option{briefing.WithDefaultSpeed(cfg.DefaultSpeedKmh)}
	if zones, err := timezone.NewService(); err != nil {
		log.Printf("WARN: timezone lookup unavailable, departure times are UTC: %v", err)
	} else {
		opts = append(opts, briefing.WithTimezones(zones))
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, briefing.WithNamer(places.NewGoogleNamer(cfg.GeocoderAPIKey)))
	}

	pipeline := briefing.New(
		route.NewSampler(cfg.SampleIntervalKm),
		correlator,
		dashboard.NewComposer(render.Auto{}, cfg.ScalePresets),
		opts...,
	)

	res, err := pipeline.Prepare(ctx, briefing.Request{
		TrackPath: trackPath,
		Date:      *date,
		Clock:     *clock,
		SpeedKmh:  speed,
	})
	_ = bar.Finish()
	if err != nil {
		fail(err)
	}

	reportCoverage(res.Coverage)

	if err := pipeline.Compose(ctx, res, *output); err != nil {
		fail(err)
	}
	if !res.Rendered {
		log.Printf("ERROR: dashboard could not be rendered to %s", *output)
		os.Exit(1)
	}
	log.Printf("INFO: dashboard written to %s", *output)

	if *geoJSON != "" {
		body, err := dashboard.GeoJSON(res.Spec, res.Waypoints)
		if err == nil {
			err = os.WriteFile(*geoJSON, body, 0o644)
		}
		if err != nil {
			log.Printf("ERROR: write geojson %s: %v", *geoJSON, err)
			os.Exit(1)
		}
		log.Printf("INFO: geojson written to %s", *geoJSON)
	}
}

// reportCoverage summarises missing forecasts. Individual lookup failures are
// already logged by the correlator.
func reportCoverage(cov weather.Coverage) {
	if cov.Missing == 0 {
		return
	}
	log.Printf("WARN: %d of %d waypoints have no forecast", cov.Missing, cov.Total)
}

func fail(err error) {
	var loadErr *track.LoadError
	switch {
	case errors.As(err, &loadErr):
		log.Printf("ERROR: could not read track: %v", err)
	case errors.Is(err, dashboard.ErrNoRenderableData):
		log.Printf("ERROR: no weather data available for this route")
	default:
		log.Printf("ERROR: %v", err)
	}
	os.Exit(1)
}
