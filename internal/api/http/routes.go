package httpapi

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/ride-weather-dashboard/internal/briefing"
	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
	"github.com/i474232898/ride-weather-dashboard/internal/track"
)

var validate = validator.New()

// requestTimeout bounds the forecast lookups of one request.
const requestTimeout = 60 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, pipeline *briefing.Pipeline) {
	v1 := app.Group("/api/v1")

	v1.Post("/briefing", func(c *fiber.Ctx) error {
		res, err := prepare(c, pipeline)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"summary":   res.Track.Summary,
			"start":     res.Start,
			"speedKmh":  res.SpeedKmh,
			"coverage":  res.Coverage,
			"poor":      res.Coverage.Poor(),
			"waypoints": res.Waypoints,
		})
	})

	v1.Post("/briefing/geojson", func(c *fiber.Ctx) error {
		res, err := prepare(c, pipeline)
		if err != nil {
			return err
		}

		spec, err := pipeline.Spec(c.UserContext(), res)
		if err != nil {
			return toHTTPError(err)
		}
		body, err := dashboard.GeoJSON(spec, res.Waypoints)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode geojson")
		}

		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(body)
	})

	v1.Post("/dashboard", func(c *fiber.Ctx) error {
		ext, contentType := ".png", "image/png"
		if c.Query("format") == "svg" {
			ext, contentType = ".svg", "image/svg+xml"
		}

		res, err := prepare(c, pipeline)
		if err != nil {
			return err
		}

		out := filepath.Join(os.TempDir(), "ride-weather-"+uuid.NewString()+ext)
		defer os.Remove(out)

		if err := pipeline.Compose(c.UserContext(), res, out); err != nil {
			return toHTTPError(err)
		}
		if !res.Rendered {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}

		body, err := os.ReadFile(out)
		if err != nil {
			log.Printf("ERROR: read rendered dashboard %s: %v", out, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}

		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(body)
	})
}

// briefingForm holds the multipart fields accompanying an uploaded track.
type briefingForm struct {
	Speed *float64 `validate:"omitempty,gt=0,lte=100"`
	Date  string   `validate:"omitempty,datetime=02.01.2006"`
	Clock string   `validate:"omitempty,datetime=15:04"`
}

func (f *briefingForm) bind(c *fiber.Ctx) error {
	if s := c.FormValue("speed"); s != "" {
		speed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("speed must be a number in km/h")
		}
		f.Speed = &speed
	}
	f.Date = c.FormValue("date")
	f.Clock = c.FormValue("time")
	return validate.Struct(f)
}

// prepare parses the uploaded track and runs sampling and correlation.
func prepare(c *fiber.Ctx, pipeline *briefing.Pipeline) (*briefing.Result, error) {
	var form briefingForm
	if err := form.bind(c); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	fh, err := c.FormFile("track")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "track file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unable to read track file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unable to read track file")
	}

	trk, err := track.Parse(data, fh.Filename)
	if err != nil {
		return nil, toHTTPError(err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	res, err := pipeline.PrepareTrack(ctx, trk, briefing.Request{
		Date:     form.Date,
		Clock:    form.Clock,
		SpeedKmh: form.Speed,
	})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return res, nil
}

func toHTTPError(err error) error {
	var loadErr *track.LoadError
	switch {
	case errors.As(err, &loadErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, dashboard.ErrNoRenderableData):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "no weather data available for this route")
	case errors.Is(err, briefing.ErrInvalidStart), errors.Is(err, route.ErrInvalidSpeed):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: briefing failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to prepare briefing")
	}
}
