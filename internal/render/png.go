package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

const (
	canvasWidth  = 1600
	headerHeight = 90
	panelWidth   = canvasWidth / 2
	panelHeight  = 340
	mapHeight    = 720
	canvasHeight = headerHeight + 2*panelHeight + mapHeight
)

var (
	fontOnce sync.Once
	regular  *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = truetype.Parse(goregular.TTF)
	})
	return regular, fontErr
}

// line is one plotted series inside a panel.
type line struct {
	name   string
	values []float64
	color  drawing.Color
	dashed bool
}

// PNG draws the dashboard as a raster image: four time-series panels above a
// route map.
type PNG struct{}

func (PNG) Render(spec *dashboard.ChartSpec, outputPath string) error {
	if spec == nil || len(spec.Times) == 0 {
		return fmt.Errorf("empty chart spec")
	}
	font, err := loadFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	dc.SetHexColor("#222222")
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 30}))
	dc.DrawStringAnchored(spec.Title, canvasWidth/2, 32, 0.5, 0.5)
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 18}))
	dc.DrawStringAnchored(spec.Subtitle, canvasWidth/2, 68, 0.5, 0.5)

	panels := []struct {
		title string
		lines []line
		fixed bool
	}{
		{title: "Wind (km/h)", lines: []line{
			seriesLine(spec, dashboard.MetricWindSpeed, chart.ColorBlue, false),
			seriesLine(spec, dashboard.MetricWindGusts, drawing.ColorFromHex("85c1e9"), true),
		}},
		{title: "Temperature (°C)", lines: []line{
			seriesLine(spec, dashboard.MetricTemperature, chart.ColorRed, false),
			seriesLine(spec, dashboard.MetricFeelsLike, chart.ColorOrange, true),
		}},
		{title: "Precipitation and clouds (%)", fixed: true, lines: []line{
			seriesLine(spec, dashboard.MetricPrecipitationProbability, drawing.ColorFromHex("1f618d"), false),
			seriesLine(spec, dashboard.MetricCloudCover, drawing.ColorFromHex("7f8c8d"), true),
		}},
		{title: "Elevation (m)", lines: []line{
			seriesLine(spec, dashboard.MetricElevation, chart.ColorGreen, false),
		}},
	}

	for i, p := range panels {
		img, err := timeSeriesPanel(p.title, spec.Times, p.fixed, p.lines...)
		if err != nil {
			return fmt.Errorf("panel %q: %w", p.title, err)
		}
		x := (i % 2) * panelWidth
		y := headerHeight + (i/2)*panelHeight
		dc.DrawImage(img, x, y)
	}

	drawMap(dc, spec, font, 0, headerHeight+2*panelHeight, canvasWidth, mapHeight)

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return dc.SavePNG(outputPath)
}

func seriesLine(spec *dashboard.ChartSpec, m dashboard.Metric, color drawing.Color, dashed bool) line {
	s, _ := spec.Values(m)
	return line{name: s.Label, values: s.Values, color: color, dashed: dashed}
}

// timeSeriesPanel renders one go-chart panel to an image. fixed pins the
// y axis to 0..100 for percentages.
func timeSeriesPanel(title string, times []time.Time, fixed bool, lines ...line) (image.Image, error) {
	xs := times
	if len(xs) == 1 {
		// go-chart needs a non-zero x range.
		xs = []time.Time{times[0], times[0].Add(time.Minute)}
	}

	series := make([]chart.Series, 0, len(lines))
	all := make([][]float64, 0, len(lines))
	for _, l := range lines {
		ys := l.values
		if len(ys) == 1 {
			ys = []float64{ys[0], ys[0]}
		}
		style := chart.Style{
			StrokeColor: l.color,
			StrokeWidth: 2.5,
			DotColor:    l.color,
			DotWidth:    3,
		}
		if l.dashed {
			style.StrokeDashArray = []float64{6, 4}
		}
		series = append(series, chart.TimeSeries{
			Name:    l.name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
		all = append(all, ys)
	}

	yRange := &chart.ContinuousRange{Min: 0, Max: 100}
	if !fixed {
		lo, hi := valueRange(all...)
		yRange = &chart.ContinuousRange{Min: lo, Max: hi}
	}

	ch := chart.Chart{
		Title:  title,
		Width:  panelWidth,
		Height: panelHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04"),
		},
		YAxis: chart.YAxis{
			Range: yRange,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// drawMap draws the route, direction markers, wind vectors and start/finish
// markers into the given box.
func drawMap(dc *gg.Context, spec *dashboard.ChartSpec, font *truetype.Font, x, y, w, h float64) {
	const pad = 30

	dc.SetHexColor("#f4f6f7")
	dc.DrawRectangle(x+pad, y+pad/2, w-2*pad, h-pad)
	dc.Fill()

	proj := newProjection(spec.Bounds, x+pad, y+pad/2, w-2*pad, h-pad)

	// Route polyline.
	dc.SetHexColor("#e67e22")
	dc.SetLineWidth(3)
	for i, pt := range spec.Route {
		px, py := proj.xy(pt)
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.Stroke()

	// Direction of travel.
	headSize := proj.pixels(spec.Preset.RouteArrowHead)
	dc.SetHexColor("#5d6d7e")
	dc.SetLineWidth(1.5)
	for _, a := range spec.DirectionArrows {
		tx, ty := proj.xy(a.Tail)
		hx, hy := proj.xy(a.Head)
		dc.DrawLine(tx, ty, hx, hy)
		dc.Stroke()
		fillTriangle(dc, tx, ty, hx, hy, headSize)
	}

	// Wind vectors arriving at each waypoint.
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 13}))
	for _, v := range spec.WindVectors {
		tx, ty := proj.xy(v.Tail)
		hx, hy := proj.xy(v.Head)
		dc.SetHexColor(windColor(v.SpeedKmh))
		dc.SetLineWidth(spec.Preset.WindStrokeWidth)
		dc.DrawLine(tx, ty, hx, hy)
		dc.Stroke()
		fillTriangle(dc, tx, ty, hx, hy, 4+3*spec.Preset.WindStrokeWidth)

		dc.SetHexColor("#34495e")
		dc.DrawStringAnchored(v.Label, tx, ty-8, 0.5, 0.5)
	}

	markers := []struct {
		pt    geo.Point
		color string
		label string
	}{
		{pt: spec.Start, color: "#27ae60", label: "Start"},
		{pt: spec.Finish, color: "#c0392b", label: "Finish"},
	}
	for _, m := range markers {
		px, py := proj.xy(m.pt)
		dc.SetHexColor(m.color)
		dc.DrawCircle(px, py, 8)
		dc.Fill()
		dc.SetHexColor("#222222")
		dc.DrawStringAnchored(m.label, px+12, py, 0, 0.5)
	}
}

func fillTriangle(dc *gg.Context, tx, ty, hx, hy, size float64) {
	lx, ly, rx, ry := arrowHead(tx, ty, hx, hy, size)
	dc.MoveTo(hx, hy)
	dc.LineTo(lx, ly)
	dc.LineTo(rx, ry)
	dc.ClosePath()
	dc.Fill()
}
