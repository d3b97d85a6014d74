package render

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/geo"
)

// SVG draws the dashboard as a vector image with the same layout as PNG.
// Panels are plain polylines without go-chart axes.
type SVG struct{}

type svgPanel struct {
	title  string
	fixed  bool
	series []svgLine
}

type svgLine struct {
	metric dashboard.Metric
	color  string
	dashed bool
}

var svgPanels = []svgPanel{
	{title: "Wind (km/h)", series: []svgLine{
		{metric: dashboard.MetricWindSpeed, color: "#2e86de"},
		{metric: dashboard.MetricWindGusts, color: "#85c1e9", dashed: true},
	}},
	{title: "Temperature (°C)", series: []svgLine{
		{metric: dashboard.MetricTemperature, color: "#e74c3c"},
		{metric: dashboard.MetricFeelsLike, color: "#f39c12", dashed: true},
	}},
	{title: "Precipitation and clouds (%)", fixed: true, series: []svgLine{
		{metric: dashboard.MetricPrecipitationProbability, color: "#1f618d"},
		{metric: dashboard.MetricCloudCover, color: "#7f8c8d", dashed: true},
	}},
	{title: "Elevation (m)", series: []svgLine{
		{metric: dashboard.MetricElevation, color: "#27ae60"},
	}},
}

func (SVG) Render(spec *dashboard.ChartSpec, outputPath string) error {
	if spec == nil || len(spec.Times) == 0 {
		return fmt.Errorf("empty chart spec")
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	canvas := svg.New(w)
	canvas.Start(canvasWidth, canvasHeight)
	canvas.Rect(0, 0, canvasWidth, canvasHeight, "fill:#ffffff")
	canvas.Text(canvasWidth/2, 40, spec.Title, "text-anchor:middle;font-family:sans-serif;font-size:30px;fill:#222222")
	canvas.Text(canvasWidth/2, 72, spec.Subtitle, "text-anchor:middle;font-family:sans-serif;font-size:18px;fill:#444444")

	for i, p := range svgPanels {
		x := (i % 2) * panelWidth
		y := headerHeight + (i/2)*panelHeight
		drawSVGPanel(canvas, spec, p, x, y)
	}
	drawSVGMap(canvas, spec, 0, headerHeight+2*panelHeight, canvasWidth, mapHeight)

	canvas.End()
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawSVGPanel(canvas *svg.SVG, spec *dashboard.ChartSpec, p svgPanel, x, y int) {
	const pad = 40
	left, top := x+pad+30, y+pad+20
	width, height := panelWidth-2*pad-30, panelHeight-2*pad-20

	canvas.Rect(left, top, width, height, "fill:none;stroke:#cccccc")
	canvas.Text(x+panelWidth/2, y+30, p.title, "text-anchor:middle;font-family:sans-serif;font-size:16px;fill:#222222")

	values := make([][]float64, 0, len(p.series))
	for _, l := range p.series {
		if s, ok := spec.Values(l.metric); ok {
			values = append(values, s.Values)
		}
	}
	lo, hi := 0.0, 100.0
	if !p.fixed {
		lo, hi = valueRange(values...)
	}

	first, last := spec.Times[0], spec.Times[len(spec.Times)-1]
	span := last.Sub(first)
	xAt := func(t time.Time) int {
		if span <= 0 {
			return left + width/2
		}
		return left + int(math.Round(float64(t.Sub(first))/float64(span)*float64(width)))
	}
	yAt := func(v float64) int {
		return top + height - int(math.Round((v-lo)/(hi-lo)*float64(height)))
	}

	for _, l := range p.series {
		s, ok := spec.Values(l.metric)
		if !ok {
			continue
		}
		xs := make([]int, len(s.Values))
		ys := make([]int, len(s.Values))
		for i, v := range s.Values {
			xs[i], ys[i] = xAt(spec.Times[i]), yAt(v)
		}
		style := "fill:none;stroke-width:2.5;stroke:" + l.color
		if l.dashed {
			style += ";stroke-dasharray:6,4"
		}
		canvas.Polyline(xs, ys, style)
		for i := range xs {
			canvas.Circle(xs[i], ys[i], 3, "fill:"+l.color)
		}
	}

	label := "font-family:sans-serif;font-size:12px;fill:#555555"
	canvas.Text(left-6, top+4, fmt.Sprintf("%.0f", hi), "text-anchor:end;"+label)
	canvas.Text(left-6, top+height, fmt.Sprintf("%.0f", lo), "text-anchor:end;"+label)
	canvas.Text(left, top+height+16, first.Format("15:04"), label)
	canvas.Text(left+width, top+height+16, last.Format("15:04"), "text-anchor:end;"+label)
}

func drawSVGMap(canvas *svg.SVG, spec *dashboard.ChartSpec, x, y, w, h int) {
	const pad = 30
	canvas.Rect(x+pad, y+pad/2, w-2*pad, h-pad, "fill:#f4f6f7")
	proj := newProjection(spec.Bounds, float64(x+pad), float64(y+pad/2), float64(w-2*pad), float64(h-pad))

	xs := make([]int, len(spec.Route))
	ys := make([]int, len(spec.Route))
	for i, pt := range spec.Route {
		px, py := proj.xy(pt)
		xs[i], ys[i] = round(px), round(py)
	}
	canvas.Polyline(xs, ys, "fill:none;stroke:#e67e22;stroke-width:3")

	headSize := proj.pixels(spec.Preset.RouteArrowHead)
	for _, a := range spec.DirectionArrows {
		tx, ty := proj.xy(a.Tail)
		hx, hy := proj.xy(a.Head)
		svgArrow(canvas, tx, ty, hx, hy, headSize, "#5d6d7e", 1.5)
	}

	for _, v := range spec.WindVectors {
		tx, ty := proj.xy(v.Tail)
		hx, hy := proj.xy(v.Head)
		svgArrow(canvas, tx, ty, hx, hy, 4+3*spec.Preset.WindStrokeWidth, windColor(v.SpeedKmh), spec.Preset.WindStrokeWidth)
		canvas.Text(round(tx), round(ty)-8, v.Label, "text-anchor:middle;font-family:sans-serif;font-size:13px;fill:#34495e")
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
		canvas.Circle(round(px), round(py), 8, "fill:"+m.color)
		canvas.Text(round(px)+12, round(py)+5, m.label, "font-family:sans-serif;font-size:14px;fill:#222222")
	}
}

func svgArrow(canvas *svg.SVG, tx, ty, hx, hy, headSize float64, color string, width float64) {
	canvas.Line(round(tx), round(ty), round(hx), round(hy), fmt.Sprintf("stroke:%s;stroke-width:%.1f", color, width))
	lx, ly, rx, ry := arrowHead(tx, ty, hx, hy, headSize)
	canvas.Polygon(
		[]int{round(hx), round(lx), round(rx)},
		[]int{round(hy), round(ly), round(ry)},
		"fill:"+color,
	)
}

func round(v float64) int {
	return int(math.Round(v))
}

// ForPath picks the renderer for an output file by extension.
func ForPath(path string) dashboard.Renderer {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return SVG{}
	}
	return PNG{}
}

// Auto renders SVG for ".svg" output paths and PNG otherwise.
type Auto struct{}

func (Auto) Render(spec *dashboard.ChartSpec, outputPath string) error {
	return ForPath(outputPath).Render(spec, outputPath)
}
