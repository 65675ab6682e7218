// Package render draws chart descriptions as PNG images.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/medaldash/internal/domain/charts"
	"github.com/okian/medaldash/pkg/logger"
	"github.com/okian/medaldash/pkg/metrics"
)

// ContentType of everything Render writes.
const ContentType = "image/png"

var palette = []drawing.Color{ //nolint:gochecknoglobals // fixed series colors
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
	chart.ColorAlternateGray,
}

// Renderer turns charts.Chart values into PNG images of a fixed size.
type Renderer struct {
	width  int
	height int
	log    logger.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithLogger sets the logger used to report fallback renders.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// New returns a Renderer, 960x420 unless configured otherwise.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: 960, height: 420}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the image dimensions.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Render writes c as a PNG to w. A chart without points is drawn as an
// empty placeholder. If go-chart fails, a blank image of the same size is
// written instead; only write errors are returned.
func (r *Renderer) Render(ctx context.Context, c charts.Chart, w io.Writer) error {
	start := time.Now()
	defer func() {
		metrics.RecordRenderDuration(string(c.ID), float64(time.Since(start).Microseconds())/1000)
	}()

	var buf bytes.Buffer
	var err error
	switch {
	case c.Empty():
		err = r.placeholder(c.Title).Render(chart.PNG, &buf)
	case c.Kind == charts.KindBar:
		err = r.bar(c).Render(chart.PNG, &buf)
	default:
		err = r.line(c).Render(chart.PNG, &buf)
	}
	if err != nil {
		metrics.RecordRenderError(string(c.ID))
		if r.log != nil {
			r.log.Warn(ctx, "chart render failed, writing blank image",
				logger.String("chart", string(c.ID)),
				logger.Error(err),
			)
		}
		return r.Blank(w)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// Blank writes a plain white image of the renderer's size.
func (r *Renderer) Blank(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("write blank png: %w", err)
	}
	return nil
}

func (r *Renderer) placeholder(title string) chart.BarChart {
	return chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   40,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Bars:       []chart.Value{{Label: "Sem dados", Value: 0}},
	}
}

func (r *Renderer) line(c charts.Chart) chart.Chart {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := 0.0, math.Inf(-1)

	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
			xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
			yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
		}
		// go-chart needs two points to draw a line.
		if len(xs) == 1 {
			xs = append(xs, xs[0]+0.01)
			ys = append(ys, ys[0])
		}
		col := palette[i%len(palette)]
		style := chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 4}
		if s.Dashed {
			style.StrokeDashArray = []float64{6, 4}
		}
		series = append(series, chart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style})
	}
	if xMin == xMax {
		xMin, xMax = xMin-1, xMax+1
	}
	if yMax <= yMin {
		yMax = yMin + 1
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax * 1.1},
		},
		Series: series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func yearFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return fmt.Sprint(v)
}

func (r *Renderer) bar(c charts.Chart) chart.BarChart {
	multi := len(c.Series) > 1
	var bars []chart.Value
	yMin, yMax := 0.0, 0.0
	for i, s := range c.Series {
		col := palette[i%len(palette)]
		for _, p := range s.Points {
			label := p.Label
			if multi {
				label = p.Label + " (" + s.Name + ")"
			}
			bars = append(bars, chart.Value{
				Label: label,
				Value: p.Y,
				Style: chart.Style{FillColor: col, StrokeColor: col},
			})
			yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
		}
	}
	if yMax <= yMin {
		yMax = yMin + 1
	}

	barWidth := r.width / (2*len(bars) + 2)
	barWidth = max(4, min(barWidth, 60))

	return chart.BarChart{
		Title:      c.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		XAxis:      chart.Style{TextRotationDegrees: 45, FontSize: 8},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax * 1.1},
		},
		UseBaseValue: yMin < 0,
		BaseValue:    0,
		Bars:         bars,
	}
}
