// Package chart draws the bedtime trend line as an inline SVG document.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/strrl/sleepq/internal/dataset"
)

type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "error generating visualization: " + e.Reason
}

// Options sizes the chart in points and names its axes.
type Options struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string
}

func DefaultOptions() Options {
	return Options{
		Width:  800,
		Height: 320,
		Title:  "Sleep Quality by Bedtime",
		XLabel: "Bedtime (24h format)",
		YLabel: "Quality Score",
	}
}

const (
	minWidth  = 200
	minHeight = 150

	markerLegend = "Your bedtime"
)

var (
	lineColor   = color.RGBA{R: 0, G: 128, B: 128, A: 255}
	markerColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	markerDash  = []vg.Length{vg.Points(6), vg.Points(4)}
)

// Render draws the mean quality per bedtime as a line and marks the user's
// bedtime with a dashed vertical line. The returned string starts at the
// <svg> element so it can be inlined into HTML.
func Render(points []dataset.TrendPoint, marker float64, opts Options) (svg string, err error) {
	if len(points) == 0 {
		return "", &RenderError{Reason: "no data points"}
	}
	if !finite(marker) {
		return "", &RenderError{Reason: "bedtime marker is not a finite number"}
	}
	if opts.Width < minWidth || opts.Height < minHeight {
		return "", &RenderError{Reason: fmt.Sprintf("canvas %dx%d is too small", opts.Width, opts.Height)}
	}

	trend := make(plotter.XYs, len(points))
	yMin, yMax := 0.0, 1.0
	for i, p := range points {
		if !finite(p.Bedtime) || !finite(p.MeanQuality) {
			return "", &RenderError{Reason: fmt.Sprintf("non-finite point (%v, %v)", p.Bedtime, p.MeanQuality)}
		}
		trend[i] = plotter.XY{X: p.Bedtime, Y: p.MeanQuality}
		yMin = math.Min(yMin, p.MeanQuality)
		yMax = math.Max(yMax, p.MeanQuality)
	}

	defer func() {
		if r := recover(); r != nil {
			svg, err = "", &RenderError{Reason: fmt.Sprint(r)}
		}
	}()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(trend)
	if err != nil {
		return "", &RenderError{Reason: err.Error()}
	}
	line.Color = lineColor
	line.Width = vg.Points(2.5)

	markerLine, err := plotter.NewLine(plotter.XYs{{X: marker, Y: yMin}, {X: marker, Y: yMax}})
	if err != nil {
		return "", &RenderError{Reason: err.Error()}
	}
	markerLine.Color = markerColor
	markerLine.Width = vg.Points(1.5)
	markerLine.Dashes = markerDash

	p.Add(line, markerLine)
	p.Legend.Add(markerLegend, markerLine)
	p.Legend.Top = true

	canvas := vgsvg.New(vg.Points(float64(opts.Width)), vg.Points(float64(opts.Height)))
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return "", &RenderError{Reason: err.Error()}
	}

	// Drop the XML prolog; the document is embedded in a page.
	out := buf.String()
	start := strings.Index(out, "<svg")
	if start < 0 {
		return "", &RenderError{Reason: "renderer produced no svg element"}
	}
	return strings.TrimSpace(out[start:]), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
