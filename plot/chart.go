// Package plot renders measured versus predicted charts. A Chart is a renderer independent
// description of the series to draw and a Renderer writes it in a concrete file format.
package plot

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNoChart           = errors.New("no chart to render")
	ErrUnknownFormat     = errors.New("unknown plot format")
	ErrSeriesLenMismatch = errors.New("series x and y have different lengths")
)

// Format is an output file format
type Format string

const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
)

// ParseFormat validates a plot format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatPNG:
		return f, nil
	case "":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%q, %w", s, ErrUnknownFormat)
}

// Series is a named set of points. XErr is optional and when set holds the symmetric error of
// each x value. Line series are drawn as a line through the points sorted by x.
type Series struct {
	Name string
	X    []float64
	Y    []float64
	XErr []float64
	Line bool
}

// Points returns the finite points of the series along with their x error
func (s Series) Points() (x, y, xErr []float64) {
	x = make([]float64, 0, len(s.X))
	y = make([]float64, 0, len(s.Y))
	xErr = make([]float64, 0, len(s.XErr))
	for i := range s.X {
		if !finite(s.X[i]) || !finite(s.Y[i]) {
			continue
		}
		x = append(x, s.X[i])
		y = append(y, s.Y[i])
		if s.XErr != nil {
			e := s.XErr[i]
			if !finite(e) {
				e = 0
			}
			xErr = append(xErr, math.Abs(e))
		}
	}
	if s.XErr == nil {
		xErr = nil
	}
	return x, y, xErr
}

// Chart describes a single chart
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series

	// Notes are short lines of text drawn with the chart, such as error statistics
	Notes []string

	// Guideline draws the y = x line and gives both axes the same range
	Guideline bool

	// Step rounds the axis ranges out to multiples of the step when positive
	Step float64
}

// Validate checks the series are well formed
func (c *Chart) Validate() error {
	if c == nil {
		return ErrNoChart
	}
	for _, s := range c.Series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q has %d x and %d y values, %w", s.Name, len(s.X), len(s.Y), ErrSeriesLenMismatch)
		}
		if s.XErr != nil && len(s.XErr) != len(s.X) {
			return fmt.Errorf("series %q has %d x and %d x error values, %w", s.Name, len(s.X), len(s.XErr), ErrSeriesLenMismatch)
		}
	}
	return nil
}

// Bounds is an axis aligned range
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Bounds returns the range covered by the finite points of every series, including x error.
// The second return is false when the chart has no finite points.
func (c *Chart) Bounds() (Bounds, bool) {
	b := Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	found := false
	for _, s := range c.Series {
		x, y, xErr := s.Points()
		for i := range x {
			e := 0.0
			if xErr != nil {
				e = xErr[i]
			}
			b.XMin = math.Min(b.XMin, x[i]-e)
			b.XMax = math.Max(b.XMax, x[i]+e)
			b.YMin = math.Min(b.YMin, y[i])
			b.YMax = math.Max(b.YMax, y[i])
			found = true
		}
	}
	if !found {
		return Bounds{}, false
	}
	if c.Guideline {
		lo := math.Min(b.XMin, b.YMin)
		hi := math.Max(b.XMax, b.YMax)
		b = Bounds{XMin: lo, XMax: hi, YMin: lo, YMax: hi}
	}
	if c.Step > 0 {
		b.XMin, b.XMax = snap(b.XMin, b.XMax, c.Step)
		b.YMin, b.YMax = snap(b.YMin, b.YMax, c.Step)
	}
	return b, true
}

// Save renders the chart into dir, creating it when absent, and returns the written path. The
// renderer's extension is appended to name.
func Save(r Renderer, dir, name string, c *Chart) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create plot directory %s, %w", dir, err)
	}
	path := filepath.Join(dir, name+r.Extension())
	if err := r.Render(path, c); err != nil {
		return "", fmt.Errorf("unable to render %s, %w", path, err)
	}
	return path, nil
}

func snap(lo, hi, step float64) (float64, float64) {
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	if lo == hi {
		hi += step
	}
	return lo, hi
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
