package plot

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PNGRenderer writes static png images
type PNGRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPNGRenderer creates a png renderer with a square canvas
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{
		Width:  6 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Extension of png images
func (r *PNGRenderer) Extension() string {
	return ".png"
}

// Render draws the chart and saves it to path
func (r *PNGRenderer) Render(path string, c *Chart) error {
	p, err := Plot(c)
	if err != nil {
		return err
	}
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return fmt.Errorf("unable to save %s, %w", path, err)
	}
	return nil
}

// Plot builds a gonum plot for the chart. Notes are appended below the title.
func Plot(c *Chart) (*plot.Plot, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = strings.Join(append([]string{c.Title}, c.Notes...), "\n")
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	for i, s := range c.Series {
		x, y, xErr := s.Points()
		if len(x) == 0 {
			continue
		}

		pts := make(plotter.XYs, len(x))
		for j := range x {
			pts[j] = plotter.XY{X: x[j], Y: y[j]}
		}

		if s.Line {
			sort.Slice(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("unable to create line %q, %w", s.Name, err)
			}
			l.LineStyle.Color = plotutil.Color(i)
			l.LineStyle.Width = vg.Points(1.5)
			p.Add(l)
			p.Legend.Add(s.Name, l)
			continue
		}

		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("unable to create scatter %q, %w", s.Name, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add(s.Name, sc)

		if xErr != nil {
			errs := make(plotter.XErrors, len(xErr))
			for j, e := range xErr {
				errs[j].Low, errs[j].High = e, e
			}
			bars, err := plotter.NewXErrorBars(struct {
				plotter.XYs
				plotter.XErrors
			}{pts, errs})
			if err != nil {
				return nil, fmt.Errorf("unable to create error bars %q, %w", s.Name, err)
			}
			bars.LineStyle.Color = plotutil.Color(i)
			p.Add(bars)
		}
	}

	b, ok := c.Bounds()
	if !ok {
		return p, nil
	}
	p.X.Min, p.X.Max = b.XMin, b.XMax
	p.Y.Min, p.Y.Max = b.YMin, b.YMax

	if c.Guideline {
		guide := plotter.NewFunction(func(x float64) float64 { return x })
		guide.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		guide.Width = vg.Points(1)
		p.Add(guide)
		p.Legend.Add("y = x", guide)
	}
	return p, nil
}

// sortByX sorts paired x and y values in place by x
func sortByX(x, y []float64) {
	sort.Sort(byX{x, y})
}

type byX struct {
	x, y []float64
}

func (b byX) Len() int           { return len(b.x) }
func (b byX) Less(i, j int) bool { return b.x[i] < b.x[j] }
func (b byX) Swap(i, j int) {
	b.x[i], b.x[j] = b.x[j], b.x[i]
	b.y[i], b.y[j] = b.y[j], b.y[i]
}
