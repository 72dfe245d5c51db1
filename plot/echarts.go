package plot

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EChartsRenderer writes interactive html charts
type EChartsRenderer struct{}

// NewEChartsRenderer creates an html renderer
func NewEChartsRenderer() *EChartsRenderer {
	return &EChartsRenderer{}
}

// Extension of html charts
func (r *EChartsRenderer) Extension() string {
	return ".html"
}

// Render writes the chart as a standalone html page
func (r *EChartsRenderer) Render(path string, c *Chart) error {
	if err := c.Validate(); err != nil {
		return err
	}

	page := components.NewPage()
	page.AddCharts(Scatter(c))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s, %w", path, err)
	}
	defer file.Close()

	return page.Render(file)
}

// Scatter generates an echart scatter chart for the chart's point series with line series and
// the y = x guideline overlaid
func Scatter(c *Chart) *charts.Scatter {
	scatter := charts.NewScatter()

	xAxis := opts.XAxis{Name: c.XLabel, Type: "value"}
	yAxis := opts.YAxis{Name: c.YLabel, Type: "value"}
	b, ok := c.Bounds()
	if ok {
		xAxis.Min, xAxis.Max = b.XMin, b.XMax
		yAxis.Min, yAxis.Max = b.YMin, b.YMax
	}
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    c.Title,
				Subtitle: strings.Join(c.Notes, "\n"),
			},
		),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	var lines []charts.Overlaper
	for _, s := range c.Series {
		x, y, xErr := s.Points()
		if s.Line {
			sortByX(x, y)
			line := charts.NewLine()
			line.AddSeries(s.Name, lineData(x, y))
			lines = append(lines, line)
			continue
		}

		data := make([]opts.ScatterData, 0, len(x))
		for i := range x {
			d := opts.ScatterData{Value: []interface{}{x[i], y[i]}}
			if xErr != nil {
				d.Name = fmt.Sprintf("+/- %.3g", xErr[i])
			}
			data = append(data, d)
		}
		scatter.AddSeries(s.Name, data)
	}

	if c.Guideline && ok {
		line := charts.NewLine()
		line.AddSeries("y = x", lineData(
			[]float64{b.XMin, b.XMax},
			[]float64{b.XMin, b.XMax},
		))
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		scatter.Overlap(lines...)
	}
	return scatter
}

func lineData(x, y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(x))
	for i := range x {
		data = append(data, opts.LineData{Value: []interface{}{x[i], y[i]}})
	}
	return data
}
