package plot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChart() *Chart {
	return &Chart{
		Title:  "Predicted vs measured",
		XLabel: "Measured",
		YLabel: "Predicted",
		Series: []Series{
			{
				Name: "supported",
				X:    []float64{1, 2, 3},
				Y:    []float64{1.5, 2, 2.5},
				XErr: []float64{0.1, 0.2, math.NaN()},
			},
			{
				Name: "unsupported",
				X:    []float64{4, math.NaN()},
				Y:    []float64{6.5, 1},
			},
			{
				Name: "standard",
				X:    []float64{3, 1, 2},
				Y:    []float64{3, 1, 2},
				Line: true,
			},
		},
		Notes:     []string{"Overall RMSE: 1.00"},
		Guideline: true,
		Step:      2,
	}
}

func TestParseFormat(t *testing.T) {
	testData := map[string]struct {
		in       string
		expected Format
		err      error
	}{
		"html":    {"html", FormatHTML, nil},
		"png":     {" PNG ", FormatPNG, nil},
		"default": {"", FormatHTML, nil},
		"unknown": {"svg", "", ErrUnknownFormat},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := ParseFormat(td.in)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, f)
		})
	}
}

func TestSeriesPoints(t *testing.T) {
	s := Series{
		X:    []float64{1, math.NaN(), 3, 4},
		Y:    []float64{1, 2, math.Inf(1), 4},
		XErr: []float64{-0.5, 0, 0, math.NaN()},
	}
	x, y, xErr := s.Points()
	assert.Equal(t, []float64{1, 4}, x)
	assert.Equal(t, []float64{1, 4}, y)
	assert.Equal(t, []float64{0.5, 0}, xErr)

	_, _, xErr = Series{X: []float64{1}, Y: []float64{1}}.Points()
	assert.Nil(t, xErr)
}

func TestChartValidate(t *testing.T) {
	var c *Chart
	assert.ErrorIs(t, c.Validate(), ErrNoChart)

	c = &Chart{Series: []Series{{X: []float64{1}, Y: []float64{1, 2}}}}
	assert.ErrorIs(t, c.Validate(), ErrSeriesLenMismatch)

	c = &Chart{Series: []Series{{X: []float64{1}, Y: []float64{1}, XErr: []float64{}}}}
	assert.ErrorIs(t, c.Validate(), ErrSeriesLenMismatch)

	assert.Nil(t, testChart().Validate())
}

func TestChartBounds(t *testing.T) {
	testData := map[string]struct {
		chart    *Chart
		expected Bounds
		ok       bool
	}{
		"guideline with step": {
			chart:    testChart(),
			expected: Bounds{XMin: 0, XMax: 8, YMin: 0, YMax: 8},
			ok:       true,
		},
		"independent axes": {
			chart: &Chart{
				Series: []Series{{X: []float64{1, 3}, Y: []float64{10, 20}, XErr: []float64{0.5, 0.5}}},
			},
			expected: Bounds{XMin: 0.5, XMax: 3.5, YMin: 10, YMax: 20},
			ok:       true,
		},
		"single point with step": {
			chart: &Chart{
				Series: []Series{{X: []float64{2}, Y: []float64{2}}},
				Step:   1,
			},
			expected: Bounds{XMin: 2, XMax: 3, YMin: 2, YMax: 3},
			ok:       true,
		},
		"no finite points": {
			chart: &Chart{
				Series: []Series{{X: []float64{math.NaN()}, Y: []float64{1}}},
			},
			ok: false,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			b, ok := td.chart.Bounds()
			assert.Equal(t, td.ok, ok)
			if !td.ok {
				return
			}
			assert.InDelta(t, td.expected.XMin, b.XMin, 1e-9, "xmin")
			assert.InDelta(t, td.expected.XMax, b.XMax, 1e-9, "xmax")
			assert.InDelta(t, td.expected.YMin, b.YMin, 1e-9, "ymin")
			assert.InDelta(t, td.expected.YMax, b.YMax, 1e-9, "ymax")
		})
	}
}

func TestSave(t *testing.T) {
	testData := map[string]struct {
		format Format
		ext    string
	}{
		"html": {FormatHTML, ".html"},
		"png":  {FormatPNG, ".png"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			r, err := NewRenderer(td.format)
			require.Nil(t, err)
			assert.Equal(t, td.ext, r.Extension())

			dir := filepath.Join(t.TempDir(), "nested", "plots")
			path, err := Save(r, dir, "supported_unsupported", testChart())
			require.Nil(t, err)
			assert.Equal(t, filepath.Join(dir, "supported_unsupported"+td.ext), path)

			info, err := os.Stat(path)
			require.Nil(t, err)
			assert.Greater(t, info.Size(), int64(0))

			// an empty chart still renders
			_, err = Save(r, dir, "empty", &Chart{Title: "empty"})
			require.Nil(t, err)
		})
	}

	_, err := NewRenderer("svg")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestPlotSkipsEmptySeries(t *testing.T) {
	c := &Chart{
		Title: "all filtered",
		Series: []Series{
			{Name: "empty", X: []float64{}, Y: []float64{}},
			{Name: "nan", X: []float64{math.NaN()}, Y: []float64{math.NaN()}},
		},
		Guideline: true,
	}
	p, err := Plot(c)
	require.Nil(t, err)
	assert.Equal(t, "all filtered", p.Title.Text)
}

func TestSortByX(t *testing.T) {
	x := []float64{3, 1, 2}
	y := []float64{30, 10, 20}
	sortByX(x, y)
	assert.Equal(t, []float64{1, 2, 3}, x)
	assert.Equal(t, []float64{10, 20, 30}, y)
}
