package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	mat_ "github.com/aouyang1/go-extrapolate/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const testCSV = `alloy, temperature, fluence, delta_sigma
A, 290, 1e18, 10.5
B, 300, 2e18, 20
A, 310, 3e18, 31.25
C, 320, 4e18, 44
`

func mustParse(t *testing.T, data string) *Dataset {
	t.Helper()
	ds, err := Parse(strings.NewReader(data))
	require.Nil(t, err)
	return ds
}

func TestParse(t *testing.T) {
	ds := mustParse(t, testCSV)
	assert.Equal(t, []string{"alloy", "temperature", "fluence", "delta_sigma"}, ds.Columns())
	assert.Equal(t, 4, ds.Len())
	assert.True(t, ds.HasColumn("fluence"))
	assert.False(t, ds.HasColumn("time"))

	alloys, err := ds.Column("alloy")
	require.Nil(t, err)
	assert.Equal(t, []string{"A", "B", "A", "C"}, alloys)

	temps, err := ds.FloatColumn("temperature")
	require.Nil(t, err)
	assert.Equal(t, []float64{290, 300, 310, 320}, temps)
}

func TestParseErrors(t *testing.T) {
	testData := map[string]struct {
		data string
		err  error
	}{
		"empty":            {"", ErrNoHeader},
		"duplicate column": {"a,b,a\n1,2,3\n", ErrDuplicateColumn},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(td.data))
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.Nil(t, os.WriteFile(path, []byte(testCSV), 0o644))

	ds, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, path, ds.Name())
	assert.Equal(t, 4, ds.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.NotNil(t, err)
}

func TestXYData(t *testing.T) {
	ds := mustParse(t, testCSV)

	_, err := ds.XData()
	assert.ErrorIs(t, err, ErrNoXFeatures)
	_, err = ds.YData()
	assert.ErrorIs(t, err, ErrNoYFeature)

	assert.ErrorIs(t, ds.SetXFeatures("temperature", "time"), ErrUnknownColumn)
	assert.ErrorIs(t, ds.SetYFeature("time"), ErrUnknownColumn)

	require.Nil(t, ds.SetXFeatures("temperature", "fluence"))
	require.Nil(t, ds.SetYFeature("delta_sigma"))
	assert.Equal(t, []string{"temperature", "fluence"}, ds.XFeatures())
	assert.Equal(t, "delta_sigma", ds.YFeature())

	x, err := ds.XData()
	require.Nil(t, err)
	m, n := x.Dims()
	assert.Equal(t, 4, m)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float64{300, 2e18}, mat.Row(nil, 1, x))

	y, err := ds.YData()
	require.Nil(t, err)
	assert.Equal(t, []float64{10.5, 20, 31.25, 44}, y)

	_, err = ds.FloatColumn("alloy")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestAddExclusiveFilter(t *testing.T) {
	ds := mustParse(t, testCSV)
	require.Nil(t, ds.SetXFeatures("temperature"))
	require.Nil(t, ds.SetYFeature("delta_sigma"))

	f, err := NewFilter("alloy", "=", "A")
	require.Nil(t, err)
	require.Nil(t, ds.AddExclusiveFilter(f))
	assert.Equal(t, 2, ds.Len())

	alloys, err := ds.Column("alloy")
	require.Nil(t, err)
	assert.Equal(t, []string{"B", "C"}, alloys)

	y, err := ds.YData()
	require.Nil(t, err)
	assert.Equal(t, []float64{20, 44}, y)

	f, err = NewFilter("temperature", ">", "0")
	require.Nil(t, err)
	require.Nil(t, ds.AddExclusiveFilter(f))
	assert.Equal(t, 0, ds.Len())

	_, err = ds.XData()
	assert.ErrorIs(t, err, mat_.ErrNoRows)

	f, err = NewFilter("time", "=", "0")
	require.Nil(t, err)
	assert.ErrorIs(t, ds.AddExclusiveFilter(f), ErrUnknownColumn)
}

func TestSurviving(t *testing.T) {
	ds := mustParse(t, testCSV)

	testData := map[string]struct {
		expr     string
		expected []int
		err      error
	}{
		"no filters": {
			expr:     "",
			expected: []int{0, 1, 2, 3},
		},
		"numeric": {
			expr:     "temperature,>=,310",
			expected: []int{0, 1},
		},
		"scientific notation": {
			expr:     "fluence,<,2.5e18",
			expected: []int{2, 3},
		},
		"multiple": {
			expr:     "temperature,<,300;alloy,=,C",
			expected: []int{1, 2},
		},
		"unknown column": {
			expr: "time,<,300",
			err:  ErrUnknownColumn,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			filters, err := ParseFilters(td.expr)
			require.Nil(t, err)

			rows, err := ds.Surviving(filters...)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, rows)
		})
	}
	assert.Equal(t, 4, ds.Len())
}

func TestSurvivingAfterExclusiveFilter(t *testing.T) {
	ds := mustParse(t, testCSV)

	f, err := NewFilter("alloy", "=", "B")
	require.Nil(t, err)
	require.Nil(t, ds.AddExclusiveFilter(f))

	f, err = NewFilter("alloy", "=", "C")
	require.Nil(t, err)
	rows, err := ds.Surviving(f)
	require.Nil(t, err)

	// indices refer to the view A, A, C
	assert.Equal(t, []int{0, 1}, rows)
}
