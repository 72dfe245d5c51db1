package group

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchGroups(t *testing.T) {
	testData := map[string]struct {
		train             []string
		eval              []string
		matched           []string
		unsupportedLabels []string
		supported         []int
		unsupported       []int
	}{
		"partial overlap": {
			train:             []string{"X", "Y", "X"},
			eval:              []string{"Y", "Z", "Y", "Z"},
			matched:           []string{"Y"},
			unsupportedLabels: []string{"Z"},
			supported:         []int{0, 2},
			unsupported:       []int{1, 3},
		},
		"grouped by discovery order": {
			train:             []string{"a", "b"},
			eval:              []string{"c", "b", "a", "b", "c"},
			matched:           []string{"b", "a"},
			unsupportedLabels: []string{"c"},
			supported:         []int{1, 3, 2},
			unsupported:       []int{0, 4},
		},
		"no eval groups": {
			train:             []string{"a"},
			eval:              nil,
			matched:           []string{},
			unsupportedLabels: []string{},
			supported:         []int{},
			unsupported:       []int{},
		},
		"no train groups": {
			train:             nil,
			eval:              []string{"a", "b"},
			matched:           []string{},
			unsupportedLabels: []string{"a", "b"},
			supported:         []int{},
			unsupported:       []int{0, 1},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m := MatchGroups(NewIndex(td.train), NewIndex(td.eval))
			assert.Equal(t, td.matched, m.MatchedLabels)
			assert.Equal(t, NewSet(td.matched...), m.Matched)
			assert.Equal(t, td.unsupportedLabels, m.UnsupportedLabels)
			assert.Equal(t, td.supported, m.Supported)
			assert.Equal(t, td.unsupported, m.Unsupported)
		})
	}
}

func TestMatchGroupsProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	randomLabels := func(n, k int) []string {
		l := make([]string, n)
		for i := range l {
			l[i] = strconv.Itoa(rng.IntN(k))
		}
		return l
	}

	for trial := 0; trial < 50; trial++ {
		train := NewIndex(randomLabels(rng.IntN(20), 8))
		eval := NewIndex(randomLabels(rng.IntN(20), 8))

		m := MatchGroups(train, eval)

		// matched groups are a subset of both sides
		for label := range m.Matched {
			assert.True(t, train.Has(label))
			assert.True(t, eval.Has(label))
		}

		// supported and unsupported rows are disjoint and cover the eval rows
		seen := make(map[int]struct{})
		for _, r := range m.Supported {
			seen[r] = struct{}{}
		}
		for _, r := range m.Unsupported {
			_, dup := seen[r]
			assert.False(t, dup, "row %d in both buckets", r)
			seen[r] = struct{}{}
		}
		assert.Len(t, seen, eval.NumRows())

		// pure function
		assert.Equal(t, m, MatchGroups(train, eval))
	}
}

func TestFitRows(t *testing.T) {
	train := NewIndex([]string{"X", "Y", "X", "W", "Y"})

	testData := map[string]struct {
		matched  Set
		mode     FitMode
		expected []int
	}{
		"fit all": {
			matched:  NewSet("Y"),
			mode:     FitAll,
			expected: []int{0, 1, 2, 3, 4},
		},
		"matched only": {
			matched:  NewSet("Y"),
			mode:     FitMatchedOnly,
			expected: []int{1, 4},
		},
		"matched only follows group order": {
			matched:  NewSet("Y", "X"),
			mode:     FitMatchedOnly,
			expected: []int{0, 2, 1, 4},
		},
		"nothing matched": {
			matched:  NewSet(),
			mode:     FitMatchedOnly,
			expected: []int{},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, FitRows(train, td.matched, td.mode))
		})
	}
}

func TestFitRowsExcludesUnmatchedGroups(t *testing.T) {
	trainLabels := []string{"X", "Y", "X", "Y", "Q"}
	train := NewIndex(trainLabels)
	eval := NewIndex([]string{"Y", "Z"})
	m := MatchGroups(train, eval)

	rows := FitRows(train, m.Matched, FitMatchedOnly)
	sort.Ints(rows)
	assert.Equal(t, []int{1, 3}, rows)
	for _, r := range rows {
		assert.Equal(t, "Y", trainLabels[r])
	}
}

func TestFitModeString(t *testing.T) {
	assert.Equal(t, "fit_all", FitAll.String())
	assert.Equal(t, "fit_matched_only", FitMatchedOnly.String())
	assert.Equal(t, "unknown", FitMode(9).String())
}
