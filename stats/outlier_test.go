package stats

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perGroupFromRMSE(rmse map[string]float64) PerGroup {
	per := make(PerGroup, len(rmse))
	for label, v := range rmse {
		per[label] = GroupStatistic{RMSE: v, Rows: 1}
	}
	return per
}

func TestSelectOutliers(t *testing.T) {
	testData := map[string]struct {
		per      PerGroup
		k        int
		c        Criterion
		expected []Ranked
	}{
		"top two": {
			per: perGroupFromRMSE(map[string]float64{"A": 1.0, "B": 5.0, "C": 3.0, "D": 2.0}),
			k:   2,
			c:   CriterionRMSE,
			expected: []Ranked{
				{Value: 5.0, Group: "B"},
				{Value: 3.0, Group: "C"},
			},
		},
		"k larger than groups": {
			per: perGroupFromRMSE(map[string]float64{"A": 1.0, "B": 2.0}),
			k:   5,
			c:   CriterionRMSE,
			expected: []Ranked{
				{Value: 1.0, Group: "A"},
				{Value: 2.0, Group: "B"},
			},
		},
		"k zero": {
			per:      perGroupFromRMSE(map[string]float64{"A": 1.0}),
			k:        0,
			c:        CriterionRMSE,
			expected: []Ranked{},
		},
		"criterion missing leaves sentinels": {
			per: PerGroup{
				"A": {RMSE: 4.0},
				"B": {RMSE: 1.0, RMSEFiltered: NewNullFloat(0.5)},
				"C": {RMSE: 2.0},
			},
			k: 2,
			c: CriterionRMSEFiltered,
			expected: []Ranked{
				{Value: 0.5, Group: "B"},
				{Value: 0, Group: NoGroup},
			},
		},
		"zero values never displace sentinels": {
			per:      perGroupFromRMSE(map[string]float64{"A": 0.0}),
			k:        1,
			c:        CriterionRMSE,
			expected: []Ranked{{Value: 0, Group: NoGroup}},
		},
		"ties replace first minimum slot": {
			per: perGroupFromRMSE(map[string]float64{"A": 2.0, "B": 2.0, "C": 2.0}),
			k:   2,
			c:   CriterionRMSE,
			expected: []Ranked{
				{Value: 2.0, Group: "A"},
				{Value: 2.0, Group: "B"},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ranking := SelectOutliers(td.per, td.k, td.c)
			assert.ElementsMatch(t, td.expected, []Ranked(ranking))
		})
	}
}

func TestSelectOutliersMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	for trial := 0; trial < 200; trial++ {
		nGroups := rng.IntN(10)
		k := rng.IntN(12)

		rmse := make(map[string]float64, nGroups)
		for i := 0; i < nGroups; i++ {
			// distinct positive values so the top k set is unique
			rmse["g"+strconv.Itoa(i)] = float64(i+1) + rng.Float64()*0.5
		}
		per := perGroupFromRMSE(rmse)

		ranking := SelectOutliers(per, k, CriterionRMSE)
		require.Len(t, ranking, min(k, nGroups))

		type pair struct {
			label string
			v     float64
		}
		all := make([]pair, 0, nGroups)
		for label, v := range rmse {
			all = append(all, pair{label, v})
		}
		sort.Slice(all, func(i, j int) bool { return all[i].v > all[j].v })

		expected := make([]string, 0, k)
		for i := 0; i < min(k, len(all)); i++ {
			expected = append(expected, all[i].label)
		}
		assert.ElementsMatch(t, expected, ranking.Groups())
	}
}

func TestRankingGroups(t *testing.T) {
	r := Ranking{
		{Value: 3, Group: "a"},
		{Value: 0, Group: NoGroup},
		{Value: 2, Group: "b"},
	}
	assert.Equal(t, []string{"a", "b"}, r.Groups())
	assert.Empty(t, Ranking{}.Groups())
}
