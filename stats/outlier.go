package stats

import (
	"log/slog"
)

// NoGroup labels an unfilled slot in an outlier ranking
const NoGroup = "nogroup"

// Ranked pairs a criterion value with its group
type Ranked struct {
	Value float64 `json:"value"`
	Group string  `json:"group"`
}

// Ranking is the result of an outlier selection. It is not sorted and may contain NoGroup
// slots when fewer groups than requested carry the criterion.
type Ranking []Ranked

// Groups returns the ranked group labels with the NoGroup slots removed
func (r Ranking) Groups() []string {
	groups := make([]string, 0, len(r))
	for _, entry := range r {
		if entry.Group == NoGroup {
			continue
		}
		groups = append(groups, entry.Group)
	}
	return groups
}

// SelectOutliers picks the k groups with the highest criterion value. A working list of
// min(k, groups) slots starts as (0, NoGroup) and groups are scanned in sorted label order;
// a group with the criterion present replaces the minimum slot when its value is strictly
// larger. When several slots share the minimum the first one in slot order is replaced.
func SelectOutliers(per PerGroup, k int, c Criterion) Ranking {
	numMark := min(k, len(per))
	if numMark <= 0 {
		return Ranking{}
	}

	slots := make(Ranking, numMark)
	for i := range slots {
		slots[i] = Ranked{Value: 0, Group: NoGroup}
	}

	for _, label := range per.Labels() {
		v, ok := per[label].Value(c)
		if !ok {
			continue
		}
		minIdx := minSlot(slots)
		if v > slots[minIdx].Value {
			slots[minIdx] = Ranked{Value: v, Group: label}
		}
	}
	slog.Debug("highest group statistics", "criterion", c.String(), "ranking", slots)
	return slots
}

func minSlot(slots Ranking) int {
	minIdx := 0
	for i := 1; i < len(slots); i++ {
		if slots[i].Value < slots[minIdx].Value {
			minIdx = i
		}
	}
	return minIdx
}
