package stats

import (
	"github.com/aouyang1/go-extrapolate/group"

	"github.com/goccy/go-json"
)

// Criterion selects which per-group statistic is used to rank groups
type Criterion int

const (
	// CriterionRMSE ranks by the RMSE over all rows of the group
	CriterionRMSE Criterion = iota

	// CriterionRMSEFiltered ranks by the RMSE over the rows surviving the plot filter
	CriterionRMSEFiltered
)

func (c Criterion) String() string {
	switch c {
	case CriterionRMSE:
		return "rmse"
	case CriterionRMSEFiltered:
		return "rmse_plot_filter_out"
	}
	return "unknown"
}

// GroupStatistic holds the error statistics of one group
type GroupStatistic struct {
	RMSE         float64   `json:"rmse"`
	RMSEFiltered NullFloat `json:"rmse_plot_filter_out"`
	Rows         int       `json:"rows"`
	FilteredRows int       `json:"filtered_rows"`
}

// Value returns the statistic for the criterion and whether it is present
func (g GroupStatistic) Value(c Criterion) (float64, bool) {
	switch c {
	case CriterionRMSE:
		return g.RMSE, true
	case CriterionRMSEFiltered:
		return g.RMSEFiltered.Float64, g.RMSEFiltered.Valid
	}
	return 0, false
}

// MarshalJSON encodes an undefined RMSE as null
func (g GroupStatistic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RMSE         NullFloat `json:"rmse"`
		RMSEFiltered NullFloat `json:"rmse_plot_filter_out"`
		Rows         int       `json:"rows"`
		FilteredRows int       `json:"filtered_rows"`
	}{
		RMSE:         NewNullFloat(g.RMSE),
		RMSEFiltered: g.RMSEFiltered,
		Rows:         g.Rows,
		FilteredRows: g.FilteredRows,
	})
}

// PerGroup maps a group label to its statistics
type PerGroup map[string]GroupStatistic

// Labels returns the group labels in sorted order
func (p PerGroup) Labels() []string {
	labels := make([]string, 0, len(p))
	for label := range p {
		labels = append(labels, label)
	}
	group.SortLabels(labels)
	return labels
}

// ComputePerGroup computes the RMSE of every group in the index from predictions aligned by row.
// When filterRows is non-nil each group's rows are also intersected with it and RMSEFiltered is
// set for groups with at least one surviving row; groups with none leave it absent.
func ComputePerGroup(idx *group.Index, predicted, measured []float64, filterRows []int) PerGroup {
	var keep map[int]struct{}
	if filterRows != nil {
		keep = make(map[int]struct{}, len(filterRows))
		for _, r := range filterRows {
			keep[r] = struct{}{}
		}
	}

	per := make(PerGroup, idx.Len())
	for _, label := range idx.Labels() {
		rows := idx.Rows(label)
		g := GroupStatistic{
			RMSE: RMSEAt(predicted, measured, rows),
			Rows: len(rows),
		}
		if keep != nil {
			filtered := IntersectRows(rows, keep)
			g.FilteredRows = len(filtered)
			if len(filtered) > 0 {
				g.RMSEFiltered = NullFloat{Float64: RMSEAt(predicted, measured, filtered), Valid: true}
			}
		}
		per[label] = g
	}
	return per
}

// IntersectRows returns the rows present in keep, preserving the order of rows
func IntersectRows(rows []int, keep map[int]struct{}) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if _, exists := keep[r]; exists {
			out = append(out, r)
		}
	}
	return out
}
