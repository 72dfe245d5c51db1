package extrapolate

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aouyang1/go-extrapolate/evaluate"
	mat_ "github.com/aouyang1/go-extrapolate/mat"
	"github.com/aouyang1/go-extrapolate/stats"
	"github.com/aouyang1/go-extrapolate/util"

	"github.com/goccy/go-json"
)

// Results of an extrapolation run. Row aligned slices follow the evaluation dataset rows.
type Results struct {
	Options *Options `json:"options"`

	FitMode   string `json:"fit_mode"`
	TrainRows int    `json:"train_rows"`
	FitRows   int    `json:"fit_rows"`
	EvalRows  int    `json:"eval_rows"`

	Scores       evaluate.Scores `json:"scores"`
	FitScores    *stats.Scores   `json:"overall_fit_scores"`
	FilteredRMSE stats.NullFloat `json:"rmse_plot_filter_out"`
	Filters      []string        `json:"plot_filters,omitempty"`

	TrainGroups       []string `json:"train_groups"`
	MatchedGroups     []string `json:"matched_groups"`
	UnsupportedGroups []string `json:"unsupported_groups"`

	Criterion stats.Criterion `json:"-"`
	PerGroup  stats.PerGroup  `json:"per_group"`
	Outliers  stats.Ranking   `json:"outlying_groups"`

	Predictions evaluate.Predictions `json:"predictions"`
	Standard    *StandardPredictions `json:"standard,omitempty"`

	// row bookkeeping used to assemble plots
	Supported      []int     `json:"-"`
	Unsupported    []int     `json:"-"`
	PlotRows       []int     `json:"-"`
	Groups         []string  `json:"-"`
	Labels         []string  `json:"-"`
	NumericFeature string    `json:"-"`
	Numeric        []float64 `json:"-"`
}

// StandardPredictions are the predictions of the standard conditions dataset. Numeric, Groups
// and Labels are nil when the dataset lacks the column.
type StandardPredictions struct {
	Predicted []float64 `json:"predicted"`
	Numeric   []float64 `json:"-"`
	Groups    []string  `json:"-"`
	Labels    []string  `json:"-"`
}

// GroupData holds the points of one group as plotted: measured values on x with their error and
// predicted values on y. RMSE is the group statistic for the active criterion, absent when no
// row of the group survives the plot filter.
type GroupData struct {
	Label string
	XData []float64
	XErr  []float64
	YData []float64
	RMSE  stats.NullFloat
}

// PlotRowsOf restricts rows to the rows surviving the plot filter. Without a plot filter the rows
// are returned unchanged.
func (r *Results) PlotRowsOf(rows []int) []int {
	if r.PlotRows == nil {
		return rows
	}
	keep := make(map[int]struct{}, len(r.PlotRows))
	for _, row := range r.PlotRows {
		keep[row] = struct{}{}
	}
	return stats.IntersectRows(rows, keep)
}

// GroupData assembles the per group plotting records in sorted group order
func (r *Results) GroupData() []GroupData {
	rowsByGroup := make(map[string][]int)
	for row, g := range r.Groups {
		rowsByGroup[g] = append(rowsByGroup[g], row)
	}

	labels := r.PerGroup.Labels()
	data := make([]GroupData, 0, len(labels))
	for _, label := range labels {
		rows := r.PlotRowsOf(rowsByGroup[label])
		gd := GroupData{
			Label: label,
			XData: mat_.Take(r.Predictions.Measured, rows),
			XErr:  r.Predictions.MeasuredErrAt(rows),
			YData: mat_.Take(r.Predictions.Predicted, rows),
		}
		if v, ok := r.PerGroup[label].Value(r.Criterion); ok {
			gd.RMSE = stats.NullFloat{Float64: v, Valid: true}
		}
		data = append(data, gd)
	}
	return data
}

// WriteReadme writes a plain text summary of the run
func (r *Results) WriteReadme(w io.Writer) error {
	indent := "    "
	lines := []string{
		fmt.Sprintf("Overall RMSE: %s", util.FormatFloat(r.Scores.Overall, 3)),
		fmt.Sprintf("Supported RMSE: %s", util.FormatFloat(r.Scores.Supported, 3)),
		fmt.Sprintf("Unsupported RMSE: %s", util.FormatFloat(r.Scores.Unsupported, 3)),
	}
	if r.FitScores != nil {
		lines = append(lines, fmt.Sprintf("Overall R2: %s, MAPE: %s", util.FormatFloat(r.FitScores.R2, 3), util.FormatFloat(r.FitScores.MAPE, 3)))
	}
	if len(r.Filters) > 0 {
		lines = append(lines,
			fmt.Sprintf("Shown data RMSE: %s", util.FormatFloat(r.FilteredRMSE.Or(math.NaN()), 3)),
			"Data not shown:",
		)
		for _, f := range r.Filters {
			lines = append(lines, util.IndentExpand(indent, 1)+f)
		}
	}
	lines = append(lines,
		fmt.Sprintf("Fit mode: %s, fit on %d of %d training rows", r.FitMode, r.FitRows, r.TrainRows),
		fmt.Sprintf("Evaluation rows: %d", r.EvalRows),
		fmt.Sprintf("Matched groups: %s", joinOrNone(r.MatchedGroups)),
		fmt.Sprintf("Unsupported groups: %s", joinOrNone(r.UnsupportedGroups)),
		"Per-group statistics:",
	)
	for _, label := range r.PerGroup.Labels() {
		g := r.PerGroup[label]
		lines = append(lines, fmt.Sprintf("%s%s: %s: %s", util.IndentExpand(indent, 1), label, stats.CriterionRMSE, util.FormatFloat(g.RMSE, 3)))
		if g.RMSEFiltered.Valid {
			lines = append(lines, fmt.Sprintf("%s%s: %s: %s", util.IndentExpand(indent, 1), label, stats.CriterionRMSEFiltered, util.FormatFloat(g.RMSEFiltered.Float64, 3)))
		}
	}
	lines = append(lines, fmt.Sprintf("Outlying groups by %s: %s", r.Criterion, joinOrNone(r.Outliers.Groups())))
	if r.Standard != nil {
		lines = append(lines, fmt.Sprintf("Standard conditions predicted: %d rows", len(r.Standard.Predicted)))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the results as indented json
func (r *Results) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal results, %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

func joinOrNone(labels []string) string {
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ", ")
}
