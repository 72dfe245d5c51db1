package extrapolate

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-extrapolate/group"
	mat_ "github.com/aouyang1/go-extrapolate/mat"
	"github.com/aouyang1/go-extrapolate/plot"
	"github.com/aouyang1/go-extrapolate/util"
)

const (
	SupportedUnsupportedName = "supported_unsupported"
	PerGroupInfoName         = "per_group_info"
	AllDataName              = "alldata"
)

// SupportedUnsupportedChart plots predicted against measured values with supported and
// unsupported rows as separate series. Only rows surviving the plot filter are drawn.
func (e *Extrapolator) SupportedUnsupportedChart(res *Results) *plot.Chart {
	supported := res.PlotRowsOf(res.Supported)
	unsupported := res.PlotRowsOf(res.Unsupported)

	notes := []string{
		fmt.Sprintf("Overall RMSE: %s", util.FormatFloat(res.Scores.Overall, 2)),
		fmt.Sprintf("Supported RMSE: %s", util.FormatFloat(res.Scores.Supported, 2)),
		fmt.Sprintf("Unsupported RMSE: %s", util.FormatFloat(res.Scores.Unsupported, 2)),
	}
	return &plot.Chart{
		Title:  "Supported and unsupported groups",
		XLabel: e.opt.XLabel,
		YLabel: e.opt.YLabel,
		Series: []plot.Series{
			measuredVsPredicted("Supported", res, supported),
			measuredVsPredicted("Unsupported", res, unsupported),
		},
		Notes:     notes,
		Guideline: true,
		Step:      e.opt.StepSize,
	}
}

// GroupSplitsChart plots predicted against measured values with each outlying group as its own
// labelled series and every other group merged into one series
func (e *Extrapolator) GroupSplitsChart(res *Results) *plot.Chart {
	outlying := group.NewSet(res.Outliers.Groups()...)

	var others plot.Series
	others.Name = "Other groups"
	series := make([]plot.Series, 0, len(outlying)+1)
	notes := groupNotes(res)

	for _, gd := range res.GroupData() {
		if !outlying.Has(gd.Label) {
			others.X = append(others.X, gd.XData...)
			others.Y = append(others.Y, gd.YData...)
			others.XErr = append(others.XErr, gd.XErr...)
			continue
		}
		rmse := "nan"
		if gd.RMSE.Valid {
			rmse = util.FormatFloat(gd.RMSE.Float64, 2)
		}
		series = append(series, plot.Series{
			Name: fmt.Sprintf("%s (%s)", gd.Label, rmse),
			X:    gd.XData,
			Y:    gd.YData,
			XErr: gd.XErr,
		})
		notes = append(notes, fmt.Sprintf("%s: %s", gd.Label, rmse))
	}
	if len(others.X) > 0 {
		series = append(series, others)
	}

	return &plot.Chart{
		Title:     "Per group info",
		XLabel:    e.opt.XLabel,
		YLabel:    e.opt.YLabel,
		Series:    series,
		Notes:     notes,
		Guideline: true,
		Step:      e.opt.StepSize,
	}
}

// NamedChart pairs a chart with the directory and file name it is saved under
type NamedChart struct {
	Name  string
	Chart *plot.Chart
}

// NumericCharts plots measured and predicted values against the numeric feature, once for all
// data and once per group, with standard condition predictions overlaid as a line. Groups
// appearing only in the standard conditions dataset get a chart of their own. Per group charts
// are named by the label of the group's first row, suffixed when the name is taken by another
// group or by a built in output.
func (e *Extrapolator) NumericCharts(res *Results) []NamedChart {
	if res.Numeric == nil {
		return nil
	}
	rows := res.PlotRowsOf(allRows(len(res.Numeric)))

	var stdRows []int
	std := res.Standard
	if std != nil && std.Numeric != nil {
		stdRows = allRows(len(std.Numeric))
	}

	charts := []NamedChart{{
		Name:  AllDataName,
		Chart: e.numericChart(AllDataName, res, rows, stdRows),
	}}
	if len(res.Groups) == 0 {
		return charts
	}

	evalIdx := group.NewIndex(mat_.TakeStrings(res.Groups, rows))
	stdIdx := group.NewIndex(nil)
	if stdRows != nil && std.Groups != nil {
		stdIdx = group.NewIndex(std.Groups)
	}

	used := group.NewSet(AllDataName, PerGroupInfoName, SupportedUnsupportedName, ReadmeFile, StatisticsFile)
	all := evalIdx.Set()
	for _, g := range stdIdx.Labels() {
		all[g] = struct{}{}
	}
	for _, g := range all.Sorted() {
		var label string
		evalRows := pickRows(rows, evalIdx.Rows(g))
		if len(evalRows) > 0 {
			label = res.Labels[evalRows[0]]
		}
		groupStdRows := stdIdx.Rows(g)
		if len(groupStdRows) > 0 && std.Labels != nil {
			label = std.Labels[groupStdRows[0]]
		}
		if label == "" {
			label = g
		}
		charts = append(charts, NamedChart{
			Name:  uniqueName(used, util.SafeName(label)),
			Chart: e.numericChart(label, res, evalRows, groupStdRows),
		})
	}
	return charts
}

// uniqueName suffixes name with _2, _3, ... until it is unused, then marks it used
func uniqueName(used group.Set, name string) string {
	candidate := name
	for i := 2; used.Has(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	used[candidate] = struct{}{}
	return candidate
}

func (e *Extrapolator) numericChart(title string, res *Results, rows, stdRows []int) *plot.Chart {
	numeric := mat_.Take(res.Numeric, rows)
	series := []plot.Series{
		{Name: "Measured", X: numeric, Y: mat_.Take(res.Predictions.Measured, rows)},
		{Name: "Predicted", X: numeric, Y: mat_.Take(res.Predictions.Predicted, rows)},
	}
	if len(stdRows) > 0 {
		series = append(series, plot.Series{
			Name: "Standard conditions",
			X:    mat_.Take(res.Standard.Numeric, stdRows),
			Y:    mat_.Take(res.Standard.Predicted, stdRows),
			Line: true,
		})
	}

	xlabel := e.opt.SplitXLabel
	if xlabel == "" {
		xlabel = res.NumericFeature
	}
	return &plot.Chart{
		Title:  title,
		XLabel: xlabel,
		YLabel: e.opt.SplitYLabel,
		Series: series,
	}
}

func measuredVsPredicted(name string, res *Results, rows []int) plot.Series {
	return plot.Series{
		Name: name,
		X:    mat_.Take(res.Predictions.Measured, rows),
		Y:    mat_.Take(res.Predictions.Predicted, rows),
		XErr: res.Predictions.MeasuredErrAt(rows),
	}
}

// groupNotes lists the hidden data and the overall error the per group chart is read against
func groupNotes(res *Results) []string {
	if len(res.Filters) == 0 {
		return []string{
			"RMSEs for overall fit:",
			fmt.Sprintf("Overall: %s", util.FormatFloat(res.Scores.Overall, 3)),
		}
	}
	notes := []string{"Data not shown:"}
	for _, f := range res.Filters {
		notes = append(notes, "  "+f)
	}
	return append(notes,
		"RMSEs for shown data:",
		fmt.Sprintf("Overall: %s", util.FormatFloat(res.FilteredRMSE.Or(math.NaN()), 3)),
	)
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// pickRows maps positions within rows back to the rows themselves
func pickRows(rows, positions []int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = rows[p]
	}
	return out
}
