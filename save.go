package extrapolate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aouyang1/go-extrapolate/cv"
	"github.com/aouyang1/go-extrapolate/evaluate"
	"github.com/aouyang1/go-extrapolate/group"
	"github.com/aouyang1/go-extrapolate/plot"
	"github.com/aouyang1/go-extrapolate/stats"
	"github.com/aouyang1/go-extrapolate/util"

	"github.com/goccy/go-json"
)

const (
	ReadmeFile     = "README.txt"
	StatisticsFile = "statistics.json"
)

var ErrNoResults = errors.New("no results to save")

// Save writes the readme, statistics and every plot of a run into dir. Directories are created
// when absent.
func (e *Extrapolator) Save(dir string, res *Results) error {
	if res == nil {
		return ErrNoResults
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create save directory %s, %w", dir, err)
	}
	if err := writeFile(filepath.Join(dir, StatisticsFile), res.WriteJSON); err != nil {
		return err
	}

	if _, err := plot.Save(e.renderer, dir, SupportedUnsupportedName, e.SupportedUnsupportedChart(res)); err != nil {
		return err
	}
	if _, err := plot.Save(e.renderer, filepath.Join(dir, PerGroupInfoName), PerGroupInfoName, e.GroupSplitsChart(res)); err != nil {
		return err
	}
	numeric := e.NumericCharts(res)
	for _, nc := range numeric {
		if _, err := plot.Save(e.renderer, filepath.Join(dir, nc.Name), nc.Name, nc.Chart); err != nil {
			return err
		}
	}

	readme := func(w io.Writer) error {
		if err := res.WriteReadme(w); err != nil {
			return err
		}
		lines := []string{
			fmt.Sprintf("Plot %s created", SupportedUnsupportedName+e.renderer.Extension()),
			fmt.Sprintf("Plot in subfolder %s created", PerGroupInfoName),
			util.IndentExpand("    ", 1) + "labeling outlying groups and their RMSEs.",
		}
		if len(numeric) > 0 {
			lines = append(lines, fmt.Sprintf("Plots against %s created in %d subfolders", res.NumericFeature, len(numeric)))
		}
		return writeLines(w, lines)
	}
	if err := writeFile(filepath.Join(dir, ReadmeFile), readme); err != nil {
		return err
	}

	slog.Info("saved results", "dir", dir, "plots", 2+len(numeric))
	return nil
}

// KFoldReport is the statistics file of a k-fold cross validation
type KFoldReport struct {
	Options *cv.KFoldOptions `json:"options"`
	Result  *cv.KFoldResult  `json:"result"`
}

// SaveKFold writes the k-fold summary, statistics and the best and worst run predicted versus
// measured plots into dir
func (e *Extrapolator) SaveKFold(dir string, opt *cv.KFoldOptions, res *cv.KFoldResult) error {
	if res == nil || len(res.Runs) == 0 {
		return ErrNoResults
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create save directory %s, %w", dir, err)
	}
	if err := writeJSON(filepath.Join(dir, StatisticsFile), KFoldReport{Options: opt, Result: res}); err != nil {
		return err
	}

	for _, c := range e.KFoldCharts(res) {
		if _, err := plot.Save(e.renderer, dir, c.Name, c.Chart); err != nil {
			return err
		}
	}

	readme := func(w io.Writer) error {
		return writeLines(w, []string{
			fmt.Sprintf("Runs: %d", len(res.Runs)),
			fmt.Sprintf("Mean RMSE: %s", util.FormatFloat(res.Mean, 3)),
			fmt.Sprintf("Median RMSE: %s", util.FormatFloat(res.Median, 3)),
			fmt.Sprintf("Max RMSE: %s", util.FormatFloat(res.Max, 3)),
			fmt.Sprintf("Min RMSE: %s", util.FormatFloat(res.Min, 3)),
			fmt.Sprintf("Std RMSE: %s", util.FormatFloat(res.Std, 3)),
			fmt.Sprintf("Best run: %d, worst run: %d", res.Best, res.Worst),
		})
	}
	return writeFile(filepath.Join(dir, ReadmeFile), readme)
}

// KFoldCharts plots the held out predictions of the best and worst runs against the measured
// values
func (e *Extrapolator) KFoldCharts(res *cv.KFoldResult) []NamedChart {
	best, worst := res.BestRun(), res.WorstRun()
	return []NamedChart{
		{Name: "best_worst_overlay", Chart: &plot.Chart{
			Title:  "K-fold best and worst runs",
			XLabel: e.opt.XLabel,
			YLabel: e.opt.YLabel,
			Series: []plot.Series{
				{Name: "Best", X: res.Measured, Y: best.Predicted},
				{Name: "Worst", X: res.Measured, Y: worst.Predicted},
			},
			Notes: []string{
				fmt.Sprintf("Best RMSE: %s", util.FormatFloat(best.RMSE, 2)),
				fmt.Sprintf("Worst RMSE: %s", util.FormatFloat(worst.RMSE, 2)),
				fmt.Sprintf("Mean RMSE: %s", util.FormatFloat(res.Mean, 2)),
				fmt.Sprintf("Std RMSE: %s", util.FormatFloat(res.Std, 2)),
			},
			Guideline: true,
			Step:      e.opt.StepSize,
		}},
	}
}

// SaveLeaveOneGroupOut writes the leave one group out statistics and the per group plot, with
// the highest error groups labelled, into dir
func (e *Extrapolator) SaveLeaveOneGroupOut(dir string, groups []string, res *cv.LeaveOneGroupOutResult) error {
	if res == nil {
		return ErrNoResults
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create save directory %s, %w", dir, err)
	}
	if err := writeJSON(filepath.Join(dir, StatisticsFile), res); err != nil {
		return err
	}

	outliers := stats.SelectOutliers(res.PerGroup, e.opt.MarkOutlyingGroups, stats.CriterionRMSE)
	summary := &Results{
		Options:   e.opt,
		Criterion: stats.CriterionRMSE,
		PerGroup:  res.PerGroup,
		Outliers:  outliers,
		Predictions: evaluate.Predictions{
			Measured:  res.Measured,
			Predicted: res.Predicted,
		},
		Groups: groups,
	}
	summary.Scores.Overall = res.RMSE

	c := e.GroupSplitsChart(summary)
	c.Title = "Leave one group out"
	if _, err := plot.Save(e.renderer, filepath.Join(dir, PerGroupInfoName), PerGroupInfoName, c); err != nil {
		return err
	}

	readme := func(w io.Writer) error {
		lines := []string{
			fmt.Sprintf("Overall RMSE: %s", util.FormatFloat(res.RMSE, 3)),
			fmt.Sprintf("Skipped groups: %s", joinOrNone(res.Skipped)),
			"Per-group statistics:",
		}
		for _, label := range res.PerGroup.Labels() {
			lines = append(lines, fmt.Sprintf("%s%s: %s: %s", util.IndentExpand("    ", 1), label, stats.CriterionRMSE, util.FormatFloat(res.PerGroup[label].RMSE, 3)))
		}
		lines = append(lines, fmt.Sprintf("Outlying groups by %s: %s", stats.CriterionRMSE, joinOrNone(outliers.Groups())))
		return writeLines(w, lines)
	}
	if err := writeFile(filepath.Join(dir, ReadmeFile), readme); err != nil {
		return err
	}

	slog.Info("saved leave one group out results", "dir", dir, "groups", group.NewIndex(groups).Len())
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s, %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	})
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
