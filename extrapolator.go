// Package extrapolate fits a model on a training dataset and predicts a held out dataset whose
// rows are split by group into supported rows, from groups seen during training, and
// unsupported rows, from groups the model never saw. It reports overall, supported, unsupported
// and per group errors and renders diagnostic plots.
package extrapolate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-extrapolate/dataset"
	"github.com/aouyang1/go-extrapolate/evaluate"
	"github.com/aouyang1/go-extrapolate/group"
	mat_ "github.com/aouyang1/go-extrapolate/mat"
	"github.com/aouyang1/go-extrapolate/model"
	"github.com/aouyang1/go-extrapolate/plot"
	"github.com/aouyang1/go-extrapolate/stats"
)

var (
	ErrNoModel        = errors.New("no model to extrapolate with")
	ErrNoTrainingData = errors.New("no training dataset")
	ErrNoEvalData     = errors.New("no evaluation dataset")
)

// Extrapolator runs the grouped fit and predict workflow and saves its reports
type Extrapolator struct {
	opt      *Options
	m        model.Model
	filters  []dataset.Filter
	renderer plot.Renderer
}

// New creates an Extrapolator around a model. If no options are provided a default is used,
// which fails validation until a grouping feature is set.
func New(m model.Model, opt *Options) (*Extrapolator, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate options, %w", err)
	}
	filters, err := opt.Filters()
	if err != nil {
		return nil, err
	}
	renderer, err := plot.NewRenderer(opt.PlotFormat)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize plot renderer, %w", err)
	}
	return &Extrapolator{
		opt:      opt,
		m:        m,
		filters:  filters,
		renderer: renderer,
	}, nil
}

// Options returns the validated options
func (e *Extrapolator) Options() *Options {
	return e.opt
}

// Run fits the model on the training dataset and evaluates it on the to-predict dataset. The
// to-predict dataset uses the training features and target unless its own are set. An optional
// standard conditions dataset is predicted with the same fit and needs no target.
func (e *Extrapolator) Run(train, topredict, standard *dataset.Dataset) (*Results, error) {
	if train == nil {
		return nil, ErrNoTrainingData
	}
	if topredict == nil {
		return nil, ErrNoEvalData
	}
	if err := e.prepareEval(train, topredict); err != nil {
		return nil, err
	}

	trainX, err := train.XData()
	if err != nil {
		return nil, fmt.Errorf("unable to read training features, %w", err)
	}
	trainY, err := train.YData()
	if err != nil {
		return nil, fmt.Errorf("unable to read training target, %w", err)
	}
	evalX, err := topredict.XData()
	if err != nil {
		return nil, fmt.Errorf("unable to read evaluation features, %w", err)
	}
	evalY, err := topredict.YData()
	if err != nil {
		return nil, fmt.Errorf("unable to read evaluation target, %w", err)
	}
	trainGroups, err := train.Column(e.opt.GroupingFeature)
	if err != nil {
		return nil, fmt.Errorf("unable to read training groups, %w", err)
	}
	evalGroups, err := topredict.Column(e.opt.GroupingFeature)
	if err != nil {
		return nil, fmt.Errorf("unable to read evaluation groups, %w", err)
	}

	trainIdx := group.NewIndex(trainGroups)
	evalIdx := group.NewIndex(evalGroups)
	match := group.MatchGroups(trainIdx, evalIdx)

	mode := e.opt.FitMode()
	fitRows := group.FitRows(trainIdx, match.Matched, mode)
	if len(fitRows) == 0 {
		return nil, fmt.Errorf("fit mode %s left no training rows, %w", mode, evaluate.ErrNoTrainingRows)
	}
	fitX, err := mat_.SelectRows(trainX, fitRows)
	if err != nil {
		return nil, fmt.Errorf("unable to select fit rows, %w", err)
	}

	ev, err := evaluate.Evaluate(e.m, fitX, mat_.Take(trainY, fitRows), evalX, evalY, match.Supported, match.Unsupported)
	if err != nil {
		return nil, fmt.Errorf("unable to evaluate model, %w", err)
	}

	res := &Results{
		Options:           e.opt,
		FitMode:           mode.String(),
		TrainRows:         len(trainY),
		FitRows:           ev.FitRows,
		EvalRows:          len(evalY),
		Scores:            ev.Scores,
		FilteredRMSE:      stats.NullFloat{},
		TrainGroups:       trainIdx.Labels(),
		MatchedGroups:     match.MatchedLabels,
		UnsupportedGroups: match.UnsupportedLabels,
		Criterion:         stats.CriterionRMSE,
		Predictions:       ev.Predictions,
		Supported:         match.Supported,
		Unsupported:       match.Unsupported,
		Groups:            evalGroups,
	}

	if e.opt.TargetErrorFeature != "" {
		measuredErr, err := topredict.FloatColumn(e.opt.TargetErrorFeature)
		if err != nil {
			return nil, fmt.Errorf("unable to read target error, %w", err)
		}
		res.Predictions = res.Predictions.WithMeasuredError(measuredErr)
	}

	if res.FitScores, err = stats.NewScores(res.Predictions.Predicted, res.Predictions.Measured); err != nil {
		return nil, fmt.Errorf("unable to score predictions, %w", err)
	}

	if len(e.filters) > 0 {
		plotRows, err := topredict.Surviving(e.filters...)
		if err != nil {
			return nil, fmt.Errorf("unable to apply plot filter, %w", err)
		}
		res.PlotRows = plotRows
		res.Criterion = stats.CriterionRMSEFiltered
		res.FilteredRMSE = stats.NewNullFloat(stats.RMSEAt(res.Predictions.Predicted, res.Predictions.Measured, plotRows))
		for _, f := range e.filters {
			res.Filters = append(res.Filters, f.String())
		}
	}

	res.PerGroup = stats.ComputePerGroup(evalIdx, res.Predictions.Predicted, res.Predictions.Measured, res.PlotRows)
	res.Outliers = stats.SelectOutliers(res.PerGroup, e.opt.MarkOutlyingGroups, res.Criterion)

	if err := e.capturePlotColumns(topredict, res); err != nil {
		return nil, err
	}

	if standard != nil {
		std, err := e.predictStandard(train, standard)
		if err != nil {
			return nil, err
		}
		res.Standard = std
	}

	slog.Info("extrapolation complete",
		"fit_mode", res.FitMode,
		"fit_rows", res.FitRows,
		"eval_rows", res.EvalRows,
		"matched_groups", len(res.MatchedGroups),
		"unsupported_groups", len(res.UnsupportedGroups),
		"overall_rmse", res.Scores.Overall,
		"supported_rmse", res.Scores.Supported,
		"unsupported_rmse", res.Scores.Unsupported,
		"outlying_groups", res.Outliers.Groups(),
	)
	return res, nil
}

// prepareEval checks both datasets carry the grouping feature and gives the evaluation dataset
// the training features and target when it has none of its own.
func (e *Extrapolator) prepareEval(train, topredict *dataset.Dataset) error {
	if !train.HasColumn(e.opt.GroupingFeature) {
		return fmt.Errorf("grouping feature %q missing from training dataset, %w", e.opt.GroupingFeature, ErrNoGroupingFeature)
	}
	if !topredict.HasColumn(e.opt.GroupingFeature) {
		return fmt.Errorf("grouping feature %q missing from evaluation dataset, %w", e.opt.GroupingFeature, ErrNoGroupingFeature)
	}

	if topredict.YFeature() == "" {
		target := train.YFeature()
		if target == "" || !topredict.HasColumn(target) {
			return fmt.Errorf("target %q, %w", target, ErrNoEvalTarget)
		}
		if err := topredict.SetYFeature(target); err != nil {
			return fmt.Errorf("target %q, %w", target, ErrNoEvalTarget)
		}
	}
	if topredict.Len() == 0 {
		return fmt.Errorf("no rows to evaluate, %w", ErrNoEvalTarget)
	}

	if len(topredict.XFeatures()) == 0 {
		if err := topredict.SetXFeatures(train.XFeatures()...); err != nil {
			return fmt.Errorf("unable to set evaluation features, %w", err)
		}
	}
	return nil
}

// capturePlotColumns keeps the label and numeric columns of the evaluation rows for plotting.
// The numeric feature is optional and skipped with a warning when it is not numeric.
func (e *Extrapolator) capturePlotColumns(topredict *dataset.Dataset, res *Results) error {
	labels, err := topredict.Column(e.opt.LabelFeature)
	if err != nil {
		return fmt.Errorf("unable to read label feature, %w", err)
	}
	res.Labels = labels

	numeric := e.numericFeature(topredict)
	if numeric == "" {
		return nil
	}
	values, err := topredict.FloatColumn(numeric)
	if err != nil {
		slog.Warn("skipping numeric plots", "feature", numeric, "error", err.Error())
		return nil
	}
	res.NumericFeature = numeric
	res.Numeric = values
	return nil
}

func (e *Extrapolator) numericFeature(ds *dataset.Dataset) string {
	if e.opt.NumericFeature != "" {
		return e.opt.NumericFeature
	}
	if x := ds.XFeatures(); len(x) > 0 {
		return x[0]
	}
	return ""
}

// predictStandard predicts the standard conditions dataset with the current fit in one call
func (e *Extrapolator) predictStandard(train, standard *dataset.Dataset) (*StandardPredictions, error) {
	if len(standard.XFeatures()) == 0 {
		if err := standard.SetXFeatures(train.XFeatures()...); err != nil {
			return nil, fmt.Errorf("unable to set standard conditions features, %w", err)
		}
	}
	x, err := standard.XData()
	if err != nil {
		return nil, fmt.Errorf("unable to read standard conditions features, %w", err)
	}
	predicted, err := e.m.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("unable to predict standard conditions, %w", err)
	}
	if len(predicted) != standard.Len() {
		return nil, fmt.Errorf("got %d predictions for %d standard rows, %w", len(predicted), standard.Len(), evaluate.ErrPredictionLenMismatch)
	}

	std := &StandardPredictions{
		Predicted: predicted,
	}
	if numeric := e.numericFeature(standard); numeric != "" && standard.HasColumn(numeric) {
		if std.Numeric, err = standard.FloatColumn(numeric); err != nil {
			return nil, fmt.Errorf("unable to read standard conditions numeric feature, %w", err)
		}
	}
	if standard.HasColumn(e.opt.GroupingFeature) {
		std.Groups, _ = standard.Column(e.opt.GroupingFeature)
	}
	if standard.HasColumn(e.opt.LabelFeature) {
		std.Labels, _ = standard.Column(e.opt.LabelFeature)
	}

	slog.Debug("predicted standard conditions", "rows", len(predicted), "groups", len(std.Groups))
	return std, nil
}
