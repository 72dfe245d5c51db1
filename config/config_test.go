package config

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aouyang1/go-extrapolate"
	"github.com/aouyang1/go-extrapolate/cv"
	"github.com/aouyang1/go-extrapolate/dataset"
	"github.com/aouyang1/go-extrapolate/model"
	"github.com/aouyang1/go-extrapolate/plot"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"EXTRAPOLATE_TRAINING_CSV":     "train.csv",
		"EXTRAPOLATE_TOPREDICT_CSV":    "test.csv",
		"EXTRAPOLATE_INPUT_FEATURES":   "temp,time",
		"EXTRAPOLATE_TARGET_FEATURE":   "hardness",
		"EXTRAPOLATE_GROUPING_FEATURE": "alloy",
	}
}

func TestLoadWithDefaults(t *testing.T) {
	c, err := LoadWith(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.Nil(t, err)

	assert.Equal(t, "train.csv", c.TrainingCSV)
	assert.Equal(t, "test.csv", c.ToPredictCSV)
	assert.Equal(t, "", c.StandardCSV)
	assert.Equal(t, "results", c.SavePath)
	assert.Equal(t, []string{"temp", "time"}, c.Features())
	assert.Equal(t, 2, c.MarkOutlyingGroups)
	assert.Equal(t, "html", c.PlotFormat)

	level, err := c.Level()
	require.Nil(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	opt := c.Options()
	assert.Equal(t, "alloy", opt.GroupingFeature)
	assert.False(t, opt.FitOnlyOnMatchedGroups)
	assert.Equal(t, "Measured", opt.XLabel)
	assert.Equal(t, "Predicted", opt.YLabel)
	assert.Equal(t, "Measured or predicted", opt.SplitYLabel)
	assert.Equal(t, plot.FormatHTML, opt.PlotFormat)

	assert.Equal(t, cv.NewDefaultKFoldOptions(), c.KFoldOptions())
}

func TestLoadWithOverrides(t *testing.T) {
	env := baseEnv()
	env["EXTRAPOLATE_INPUT_FEATURES"] = "temp, time ,"
	env["EXTRAPOLATE_FIT_ONLY_ON_MATCHED_GROUPS"] = "1"
	env["EXTRAPOLATE_MARK_OUTLYING_GROUPS"] = "3"
	env["EXTRAPOLATE_STEP_SIZE"] = "0.5"
	env["EXTRAPOLATE_PLOT_FILTER"] = "temp,>,500;alloy,=,X"
	env["EXTRAPOLATE_PLOT_FORMAT"] = "png"
	env["EXTRAPOLATE_LABEL_FEATURE"] = "name"
	env["EXTRAPOLATE_KFOLD_FOLDS"] = "3"
	env["EXTRAPOLATE_KFOLD_RUNS"] = "10"
	env["EXTRAPOLATE_KFOLD_SEED"] = "42"
	env["EXTRAPOLATE_LOG_LEVEL"] = "debug"
	env["EXTRAPOLATE_DATA_FILTER"] = "alloy,=,X;temp,>,900"

	c, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	require.Nil(t, err)

	assert.Equal(t, []string{"temp", "time"}, c.Features())

	opt, err := c.Options().Validate()
	require.Nil(t, err)
	assert.Equal(t, &extrapolate.Options{
		GroupingFeature:        "alloy",
		LabelFeature:           "name",
		PlotFilter:             "temp,>,500;alloy,=,X",
		FitOnlyOnMatchedGroups: true,
		MarkOutlyingGroups:     3,
		StepSize:               0.5,
		XLabel:                 "Measured",
		YLabel:                 "Predicted",
		SplitYLabel:            "Measured or predicted",
		PlotFormat:             plot.FormatPNG,
	}, opt)

	assert.Equal(t, &cv.KFoldOptions{Folds: 3, Runs: 10, Seed: 42}, c.KFoldOptions())

	filters, err := c.DataFilters()
	require.Nil(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "alloy = X", filters[0].String())
	assert.Equal(t, "temp > 900", filters[1].String())

	level, err := c.Level()
	require.Nil(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadWithErrors(t *testing.T) {
	testData := map[string]struct {
		set   map[string]string
		unset []string
		err   error
	}{
		"missing training csv": {
			unset: []string{"EXTRAPOLATE_TRAINING_CSV"},
			err:   envconfig.ErrMissingRequired,
		},
		"missing grouping feature": {
			unset: []string{"EXTRAPOLATE_GROUPING_FEATURE"},
			err:   envconfig.ErrMissingRequired,
		},
		"invalid fit flag": {
			set: map[string]string{"EXTRAPOLATE_FIT_ONLY_ON_MATCHED_GROUPS": "2"},
			err: ErrInvalidFlag,
		},
		"negative outlying groups": {
			set: map[string]string{"EXTRAPOLATE_MARK_OUTLYING_GROUPS": "-1"},
			err: extrapolate.ErrNegativeOutlyingGroups,
		},
		"unknown plot format": {
			set: map[string]string{"EXTRAPOLATE_PLOT_FORMAT": "svg"},
			err: plot.ErrUnknownFormat,
		},
		"unknown model": {
			set: map[string]string{"EXTRAPOLATE_MODEL": "ridge"},
			err: model.ErrUnknownKind,
		},
		"negative lambda": {
			set: map[string]string{"EXTRAPOLATE_LASSO_LAMBDA": "-0.5"},
			err: model.ErrNegativeLambda,
		},
		"malformed data filter": {
			set: map[string]string{"EXTRAPOLATE_DATA_FILTER": "temp,<"},
			err: dataset.ErrMalformedFilter,
		},
		"too few folds": {
			set: map[string]string{"EXTRAPOLATE_KFOLD_FOLDS": "1"},
			err: cv.ErrTooFewFolds,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			env := baseEnv()
			for k, v := range td.set {
				env[k] = v
			}
			for _, k := range td.unset {
				delete(env, k)
			}
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestNewModel(t *testing.T) {
	testData := map[string]struct {
		kind     string
		expected model.Model
	}{
		"default": {"", &model.Regression{}},
		"ols":     {"ols", &model.OLS{}},
		"lasso":   {"lasso", &model.Lasso{}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c := &Config{Model: td.kind, LassoLambda: 0.1, TargetFeature: "hardness", InputFeatures: []string{"temp"}}
			m, err := c.NewModel()
			require.Nil(t, err)
			assert.IsType(t, td.expected, m)
		})
	}

	_, err := (&Config{Model: "ridge"}).NewModel()
	assert.ErrorIs(t, err, model.ErrUnknownKind)
}

func TestLevel(t *testing.T) {
	c := &Config{LogLevel: "verbose"}
	_, err := c.Level()
	assert.NotNil(t, err)

	c.LogLevel = "WARN"
	level, err := c.Level()
	require.Nil(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
