// Package config loads command line configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aouyang1/go-extrapolate"
	"github.com/aouyang1/go-extrapolate/cv"
	"github.com/aouyang1/go-extrapolate/dataset"
	"github.com/aouyang1/go-extrapolate/model"
	"github.com/aouyang1/go-extrapolate/plot"

	"github.com/sethvargo/go-envconfig"
)

var (
	ErrInvalidFlag     = errors.New("flag must be 0 or 1")
	ErrNoToPredictData = errors.New("no to-predict csv configured")
)

// Config is read from EXTRAPOLATE_ prefixed environment variables
type Config struct {
	TrainingCSV  string `env:"EXTRAPOLATE_TRAINING_CSV, required"`
	ToPredictCSV string `env:"EXTRAPOLATE_TOPREDICT_CSV"`
	StandardCSV  string `env:"EXTRAPOLATE_STANDARD_CSV"`
	SavePath     string `env:"EXTRAPOLATE_SAVE_PATH, default=results"`

	InputFeatures      []string `env:"EXTRAPOLATE_INPUT_FEATURES, required"`
	TargetFeature      string   `env:"EXTRAPOLATE_TARGET_FEATURE, required"`
	GroupingFeature    string   `env:"EXTRAPOLATE_GROUPING_FEATURE, required"`
	LabelFeature       string   `env:"EXTRAPOLATE_LABEL_FEATURE"`
	NumericFeature     string   `env:"EXTRAPOLATE_NUMERIC_FEATURE"`
	TargetErrorFeature string   `env:"EXTRAPOLATE_TARGET_ERROR_FEATURE"`

	Model       string  `env:"EXTRAPOLATE_MODEL, default=regression"`
	LassoLambda float64 `env:"EXTRAPOLATE_LASSO_LAMBDA, default=1"`

	// DataFilter removes matching training rows before fitting, in the plot filter syntax
	DataFilter string `env:"EXTRAPOLATE_DATA_FILTER"`

	PlotFilter             string  `env:"EXTRAPOLATE_PLOT_FILTER"`
	FitOnlyOnMatchedGroups int     `env:"EXTRAPOLATE_FIT_ONLY_ON_MATCHED_GROUPS, default=0"`
	MarkOutlyingGroups     int     `env:"EXTRAPOLATE_MARK_OUTLYING_GROUPS, default=2"`
	StepSize               float64 `env:"EXTRAPOLATE_STEP_SIZE, default=0"`
	XLabel                 string  `env:"EXTRAPOLATE_XLABEL, default=Measured"`
	YLabel                 string  `env:"EXTRAPOLATE_YLABEL, default=Predicted"`
	SplitXLabel            string  `env:"EXTRAPOLATE_SPLIT_XLABEL"`
	SplitYLabel            string  `env:"EXTRAPOLATE_SPLIT_YLABEL, default=Measured or predicted"`
	PlotFormat             string  `env:"EXTRAPOLATE_PLOT_FORMAT, default=html"`

	KFoldFolds int    `env:"EXTRAPOLATE_KFOLD_FOLDS, default=5"`
	KFoldRuns  int    `env:"EXTRAPOLATE_KFOLD_RUNS, default=200"`
	KFoldSeed  uint64 `env:"EXTRAPOLATE_KFOLD_SEED, default=1"`

	LogLevel string `env:"EXTRAPOLATE_LOG_LEVEL, default=info"`
}

// Load reads the configuration from the process environment
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration from a lookuper and validates it
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var c Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("unable to process environment, %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values the environment decoder cannot
func (c *Config) Validate() error {
	if c.FitOnlyOnMatchedGroups != 0 && c.FitOnlyOnMatchedGroups != 1 {
		return fmt.Errorf("fit only on matched groups got %d, %w", c.FitOnlyOnMatchedGroups, ErrInvalidFlag)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := model.ParseKind(c.Model); err != nil {
		return err
	}
	if _, err := c.DataFilters(); err != nil {
		return err
	}
	if c.LassoLambda < 0 {
		return fmt.Errorf("lasso lambda got %f, %w", c.LassoLambda, model.ErrNegativeLambda)
	}
	if _, err := c.Options().Validate(); err != nil {
		return fmt.Errorf("invalid extrapolation options, %w", err)
	}
	if _, err := c.KFoldOptions().Validate(); err != nil {
		return fmt.Errorf("invalid k-fold options, %w", err)
	}
	return nil
}

// Options converts the configuration into extrapolation options
func (c *Config) Options() *extrapolate.Options {
	return &extrapolate.Options{
		GroupingFeature:        c.GroupingFeature,
		LabelFeature:           c.LabelFeature,
		NumericFeature:         c.NumericFeature,
		TargetErrorFeature:     c.TargetErrorFeature,
		PlotFilter:             c.PlotFilter,
		FitOnlyOnMatchedGroups: c.FitOnlyOnMatchedGroups == 1,
		MarkOutlyingGroups:     c.MarkOutlyingGroups,
		StepSize:               c.StepSize,
		XLabel:                 c.XLabel,
		YLabel:                 c.YLabel,
		SplitXLabel:            c.SplitXLabel,
		SplitYLabel:            c.SplitYLabel,
		PlotFormat:             plot.Format(c.PlotFormat),
	}
}

// NewModel creates the configured model. Regression coefficients are named after the input and
// target features.
func (c *Config) NewModel() (model.Model, error) {
	kind, err := model.ParseKind(c.Model)
	if err != nil {
		return nil, err
	}
	switch kind {
	case model.KindOLS:
		return model.NewOLS(nil)
	case model.KindLasso:
		opt := model.NewDefaultLassoOptions()
		opt.Lambda = c.LassoLambda
		return model.NewLasso(opt)
	}
	return model.NewRegression(&model.RegressionOptions{
		Observed: c.TargetFeature,
		Features: c.Features(),
	})
}

// DataFilters parses the training data filter expression
func (c *Config) DataFilters() ([]dataset.Filter, error) {
	filters, err := dataset.ParseFilters(c.DataFilter)
	if err != nil {
		return nil, fmt.Errorf("unable to parse data filter, %w", err)
	}
	return filters, nil
}

// KFoldOptions converts the configuration into k-fold options
func (c *Config) KFoldOptions() *cv.KFoldOptions {
	return &cv.KFoldOptions{
		Folds: c.KFoldFolds,
		Runs:  c.KFoldRuns,
		Seed:  c.KFoldSeed,
	}
}

// Features returns the input features with surrounding spaces removed
func (c *Config) Features() []string {
	features := make([]string, 0, len(c.InputFeatures))
	for _, f := range c.InputFeatures {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return features
}

// Level parses the log level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("unable to parse log level %q, %w", c.LogLevel, err)
	}
	return level, nil
}
