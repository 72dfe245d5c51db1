// Command extrapolate fits a linear regression on a training csv and reports how well it
// extrapolates to groups it never saw. Configuration is read from EXTRAPOLATE_ environment
// variables, optionally loaded from a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aouyang1/go-extrapolate"
	"github.com/aouyang1/go-extrapolate/config"
	"github.com/aouyang1/go-extrapolate/cv"
	"github.com/aouyang1/go-extrapolate/dataset"
	"github.com/aouyang1/go-extrapolate/group"
	"github.com/aouyang1/go-extrapolate/model"

	"github.com/joho/godotenv"
	"github.com/pkg/profile"
)

const (
	modeExtrapolate = "extrapolate"
	modeKFold       = "kfold"
	modeLOGO        = "logo"
)

var ErrUnknownMode = errors.New("unknown mode")

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file with EXTRAPOLATE_ variables")
	mode := flag.String("mode", modeExtrapolate, "one of extrapolate, kfold or logo")
	cpuProfile := flag.Bool("cpuprofile", false, "write a cpu profile to the working directory")
	flag.Parse()

	if err := run(context.Background(), *envFile, *mode, *cpuProfile); err != nil {
		slog.Error("extrapolate failed", "mode", *mode, "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile, mode string, cpuProfile bool) error {
	if cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to load env file %s, %w", envFile, err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	train, err := loadTraining(cfg)
	if err != nil {
		return err
	}

	m, err := cfg.NewModel()
	if err != nil {
		return fmt.Errorf("unable to initialize model, %w", err)
	}

	ex, err := extrapolate.New(m, cfg.Options())
	if err != nil {
		return err
	}

	switch mode {
	case modeExtrapolate:
		return runExtrapolate(ex, cfg, train)
	case modeKFold:
		return runKFold(ex, cfg, m, train)
	case modeLOGO:
		return runLeaveOneGroupOut(ex, cfg, m, train)
	}
	return fmt.Errorf("%q, %w", mode, ErrUnknownMode)
}

func runExtrapolate(ex *extrapolate.Extrapolator, cfg *config.Config, train *dataset.Dataset) error {
	if cfg.ToPredictCSV == "" {
		return config.ErrNoToPredictData
	}
	topredict, err := loadToPredict(cfg)
	if err != nil {
		return err
	}

	var standard *dataset.Dataset
	if cfg.StandardCSV != "" {
		if standard, err = dataset.Load(cfg.StandardCSV); err != nil {
			return err
		}
	}

	res, err := ex.Run(train, topredict, standard)
	if err != nil {
		return err
	}
	return ex.Save(cfg.SavePath, res)
}

func runKFold(ex *extrapolate.Extrapolator, cfg *config.Config, m model.Model, train *dataset.Dataset) error {
	x, err := train.XData()
	if err != nil {
		return err
	}
	y, err := train.YData()
	if err != nil {
		return err
	}
	opt := cfg.KFoldOptions()
	res, err := cv.KFold(m, x, y, opt)
	if err != nil {
		return err
	}
	return ex.SaveKFold(cfg.SavePath, opt, res)
}

func runLeaveOneGroupOut(ex *extrapolate.Extrapolator, cfg *config.Config, m model.Model, train *dataset.Dataset) error {
	x, err := train.XData()
	if err != nil {
		return err
	}
	y, err := train.YData()
	if err != nil {
		return err
	}
	groups, err := train.Column(cfg.GroupingFeature)
	if err != nil {
		return err
	}
	res, err := cv.LeaveOneGroupOut(m, x, y, group.NewIndex(groups))
	if err != nil {
		return err
	}
	return ex.SaveLeaveOneGroupOut(cfg.SavePath, groups, res)
}

// loadTraining reads the training csv, sets the configured features and target and removes
// rows matching the data filter
func loadTraining(cfg *config.Config) (*dataset.Dataset, error) {
	ds, err := loadFeatures(cfg.TrainingCSV, cfg)
	if err != nil {
		return nil, err
	}
	if err := ds.SetYFeature(cfg.TargetFeature); err != nil {
		return nil, fmt.Errorf("unable to set target of %s, %w", cfg.TrainingCSV, err)
	}

	filters, err := cfg.DataFilters()
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		if err := ds.AddExclusiveFilter(f); err != nil {
			return nil, fmt.Errorf("unable to filter %s, %w", cfg.TrainingCSV, err)
		}
	}
	return ds, nil
}

// loadToPredict reads the to-predict csv. The target is only set when the column exists so a
// missing target is reported by the extrapolator.
func loadToPredict(cfg *config.Config) (*dataset.Dataset, error) {
	ds, err := loadFeatures(cfg.ToPredictCSV, cfg)
	if err != nil {
		return nil, err
	}
	if ds.HasColumn(cfg.TargetFeature) {
		if err := ds.SetYFeature(cfg.TargetFeature); err != nil {
			return nil, fmt.Errorf("unable to set target of %s, %w", cfg.ToPredictCSV, err)
		}
	}
	return ds, nil
}

func loadFeatures(path string, cfg *config.Config) (*dataset.Dataset, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	if err := ds.SetXFeatures(cfg.Features()...); err != nil {
		return nil, fmt.Errorf("unable to set features of %s, %w", path, err)
	}
	return ds, nil
}
