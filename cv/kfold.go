// Package cv cross validates a model with repeated shuffled k-fold splits or by holding out one
// group at a time.
package cv

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	mat_ "github.com/aouyang1/go-extrapolate/mat"
	"github.com/aouyang1/go-extrapolate/model"
	"github.com/aouyang1/go-extrapolate/stats"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooFewFolds   = errors.New("k-fold requires at least 2 folds")
	ErrTooFewRuns    = errors.New("k-fold requires at least 1 run")
	ErrTooFewRows    = errors.New("fewer rows than folds")
	ErrLenMismatch   = errors.New("features and targets have different lengths")
	ErrNoModel       = errors.New("no model to cross validate")
	ErrNoGroupsFound = errors.New("no group could be held out")
)

// KFoldOptions configures repeated k-fold cross validation
type KFoldOptions struct {
	Folds int    `json:"folds"`
	Runs  int    `json:"runs"`
	Seed  uint64 `json:"seed"`
}

// NewDefaultKFoldOptions returns 5 folds repeated 200 times
func NewDefaultKFoldOptions() *KFoldOptions {
	return &KFoldOptions{
		Folds: 5,
		Runs:  200,
		Seed:  1,
	}
}

// Validate runs basic validation on k-fold options
func (o *KFoldOptions) Validate() (*KFoldOptions, error) {
	if o == nil {
		o = NewDefaultKFoldOptions()
	}
	if o.Folds < 2 {
		return nil, fmt.Errorf("got %d folds, %w", o.Folds, ErrTooFewFolds)
	}
	if o.Runs < 1 {
		return nil, fmt.Errorf("got %d runs, %w", o.Runs, ErrTooFewRuns)
	}
	return o, nil
}

// Run is one repetition of k-fold cross validation. Predicted holds the held out prediction of
// every row.
type Run struct {
	RMSE      float64   `json:"rmse"`
	FoldRMSE  []float64 `json:"fold_rmse"`
	Predicted []float64 `json:"predicted"`
}

// KFoldResult summarizes the mean fold RMSE of every run
type KFoldResult struct {
	Measured []float64 `json:"measured"`
	Runs     []Run     `json:"runs"`

	Mean   float64 `json:"avg_rmse"`
	Median float64 `json:"median_rmse"`
	Max    float64 `json:"max_rmse"`
	Min    float64 `json:"min_rmse"`
	Std    float64 `json:"std_rmse"`

	// Best and Worst index the runs with the lowest and highest RMSE
	Best  int `json:"best_run"`
	Worst int `json:"worst_run"`
}

// BestRun returns the run with the lowest RMSE
func (r *KFoldResult) BestRun() Run {
	return r.Runs[r.Best]
}

// WorstRun returns the run with the highest RMSE
func (r *KFoldResult) WorstRun() Run {
	return r.Runs[r.Worst]
}

// KFoldSplit partitions the permutation into k test folds. The first n%k folds hold one extra
// row.
func KFoldSplit(perm []int, k int) [][]int {
	n := len(perm)
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		folds[f] = perm[start : start+size]
		start += size
	}
	return folds
}

// KFold repeatedly shuffles the rows, splits them into folds and predicts each fold with a model
// fit on the remaining folds. Runs are seeded from the options so results are reproducible.
func KFold(m model.Model, x mat.Matrix, y []float64, opt *KFoldOptions) (*KFoldResult, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("got %d rows and %d targets, %w", n, len(y), ErrLenMismatch)
	}
	if n < opt.Folds {
		return nil, fmt.Errorf("got %d rows for %d folds, %w", n, opt.Folds, ErrTooFewRows)
	}

	res := &KFoldResult{
		Measured: append([]float64(nil), y...),
		Runs:     make([]Run, 0, opt.Runs),
	}
	for run := 0; run < opt.Runs; run++ {
		rng := rand.New(rand.NewPCG(opt.Seed, uint64(run)))
		r, err := kfoldRun(m, x, y, KFoldSplit(rng.Perm(n), opt.Folds))
		if err != nil {
			return nil, fmt.Errorf("unable to complete run %d, %w", run, err)
		}
		res.Runs = append(res.Runs, r)
	}
	res.summarize()

	slog.Info("k-fold cross validation",
		"folds", opt.Folds,
		"runs", opt.Runs,
		"avg_rmse", res.Mean,
		"median_rmse", res.Median,
		"std_rmse", res.Std,
	)
	return res, nil
}

func kfoldRun(m model.Model, x mat.Matrix, y []float64, folds [][]int) (Run, error) {
	n := len(y)
	r := Run{
		FoldRMSE:  make([]float64, len(folds)),
		Predicted: make([]float64, n),
	}

	held := make([]bool, n)
	for f, test := range folds {
		for i := range held {
			held[i] = false
		}
		for _, row := range test {
			held[row] = true
		}
		train := make([]int, 0, n-len(test))
		for row, h := range held {
			if !h {
				train = append(train, row)
			}
		}

		predicted, err := fitPredict(m, x, y, train, test)
		if err != nil {
			return Run{}, fmt.Errorf("unable to evaluate fold %d, %w", f, err)
		}
		for i, row := range test {
			r.Predicted[row] = predicted[i]
		}
		r.FoldRMSE[f] = stats.RMSEAt(predicted, mat_.Take(y, test), allRows(len(test)))
	}
	r.RMSE = stat.Mean(r.FoldRMSE, nil)
	return r, nil
}

// fitPredict fits on the train rows and predicts the test rows
func fitPredict(m model.Model, x mat.Matrix, y []float64, train, test []int) ([]float64, error) {
	trainX, err := mat_.SelectRows(x, train)
	if err != nil {
		return nil, fmt.Errorf("unable to select training rows, %w", err)
	}
	trainY, err := mat_.NewColumn(mat_.Take(y, train))
	if err != nil {
		return nil, fmt.Errorf("unable to select training targets, %w", err)
	}
	testX, err := mat_.SelectRows(x, test)
	if err != nil {
		return nil, fmt.Errorf("unable to select test rows, %w", err)
	}

	if err := m.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("unable to fit model, %w", err)
	}
	predicted, err := m.Predict(testX)
	if err != nil {
		return nil, fmt.Errorf("unable to predict, %w", err)
	}
	if len(predicted) != len(test) {
		return nil, fmt.Errorf("got %d predictions for %d rows, %w", len(predicted), len(test), ErrLenMismatch)
	}
	return predicted, nil
}

func (r *KFoldResult) summarize() {
	rmses := make([]float64, len(r.Runs))
	for i, run := range r.Runs {
		rmses[i] = run.RMSE
	}

	r.Mean, r.Std = stat.PopMeanStdDev(rmses, nil)
	r.Median = median(rmses)
	r.Best = floats.MinIdx(rmses)
	r.Worst = floats.MaxIdx(rmses)
	r.Min = rmses[r.Best]
	r.Max = rmses[r.Worst]
}

// median averages the two middle values of an even length input
func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
