// Package evaluate fits a model once on training data, predicts a held out evaluation set in a
// single call and scores the predictions overall and over the supported and unsupported rows.
package evaluate

import (
	"errors"
	"fmt"
	"log/slog"

	mat_ "github.com/aouyang1/go-extrapolate/mat"
	"github.com/aouyang1/go-extrapolate/model"
	"github.com/aouyang1/go-extrapolate/stats"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoModel               = errors.New("no model to evaluate")
	ErrNoTrainingRows        = errors.New("no training rows to fit on")
	ErrTrainLenMismatch      = errors.New("training features and targets have different lengths")
	ErrEvalLenMismatch       = errors.New("evaluation features and targets have different lengths")
	ErrPredictionLenMismatch = errors.New("model returned a different number of predictions than evaluation rows")
)

// Predictions holds the measured and predicted values of the evaluation rows, aligned by row.
// MeasuredErr is nil when no measurement error is known.
type Predictions struct {
	Measured    []float64 `json:"measured"`
	Predicted   []float64 `json:"predicted"`
	MeasuredErr []float64 `json:"measured_error,omitempty"`
}

// Len is the number of evaluation rows
func (p Predictions) Len() int {
	return len(p.Measured)
}

// WithMeasuredError returns a copy of the predictions carrying the measurement error of each
// row. The error slice must have one value per row.
func (p Predictions) WithMeasuredError(measuredErr []float64) Predictions {
	out := p
	if measuredErr != nil {
		out.MeasuredErr = make([]float64, len(measuredErr))
		copy(out.MeasuredErr, measuredErr)
	}
	return out
}

// MeasuredErrAt returns the measurement error of the given rows, or zeros when unknown
func (p Predictions) MeasuredErrAt(rows []int) []float64 {
	if p.MeasuredErr == nil {
		return make([]float64, len(rows))
	}
	return mat_.Take(p.MeasuredErr, rows)
}

// Scores are the root mean squared errors of an evaluation. A score over no rows is NaN.
type Scores struct {
	Overall     float64
	Supported   float64
	Unsupported float64
}

// MarshalJSON encodes undefined scores as null
func (s Scores) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Overall     stats.NullFloat `json:"overall_rmse"`
		Supported   stats.NullFloat `json:"supported_rmse"`
		Unsupported stats.NullFloat `json:"unsupported_rmse"`
	}{
		Overall:     stats.NewNullFloat(s.Overall),
		Supported:   stats.NewNullFloat(s.Supported),
		Unsupported: stats.NewNullFloat(s.Unsupported),
	})
}

// Result is the outcome of a single fit and predict
type Result struct {
	Predictions Predictions
	Scores      Scores

	// FitRows is the number of training rows the model was fit on
	FitRows int
}

// Evaluate fits the model exactly once on the training data and predicts the whole evaluation
// matrix exactly once. evalX may be nil only when there are no evaluation rows.
func Evaluate(
	m model.Model,
	trainX mat.Matrix, trainY []float64,
	evalX mat.Matrix, evalY []float64,
	supported, unsupported []int,
) (*Result, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	if trainX == nil || len(trainY) == 0 {
		return nil, ErrNoTrainingRows
	}
	if tm, _ := trainX.Dims(); tm != len(trainY) {
		return nil, fmt.Errorf("got %d training rows and %d targets, %w", tm, len(trainY), ErrTrainLenMismatch)
	}
	if evalX != nil {
		if em, _ := evalX.Dims(); em != len(evalY) {
			return nil, fmt.Errorf("got %d evaluation rows and %d targets, %w", em, len(evalY), ErrEvalLenMismatch)
		}
	} else if len(evalY) != 0 {
		return nil, fmt.Errorf("got no evaluation rows and %d targets, %w", len(evalY), ErrEvalLenMismatch)
	}

	y, err := mat_.NewColumn(trainY)
	if err != nil {
		return nil, fmt.Errorf("unable to create target matrix, %w", err)
	}
	if err := m.Fit(trainX, y); err != nil {
		return nil, fmt.Errorf("unable to fit model, %w", err)
	}

	predicted := make([]float64, 0)
	if evalX != nil {
		predicted, err = m.Predict(evalX)
		if err != nil {
			return nil, fmt.Errorf("unable to predict evaluation rows, %w", err)
		}
		if len(predicted) != len(evalY) {
			return nil, fmt.Errorf("got %d predictions for %d rows, %w", len(predicted), len(evalY), ErrPredictionLenMismatch)
		}
	}

	measured := make([]float64, len(evalY))
	copy(measured, evalY)

	all := make([]int, len(measured))
	for i := range all {
		all[i] = i
	}

	res := &Result{
		Predictions: Predictions{
			Measured:  measured,
			Predicted: predicted,
		},
		Scores: Scores{
			Overall:     stats.RMSEAt(predicted, measured, all),
			Supported:   stats.RMSEAt(predicted, measured, supported),
			Unsupported: stats.RMSEAt(predicted, measured, unsupported),
		},
		FitRows: len(trainY),
	}
	slog.Debug("evaluated model",
		"fit_rows", res.FitRows,
		"eval_rows", len(measured),
		"overall_rmse", res.Scores.Overall,
		"supported_rmse", res.Scores.Supported,
		"unsupported_rmse", res.Scores.Unsupported,
	)
	return res, nil
}
