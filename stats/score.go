package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks the fit scores over a set of predictions
type Scores struct {
	RMSE float64 `json:"root_mean_squared_error"`
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}

	return &Scores{
		RMSE: math.Sqrt(mse),
		MSE:  mse,
		MAPE: mape,
		R2:   rs,
	}, nil
}

// MarshalJSON encodes undefined scores as null
func (s Scores) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RMSE NullFloat `json:"root_mean_squared_error"`
		MSE  NullFloat `json:"mean_squared_error"`
		MAPE NullFloat `json:"mean_average_percent_error"`
		R2   NullFloat `json:"r_squared"`
	}{
		RMSE: NewNullFloat(s.RMSE),
		MSE:  NewNullFloat(s.MSE),
		MAPE: NewNullFloat(s.MAPE),
		R2:   NewNullFloat(s.R2),
	})
}

// MSE computes the mean squared error, mean((y-yhat)^2), skipping NaN pairs. An input with no
// comparable pairs has an undefined error and returns NaN.
func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	var sum float64
	var cnt int
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		diff := predicted[i] - actual[i]
		sum += diff * diff
		cnt++
	}
	if cnt == 0 {
		return math.NaN(), nil
	}
	return sum / float64(cnt), nil
}

// RMSE is the square root of the mean squared error
func RMSE(predicted, actual []float64) (float64, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// RMSEAt computes the root mean squared error over the given rows of two parallel slices.
// No rows means an undefined metric and NaN is returned. Rows must be in range.
func RMSEAt(predicted, actual []float64, rows []int) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, r := range rows {
		diff := predicted[r] - actual[r]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(rows)))
}

// MAPE calculates the mean average percent error. This is the same as mean(abs((y-yhat)/y)).
// Pairs with a zero actual value are skipped.
func MAPE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	var sum float64
	var cnt int
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		cnt++
	}
	if cnt == 0 {
		return math.NaN(), nil
	}
	return sum / float64(cnt), nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	if len(actualCopy) == 0 {
		return math.NaN(), nil
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}
