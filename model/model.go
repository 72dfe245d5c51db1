// Package model defines the fit/predict capability the extrapolation workflow evaluates. It
// provides an adapter over an external multiple linear regression library along with ordinary
// least squares and lasso implementations.
package model

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrTargetLenMismatch  = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match the fitted model")
	ErrNotFit             = errors.New("model has not been fit")
)

// Model is a regression capability. x holds one sample per row and one feature per column and
// y is a single column of targets with the same number of rows. Fit mutates the model so a
// Model must not be fit concurrently.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
}
