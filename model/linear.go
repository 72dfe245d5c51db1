package model

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var ErrUnknownKind = errors.New("unknown model kind")

// Kind names a model implementation
type Kind string

const (
	KindRegression Kind = "regression"
	KindOLS        Kind = "ols"
	KindLasso      Kind = "lasso"
)

// ParseKind maps a case insensitive name to a kind. An empty name is a regression.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRegression, KindOLS, KindLasso:
		return k, nil
	case "":
		return KindRegression, nil
	}
	return "", fmt.Errorf("%q, %w", s, ErrUnknownKind)
}

// validateFit checks the training inputs shared by every linear model
func validateFit(x, y mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	rows, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != rows {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", rows, ym, ErrTargetLenMismatch)
	}
	return nil
}

// withIntercept prepends a column of ones
func withIntercept(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		out.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}

// predictLinear evaluates intercept + x * coef for every row of x
func predictLinear(x mat.Matrix, intercept float64, coef []float64) ([]float64, error) {
	if coef == nil {
		return nil, ErrNotFit
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(coef), ErrFeatureLenMismatch)
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(n, coef))
	out := make([]float64, m)
	for i := range out {
		out[i] = res.AtVec(i) + intercept
	}
	return out, nil
}

func splitIntercept(beta []float64, fitIntercept bool) (float64, []float64) {
	if !fitIntercept {
		return 0.0, beta
	}
	return beta[0], beta[1:]
}
