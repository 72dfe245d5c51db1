package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrUnderdetermined = errors.New("fewer training rows than coefficients")

// OLSOptions configures ordinary least squares
type OLSOptions struct {
	FitIntercept bool
}

// NewDefaultOLSOptions fits an intercept
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLS computes ordinary least squares using QR factorization
type OLS struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
}

// NewOLS initializes an ordinary least squares model
func NewOLS(opt *OLSOptions) (*OLS, error) {
	if opt == nil {
		opt = NewDefaultOLSOptions()
	}
	return &OLS{
		opt: opt,
	}, nil
}

// Fit solves the least squares problem over the training data
func (o *OLS) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if err := validateFit(x, y); err != nil {
		return err
	}
	if o.opt.FitIntercept {
		x = withIntercept(x)
	}
	m, n := x.Dims()
	if m < n {
		return fmt.Errorf("got %d rows for %d coefficients, %w", m, n, ErrUnderdetermined)
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return fmt.Errorf("unable to solve least squares, %w", err)
	}
	o.intercept, o.coef = splitIntercept(mat.Col(nil, 0, &beta), o.opt.FitIntercept)
	return nil
}

// Predict using the fitted coefficients
func (o *OLS) Predict(x mat.Matrix) ([]float64, error) {
	return predictLinear(x, o.intercept, o.coef)
}

// Intercept returns the fitted intercept, zero when no intercept is fit
func (o *OLS) Intercept() float64 {
	return o.intercept
}

// Coef returns a copy of the fitted coefficients in feature column order
func (o *OLS) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
