package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLambda     = 1.0
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

var (
	ErrNegativeLambda     = errors.New("negative lambda")
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
)

// LassoOptions configures an L1 regularized linear regression
type LassoOptions struct {
	// Lambda is the L1 multiplier. 0.0 converges to ordinary least squares.
	Lambda float64

	// Iterations caps the passes over all coefficients
	Iterations int

	// Tolerance stops iterating once the largest coefficient update falls below this fraction
	// of the largest coefficient
	Tolerance float64

	// FitIntercept adds an unpenalized constant term
	FitIntercept bool
}

// NewDefaultLassoOptions returns a default set of lasso options
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:       DefaultLambda,
		Iterations:   DefaultIterations,
		Tolerance:    DefaultTolerance,
		FitIntercept: true,
	}
}

// Validate runs basic validation on lasso options
func (l *LassoOptions) Validate() (*LassoOptions, error) {
	if l == nil {
		l = NewDefaultLassoOptions()
	}
	if l.Lambda < 0 {
		return nil, ErrNegativeLambda
	}
	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return l, nil
}

// Lasso fits a lasso regression with cyclic coordinate descent
type Lasso struct {
	opt       *LassoOptions
	coef      []float64
	intercept float64
}

// NewLasso initializes a lasso model ready for fitting
func NewLasso(opt *LassoOptions) (*Lasso, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Lasso{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (l *Lasso) Fit(x, y mat.Matrix) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	if err := validateFit(x, y); err != nil {
		return err
	}
	if l.opt.FitIntercept {
		x = withIntercept(x)
	}
	_, n := x.Dims()

	cols := make([][]float64, n)
	xdot := make([]float64, n)
	for j := range cols {
		cols[j] = mat.Col(nil, j, x)
		xdot[j] = floats.Dot(cols[j], cols[j])
	}

	// residual tracks y - x*beta as beta changes
	residual := mat.Col(nil, 0, y)
	beta := make([]float64, n)

	for i := 0; i < l.opt.Iterations; i++ {
		maxCoef, maxUpdate := 0.0, 0.0
		for j := 0; j < n; j++ {
			if xdot[j] == 0 {
				continue
			}
			curr := beta[j]
			rho := floats.Dot(cols[j], residual) + xdot[j]*curr

			next := rho / xdot[j]
			if !l.opt.FitIntercept || j != 0 {
				next = SoftThreshold(rho, l.opt.Lambda) / xdot[j]
			}
			if next != curr {
				floats.AddScaled(residual, curr-next, cols[j])
			}
			beta[j] = next

			maxCoef = math.Max(maxCoef, math.Abs(next))
			maxUpdate = math.Max(maxUpdate, math.Abs(next-curr))
		}
		if maxUpdate <= l.opt.Tolerance*maxCoef {
			break
		}
	}

	l.intercept, l.coef = splitIntercept(beta, l.opt.FitIntercept)
	return nil
}

// Predict using the lasso coefficients
func (l *Lasso) Predict(x mat.Matrix) ([]float64, error) {
	return predictLinear(x, l.intercept, l.coef)
}

// Intercept returns the fitted intercept, zero when no intercept is fit
func (l *Lasso) Intercept() float64 {
	return l.intercept
}

// Coef returns the fitted coefficients in feature column order
func (l *Lasso) Coef() []float64 {
	return l.coef
}

// SoftThreshold shrinks x towards zero by gamma, returning 0.0 when |x| <= gamma
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}
