package model

import (
	"fmt"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/mat"
)

// RegressionOptions names the variables of a linear regression. Names only affect the
// reported formula.
type RegressionOptions struct {
	// Observed is the name of the target
	Observed string

	// Features names each input column in order. Missing names default to x<col>.
	Features []string
}

// NewDefaultRegressionOptions returns a default set of regression options
func NewDefaultRegressionOptions() *RegressionOptions {
	return &RegressionOptions{
		Observed: "y",
	}
}

// Validate runs basic validation on regression options
func (o *RegressionOptions) Validate() (*RegressionOptions, error) {
	if o == nil {
		o = NewDefaultRegressionOptions()
	}
	if o.Observed == "" {
		o.Observed = "y"
	}
	return o, nil
}

// Regression fits a multiple linear regression with an intercept using the
// github.com/sajari/regression library. Each call to Fit replaces the previous fit.
type Regression struct {
	opt *RegressionOptions
	r   *regression.Regression
	n   int
}

// NewRegression initializes a regression model ready for fitting
func NewRegression(opt *RegressionOptions) (*Regression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Regression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (m *Regression) Fit(x, y mat.Matrix) error {
	if m.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	rows, cols := x.Dims()
	ym, _ := y.Dims()
	if ym != rows {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", rows, ym, ErrTargetLenMismatch)
	}

	r := new(regression.Regression)
	r.SetObserved(m.opt.Observed)
	for j := 0; j < cols; j++ {
		name := fmt.Sprintf("x%d", j)
		if j < len(m.opt.Features) {
			name = m.opt.Features[j]
		}
		r.SetVar(j, name)
	}

	for i := 0; i < rows; i++ {
		r.Train(regression.DataPoint(y.At(i, 0), mat.Row(nil, i, x)))
	}
	if err := r.Run(); err != nil {
		return fmt.Errorf("unable to run regression on %d rows, %w", rows, err)
	}

	m.r = r
	m.n = cols
	return nil
}

// Predict using the fitted regression
func (m *Regression) Predict(x mat.Matrix) ([]float64, error) {
	if m.r == nil {
		return nil, ErrNotFit
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	rows, cols := x.Dims()
	if cols != m.n {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", cols, m.n, ErrFeatureLenMismatch)
	}

	res := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		p, err := m.r.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("unable to predict row %d, %w", i, err)
		}
		res[i] = p
	}
	return res, nil
}

// Intercept returns the fitted intercept
func (m *Regression) Intercept() float64 {
	if m.r == nil {
		return 0.0
	}
	return m.r.Coeff(0)
}

// Coef returns the fitted coefficients in the same order as the training feature columns
func (m *Regression) Coef() []float64 {
	if m.r == nil {
		return nil
	}
	c := make([]float64, m.n)
	for j := range c {
		c[j] = m.r.Coeff(j + 1)
	}
	return c
}

// R2 returns the coefficient of determination of the fit on the training data
func (m *Regression) R2() float64 {
	if m.r == nil {
		return 0.0
	}
	return m.r.R2
}

// Formula returns a string representation of the fitted model
func (m *Regression) Formula() string {
	if m.r == nil {
		return ""
	}
	return m.r.Formula
}
