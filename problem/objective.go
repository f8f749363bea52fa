package problem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/notargets/globtim/types"
)

// Objective is the black-box scalar field f: R^n -> R.
//
// F is required. HD is an optional hyperdual form of the same function; when
// present the Hessian is computed by forward-mode differentiation, otherwise by
// finite differences.
type Objective struct {
	Name string
	Dim  int
	F    func(x []float64) (float64, error)
	HD   func(x []hyperdual.Number) hyperdual.Number
}

// NewObjective wraps a plain function that cannot fail.
func NewObjective(name string, dim int, f func(x []float64) float64) Objective {
	return Objective{
		Name: name,
		Dim:  dim,
		F: func(x []float64) (float64, error) {
			return f(x), nil
		},
	}
}

// WithHyperdual returns a copy of o carrying the hyperdual form hd.
func (o Objective) WithHyperdual(hd func(x []hyperdual.Number) hyperdual.Number) Objective {
	o.HD = hd
	return o
}

// Eval calls F, converting panics and non-finite results into errors.
func (o Objective) Eval(x []float64) (val float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			val = math.NaN()
			err = fmt.Errorf("%w: panic: %v", types.ErrObjectiveEvaluation, r)
		}
	}()
	if len(x) != o.Dim {
		return math.NaN(), fmt.Errorf("%w: objective %q expects %d coordinates, got %d",
			types.ErrDimensionMismatch, o.Name, o.Dim, len(x))
	}
	if val, err = o.F(x); err != nil {
		return math.NaN(), fmt.Errorf("%w: %w", types.ErrObjectiveEvaluation, err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return math.NaN(), fmt.Errorf("%w: non-finite value %v", types.ErrObjectiveEvaluation, val)
	}
	return
}

// Func adapts the objective to the func([]float64) float64 form expected by
// gonum, mapping failures to NaN.
func (o Objective) Func() func(x []float64) float64 {
	return func(x []float64) float64 {
		v, err := o.Eval(x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}
