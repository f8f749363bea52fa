// Package autodiff computes gradients and Hessians of objectives, exactly by
// forward mode hyperdual arithmetic when the objective provides a hyperdual
// form, and by central finite differences otherwise.
package autodiff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
)

type Differentiator interface {
	Gradient(obj problem.Objective, x []float64) ([]float64, error)
	Hessian(obj problem.Objective, x []float64) (*mat.SymDense, error)
}

// Auto returns Hyperdual when obj has a hyperdual form, FiniteDifference
// otherwise.
func Auto(obj problem.Objective) Differentiator {
	if obj.HD != nil {
		return Hyperdual{}
	}
	return FiniteDifference{}
}

// Hyperdual differentiates obj.HD. Each Hessian entry H_ij takes one pass with
// ε1 seeded along e_i and ε2 along e_j, n(n+1)/2 passes in total.
type Hyperdual struct{}

func (Hyperdual) eval(obj problem.Objective, x []float64, i, j int) (v hyperdual.Number, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in hyperdual form: %v", types.ErrHessianFailure, r)
		}
	}()
	if obj.HD == nil {
		err = fmt.Errorf("%w: objective %q has no hyperdual form", types.ErrHessianFailure, obj.Name)
		return
	}
	if len(x) != obj.Dim {
		err = fmt.Errorf("%w: objective %q expects %d coordinates, got %d",
			types.ErrDimensionMismatch, obj.Name, obj.Dim, len(x))
		return
	}
	hx := make([]hyperdual.Number, len(x))
	for k, xk := range x {
		hx[k] = hyperdual.Number{Real: xk}
	}
	if i >= 0 {
		hx[i].E1mag = 1
	}
	if j >= 0 {
		hx[j].E2mag = 1
	}
	v = obj.HD(hx)
	if math.IsNaN(v.Real) || math.IsInf(v.Real, 0) {
		err = fmt.Errorf("%w: non-finite value at %v", types.ErrHessianFailure, x)
	}
	return
}

func (h Hyperdual) Gradient(obj problem.Objective, x []float64) (g []float64, err error) {
	var (
		v hyperdual.Number
	)
	g = make([]float64, len(x))
	for i := range x {
		if v, err = h.eval(obj, x, i, -1); err != nil {
			return nil, err
		}
		g[i] = v.E1mag
	}
	if !utils.IsFinite(g) {
		err = fmt.Errorf("%w: non-finite gradient %v at %v", types.ErrHessianFailure, g, x)
	}
	return
}

func (h Hyperdual) Hessian(obj problem.Objective, x []float64) (H *mat.SymDense, err error) {
	var (
		n = len(x)
		v hyperdual.Number
	)
	H = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v, err = h.eval(obj, x, i, j); err != nil {
				return nil, err
			}
			if math.IsNaN(v.E1E2mag) || math.IsInf(v.E1E2mag, 0) {
				return nil, fmt.Errorf("%w: non-finite entry H[%d,%d] at %v",
					types.ErrHessianFailure, i, j, x)
			}
			H.SetSym(i, j, v.E1E2mag)
		}
	}
	return
}

// FiniteDifference uses gonum/diff/fd central differences on obj.F. Failed
// evaluations propagate as NaN and are reported as errors.
type FiniteDifference struct {
	Step       float64 // zero selects the formula default
	Concurrent bool
}

func (f FiniteDifference) settings() *fd.Settings {
	return &fd.Settings{
		Formula:    fd.Central,
		Step:       f.Step,
		Concurrent: f.Concurrent,
	}
}

func (f FiniteDifference) Gradient(obj problem.Objective, x []float64) (g []float64, err error) {
	if len(x) != obj.Dim {
		return nil, fmt.Errorf("%w: objective %q expects %d coordinates, got %d",
			types.ErrDimensionMismatch, obj.Name, obj.Dim, len(x))
	}
	g = fd.Gradient(nil, obj.Func(), x, f.settings())
	if !utils.IsFinite(g) {
		err = fmt.Errorf("%w: non-finite gradient %v at %v", types.ErrHessianFailure, g, x)
	}
	return
}

func (f FiniteDifference) Hessian(obj problem.Objective, x []float64) (H *mat.SymDense, err error) {
	if len(x) != obj.Dim {
		return nil, fmt.Errorf("%w: objective %q expects %d coordinates, got %d",
			types.ErrDimensionMismatch, obj.Name, obj.Dim, len(x))
	}
	H = mat.NewSymDense(len(x), nil)
	fd.Hessian(H, obj.Func(), x, f.settings())
	n := len(x)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := H.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite entry H[%d,%d] at %v",
					types.ErrHessianFailure, i, j, x)
			}
		}
	}
	return
}
