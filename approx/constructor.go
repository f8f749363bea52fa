// Package approx fits a global polynomial to samples of an objective on a
// tensor grid by discrete least squares.
package approx

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/globtim/basis"
	"github.com/notargets/globtim/grid"
	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
	"github.com/notargets/globtim/vandermonde"
)

// Constructor samples the objective of d on the grid for the chosen basis,
// fits coefficients over the support of degree and reports the fit quality.
// Failed samples are excluded from the fit; only a run where every sample
// fails is an error. Numerical degeneracy is reported through Cond, never as an
// error.
func Constructor(ctx context.Context, d problem.Domain, degree types.Degree, opts ...Option) (a *Approximant, err error) {
	var (
		o = defaultOptions()
		b basis.Basis
		s *grid.SupportSet
		g *grid.Grid
	)
	for _, opt := range opts {
		opt(&o)
	}
	if err = o.validate(); err != nil {
		return
	}
	if err = degree.Validate(d.Dim); err != nil {
		return
	}
	if d.GN < 1 {
		err = fmt.Errorf("%w: GN = %d", types.ErrInvalidGrid, d.GN)
		return
	}
	if b, err = basis.New(o.basis); err != nil {
		return
	}
	defer o.metrics.Stage("approximation")()

	GN := max(1, utils.Ceil(d.GN, o.density))
	if s, err = grid.NewSupport(d.Dim, degree); err != nil {
		return
	}
	if g, err = grid.NewSampleGrid(d.Dim, GN, o.nodes, o.basis); err != nil {
		return
	}
	o.metrics.Set(metrics.GridPoints, g.N)
	o.metrics.Set(metrics.Coefficients, s.Len())

	values, failures := sample(ctx, d, g, o.workers)
	if err = ctx.Err(); err != nil {
		return
	}
	for _, f := range failures {
		o.logger.Warn("objective evaluation failed, sample excluded",
			"index", f.Index, "x", f.X, "err", f.Wrapped)
	}
	o.metrics.Set(metrics.EvalErrors, len(failures))
	if len(failures) == g.N {
		err = fmt.Errorf("%w: %d samples: %w", types.ErrAllEvaluationsFailed, g.N, failures[0])
		return
	}

	a = &Approximant{
		Support:      s,
		Degree:       degree,
		Basis:        o.basis,
		Precision:    o.precision,
		Center:       append([]float64(nil), d.Center...),
		Scale:        append([]float64(nil), d.Range...),
		Grid:         g,
		Values:       values,
		EvalErrors:   len(failures),
		EvalFailures: failures,
		GN:           GN,
	}

	var (
		V     *mat.Dense
		valid = make([]int, 0, g.N)
	)
	for i, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, i)
		}
	}
	if V, err = vandermonde.BuildFloat(b, s, g, o.workers); err != nil {
		return nil, err
	}
	Vv, fv := validRows(V, values, valid)

	switch o.precision {
	case types.RationalPrecision:
		res := solveSVD(Vv, fv)
		a.Cond, a.Rank, a.Solver = res.cond, res.rank, SolverSVD
		Vr, err := vandermonde.BuildRational(b, s, g)
		if err != nil {
			return nil, err
		}
		if rc, ok := solveRational(Vr, values, valid); ok {
			a.RationalCoeffs = rc
			a.Coeffs = make([]float64, len(rc))
			for j, c := range rc {
				a.Coeffs[j], _ = c.Float64()
			}
		} else {
			o.logger.Debug("exact normal equations singular, using float SVD coefficients")
			a.Coeffs = res.coeffs
		}
	default:
		res := solveFloat(o.solver, Vv, fv, o.logger)
		a.Coeffs, a.Cond, a.Rank, a.Solver = res.coeffs, res.cond, res.rank, res.method
	}

	a.L2Norm = discreteL2(Vv, fv, a.Coeffs, d.Dim, GN)
	o.logger.Debug("approximation built",
		"objective", d.Objective.Name, "basis", o.basis.String(), "degree", degree.String(),
		"GN", GN, "samples", g.N, "coefficients", s.Len(),
		"cond", a.Cond, "l2", a.L2Norm, "eval_errors", a.EvalErrors)
	return
}

// sample evaluates the objective at every grid point, each worker filling a
// disjoint range of values.
func sample(ctx context.Context, d problem.Domain, g *grid.Grid, workers int) (values []float64, failures []*types.EvaluationError) {
	var (
		errs = make([]error, g.N)
		pm   = utils.NewPartitionMap(utils.ParallelDegree(workers, g.N), g.N)
	)
	values = make([]float64, g.N)
	pm.Each(func(i int) {
		if err := ctx.Err(); err != nil {
			values[i], errs[i] = math.NaN(), err
			return
		}
		values[i], errs[i] = d.Objective.Eval(d.Denormalize(g.Point(i)))
	})
	for i, err := range errs {
		if err != nil {
			values[i] = math.NaN()
			failures = append(failures, &types.EvaluationError{
				Index:   i,
				X:       d.Denormalize(g.Point(i)),
				Wrapped: err,
			})
		}
	}
	return
}

func validRows(V *mat.Dense, values []float64, valid []int) (Vv *mat.Dense, fv []float64) {
	var (
		r, c = V.Dims()
	)
	fv = make([]float64, len(valid))
	for ii, i := range valid {
		fv[ii] = values[i]
	}
	if len(valid) == r {
		return V, fv
	}
	Vv = mat.NewDense(len(valid), c, nil)
	for ii, i := range valid {
		Vv.SetRow(ii, V.RawRowView(i))
	}
	return
}

// discreteL2 is sqrt(w Σ (f_i - (Vc)_i)²) over the valid samples with the
// quadrature weight w = (2/GN)^n.
func discreteL2(V *mat.Dense, f, c []float64, n, GN int) float64 {
	var (
		r, _ = V.Dims()
		fit  = mat.NewVecDense(r, nil)
		w    = math.Pow(2/float64(GN), float64(n))
		ss   float64
	)
	fit.MulVec(V, mat.NewVecDense(len(c), c))
	for i, fi := range f {
		res := fi - fit.AtVec(i)
		ss += res * res
	}
	return math.Sqrt(w * ss)
}
