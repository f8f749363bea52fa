package critical

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/globtim/autodiff"
	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
)

// ClassifyCriticalPoints computes the Hessian spectrum at each row's best
// coordinates and labels the row. The input table is not modified; the
// enriched copy and the minima among it are returned.
func ClassifyCriticalPoints(ctx context.Context, t Table, d problem.Domain, opts ...Option) (enriched, minima Table, err error) {
	var (
		c = newConfig(opts)
	)
	defer c.metrics.Stage("classify")()
	diff := c.differentiator
	if diff == nil {
		diff = autodiff.Auto(d.Objective)
	}
	enriched = make(Table, len(t))
	for i := range t {
		enriched[i] = t[i].clone()
	}
	if len(t) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(utils.ParallelDegree(c.workers, len(t)))
		for i := range enriched {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				c.classify(d, diff, &enriched[i])
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			return nil, nil, err
		}
	}
	c.metrics.Set(metrics.ClassifyFailures, enriched.Count(types.ClassificationError))
	minima = enriched.Minima()
	c.logger.Debug("critical points classified",
		"points", len(enriched), "minima", len(minima),
		"maxima", enriched.Count(types.Maximum), "saddles", enriched.Count(types.Saddle),
		"degenerate", enriched.Count(types.Degenerate))
	return
}

func (c *config) classify(d problem.Domain, diff autodiff.Differentiator, r *Record) {
	var (
		x, _ = r.Best()
		err  error
	)
	r.Eigenvalues, err = hessianSpectrum(d.Objective, diff, x)
	if err != nil {
		r.Type = types.ClassificationError
		r.Status, r.Err = StatusClassificationFailed, err
		r.HessianNorm, r.HessianCond = math.NaN(), math.NaN()
		r.Determinant, r.CriticalEigenvalue = math.NaN(), math.NaN()
		c.logger.Debug("classification failed", "x", x, "err", err)
		return
	}
	r.Type = Classify(r.Eigenvalues, c.eigTol)
	var (
		ev             = r.Eigenvalues
		minAbs, maxAbs = math.Inf(1), 0.
		det            = 1.
		fro            float64
	)
	for _, l := range ev {
		minAbs, maxAbs = math.Min(minAbs, math.Abs(l)), math.Max(maxAbs, math.Abs(l))
		det *= l
		fro += l * l
	}
	// ‖H‖_F² is the sum of squared eigenvalues for symmetric H
	r.HessianNorm = math.Sqrt(fro)
	r.Determinant = det
	r.HessianCond = math.Inf(1)
	if minAbs > c.eigTol {
		r.HessianCond = maxAbs / minAbs
	}
	switch r.Type {
	case types.Minimum:
		r.CriticalEigenvalue = ev[0]
	case types.Maximum:
		r.CriticalEigenvalue = ev[len(ev)-1]
	default:
		r.CriticalEigenvalue = math.NaN()
	}
}

// hessianSpectrum returns the eigenvalues of the Hessian at x in ascending order.
func hessianSpectrum(obj problem.Objective, diff autodiff.Differentiator, x []float64) (ev []float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ev, err = nil, fmt.Errorf("%w: panic: %v", types.ErrHessianFailure, rec)
		}
	}()
	var (
		H  *mat.SymDense
		es mat.EigenSym
	)
	if H, err = diff.Hessian(obj, x); err != nil {
		return
	}
	if !es.Factorize(H, false) {
		err = fmt.Errorf("%w: eigendecomposition did not converge at %v", types.ErrHessianFailure, x)
		return
	}
	ev = es.Values(nil)
	return
}

// Classify labels a spectrum: all above tol is a minimum, all below -tol a
// maximum, any eigenvalue within tol of zero degenerate, otherwise a saddle.
func Classify(ev []float64, tol float64) types.PointType {
	var (
		pos, neg, zero int
	)
	for _, l := range ev {
		switch {
		case math.IsNaN(l):
			return types.ClassificationError
		case l > tol:
			pos++
		case l < -tol:
			neg++
		default:
			zero++
		}
	}
	switch {
	case len(ev) == 0:
		return types.ClassificationError
	case zero > 0:
		return types.Degenerate
	case neg == 0:
		return types.Minimum
	case pos == 0:
		return types.Maximum
	}
	return types.Saddle
}
