package critical

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/notargets/globtim/autodiff"
	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
)

// ProcessCriticalPoints maps normalized roots into the domain, evaluates the
// objective there and optionally refines each point locally. Per point
// failures are recorded on the row; rows are never dropped.
func ProcessCriticalPoints(ctx context.Context, points [][]float64, d problem.Domain, opts ...Option) (t Table, err error) {
	var (
		c = newConfig(opts)
	)
	defer c.metrics.Stage("process")()
	for i, p := range points {
		if len(p) != d.Dim {
			err = fmt.Errorf("%w: point %d has %d coordinates, domain dimension %d",
				types.ErrDimensionMismatch, i, len(p), d.Dim)
			return
		}
	}
	diff := c.differentiator
	if diff == nil {
		diff = autodiff.Auto(d.Objective)
	}
	t = make(Table, len(points))
	if len(points) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.ParallelDegree(c.workers, len(points)))
	for i := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t[i] = c.process(d, diff, points[i])
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	var failures int
	for i := range t {
		if c.refine && !t[i].Converged {
			failures++
		}
	}
	c.metrics.Set(metrics.RefineFailures, failures)
	return
}

func (c *config) process(d problem.Domain, diff autodiff.Differentiator, p []float64) (r Record) {
	r = Record{
		Normalized:         append([]float64(nil), p...),
		X:                  d.Denormalize(p),
		RefinedValue:       math.NaN(),
		GradNorm:           math.NaN(),
		HessianNorm:        math.NaN(),
		HessianCond:        math.NaN(),
		Determinant:        math.NaN(),
		CriticalEigenvalue: math.NaN(),
		Status:             StatusOK,
	}
	if r.Value, r.Err = d.Objective.Eval(r.X); r.Err != nil {
		r.Status = StatusEvaluationFailed
		c.logger.Warn("objective evaluation failed at critical point", "x", r.X, "err", r.Err)
		return
	}
	if !c.refine {
		if g, err := diff.Gradient(d.Objective, r.X); err == nil {
			r.GradNorm = floats.Norm(g, math.Inf(1))
		}
		return
	}
	var err error
	switch c.refineMethod {
	case RefineNewton:
		err = c.refineNewton(d, diff, &r)
	default:
		err = c.refineBFGS(d, diff, &r)
	}
	if err != nil {
		r.Refined, r.RefinedValue, r.Converged = nil, math.NaN(), false
		r.Close, r.RefinedInDomain = false, false
		r.Status, r.Err = StatusRefinementFailed, err
		c.logger.Debug("refinement failed, keeping solver point", "x", r.X, "err", err)
	}
	return
}

func recoverTo(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("panic during refinement: %v", rec)
	}
}

func (c *config) refineBFGS(d problem.Domain, diff autodiff.Differentiator, r *Record) (err error) {
	defer recoverTo(&err)
	var (
		obj  = d.Objective
		prob = optimize.Problem{
			Func: obj.Func(),
			Grad: func(grad, x []float64) {
				g, gerr := diff.Gradient(obj, x)
				if gerr != nil {
					for i := range grad {
						grad[i] = math.NaN()
					}
					return
				}
				copy(grad, g)
			},
		}
		settings = &optimize.Settings{
			GradientThreshold: c.gradTol,
			MajorIterations:   c.maxIterations,
		}
		result *optimize.Result
	)
	result, err = optimize.Minimize(prob, r.X, settings, &optimize.BFGS{})
	if result == nil {
		if err == nil {
			err = fmt.Errorf("minimizer returned no result")
		}
		return
	}
	if !utils.IsFinite(result.X) || math.IsNaN(result.F) {
		return fmt.Errorf("minimizer left the finite region: status %v, err %v", result.Status, err)
	}
	// iteration limits and similar statuses are reported through Converged
	err = nil
	r.RefineSteps = result.MajorIterations
	return c.finishRefinement(d, diff, r, result.X)
}

// refineNewton iterates x ← x - H⁻¹∇f, converging to the nearest stationary
// point whatever its type.
func (c *config) refineNewton(d problem.Domain, diff autodiff.Differentiator, r *Record) (err error) {
	defer recoverTo(&err)
	var (
		obj = d.Objective
		x   = append([]float64(nil), r.X...)
		g   []float64
		H   *mat.SymDense
	)
	for it := 0; it < c.maxIterations; it++ {
		if g, err = diff.Gradient(obj, x); err != nil {
			return
		}
		if floats.Norm(g, math.Inf(1)) < c.gradTol {
			break
		}
		if H, err = diff.Hessian(obj, x); err != nil {
			return
		}
		var dx mat.VecDense
		if err = dx.SolveVec(H, mat.NewVecDense(len(g), g)); err != nil {
			return fmt.Errorf("singular hessian during newton refinement: %w", err)
		}
		floats.Sub(x, dx.RawVector().Data)
		r.RefineSteps++
		if !utils.IsFinite(x) {
			return fmt.Errorf("newton refinement diverged")
		}
	}
	return c.finishRefinement(d, diff, r, x)
}

func (c *config) finishRefinement(d problem.Domain, diff autodiff.Differentiator, r *Record, x []float64) (err error) {
	var (
		g []float64
	)
	r.Refined = append([]float64(nil), x...)
	if r.RefinedValue, err = d.Objective.Eval(x); err != nil {
		return
	}
	if g, err = diff.Gradient(d.Objective, x); err != nil {
		return
	}
	r.GradNorm = floats.Norm(g, math.Inf(1))
	p := d.Normalize(x)
	r.Close = floats.Distance(p, r.Normalized, math.Inf(1)) <= c.closeTol
	// a stationary point reached far from the root belongs to another row
	r.Converged = r.GradNorm < c.gradTol && r.Close
	r.RefinedInDomain = inBox(p, 1+c.domainTol)
	return
}
