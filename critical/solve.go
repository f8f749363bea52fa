package critical

import (
	"context"
	"math"

	"github.com/notargets/globtim/approx"
	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/solver"
)

// Solutions are the real critical points of an approximant in normalized
// coordinates. Isolated is false when the gradient system has an identically
// zero component, in which case the critical set is not a finite point set
// and Points is empty.
type Solutions struct {
	Points       [][]float64
	Isolated     bool
	Discarded    int
	TotalComplex int
	BezoutBound  int
	Paths        int
	Failed       int
	Gradient     []polynomial.Polynomial
}

// SolveCriticalPoints converts a to monomial form, differentiates it and hands
// the gradient system to s under the configured timeout. Real roots inside
// [-1-ε, 1+ε]^n are clamped into [-1,1]^n and kept, the rest are counted as
// discarded.
func SolveCriticalPoints(ctx context.Context, a *approx.Approximant, s solver.Solver, opts ...Option) (sol Solutions, err error) {
	var (
		c = newConfig(opts)
		p polynomial.Polynomial
	)
	defer c.metrics.Stage("solve")()
	if p, err = a.Monomial(); err != nil {
		return
	}
	sol.Gradient = p.Gradient()

	// each component against its own largest coefficient so that the
	// constant term of p never sets the cutoff
	var zero int
	for i, g := range sol.Gradient {
		g = g.Truncate(c.coeffTol)
		sol.Gradient[i] = g
		if g.IsZero() {
			zero++
		}
	}
	if zero > 0 {
		c.logger.Debug("gradient has identically zero components, no isolated critical points",
			"zero_components", zero, "dimension", len(sol.Gradient))
		return
	}

	sys := solver.System{Vars: a.Dim(), Equations: sol.Gradient}
	sol.BezoutBound = sys.BezoutBound()
	res, err := solver.SolveWithTimeout(ctx, s, sys, c.timeout)
	if err != nil {
		return
	}
	sol.Isolated = true
	sol.TotalComplex, sol.Paths, sol.Failed = res.TotalComplex, res.Paths, res.Failed
	for _, x := range res.Real {
		if !inBox(x, 1+c.domainTol) {
			sol.Discarded++
			continue
		}
		pt := make([]float64, len(x))
		for k, v := range x {
			pt[k] = math.Max(-1, math.Min(1, v))
		}
		sol.Points = append(sol.Points, pt)
	}
	c.metrics.Set(metrics.SolverPaths, res.Paths)
	c.metrics.Set(metrics.SolverFailedPaths, res.Failed)
	c.metrics.Set(metrics.RealSolutions, len(res.Real))
	c.metrics.Set(metrics.InDomainSolutions, len(sol.Points))
	c.metrics.Set(metrics.DiscardedSolutions, sol.Discarded)
	c.logger.Debug("critical points solved",
		"bezout", sol.BezoutBound, "total_complex", sol.TotalComplex,
		"real", len(res.Real), "in_domain", len(sol.Points), "discarded", sol.Discarded)
	return
}

func inBox(x []float64, half float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.Abs(v) > half {
			return false
		}
	}
	return true
}
