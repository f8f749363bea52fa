// Package newton finds the real roots of a polynomial system inside a box by
// damped Newton iterations started from a regular lattice of seeds. It only
// sees real roots, and only those whose basin contains a seed.
package newton

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/globtim/basis"
	"github.com/notargets/globtim/grid"
	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/solver"
	"github.com/notargets/globtim/utils"
)

const (
	residualTol = 1e-10
	polishIters = 5
	dedupTol    = 1e-6
	minDamping  = 1e-4
	escape      = 1e6
	maxSeeds    = 50000
)

type Solver struct {
	Lower, Upper float64 // seed box in every dimension
	PerDim       int     // seeds per dimension; zero derives it from the degrees
	MaxIter      int
	Workers      int
	Logger       *slog.Logger
}

func New() *Solver {
	return &Solver{
		Lower:   -1.1,
		Upper:   1.1,
		MaxIter: 50,
	}
}

type root struct {
	x  []float64
	ok bool
}

func (s *Solver) Solve(ctx context.Context, sys solver.System) (res solver.Result, err error) {
	if err = sys.Validate(); err != nil {
		return
	}
	var (
		logger  = s.Logger
		maxIter = s.MaxIter
		degs    = sys.Degrees()
		maxDeg  int
		J       = sys.Jacobian()
		scale   = sys.Scale()
		seeds   *grid.Grid
	)
	if logger == nil {
		logger = slog.Default()
	}
	if maxIter <= 0 {
		maxIter = 50
	}
	if !(s.Upper > s.Lower) {
		err = fmt.Errorf("empty seed box [%v,%v]", s.Lower, s.Upper)
		return
	}
	for i, d := range degs {
		switch {
		case d < 0:
			err = fmt.Errorf("equation %d is identically zero, solutions are not isolated", i)
			return
		case d == 0:
			return
		}
		maxDeg = max(maxDeg, d)
	}
	if seeds, err = s.lattice(sys.Vars, maxDeg); err != nil {
		return
	}

	roots := make([]root, seeds.N)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.ParallelDegree(s.Workers, seeds.N))
	for i := 0; i < seeds.N; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x, ok := damped(sys, J, seeds.Point(i), maxIter, scale)
			if ok {
				x, _ = solver.Polish(sys, J, x, polishIters, residualTol)
			}
			roots[i].x, roots[i].ok = x, ok
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}

	var (
		found [][]float64
	)
	for _, r := range roots {
		if r.ok {
			found = append(found, r.x)
		} else {
			res.Failed++
		}
	}
	res.Paths = seeds.N
	res.Real = solver.Dedup(found, dedupTol)
	res.TotalComplex = len(res.Real)
	logger.Debug("lattice newton finished",
		"seeds", res.Paths, "failed", res.Failed, "real", len(res.Real))
	return
}

// lattice places PerDim equispaced seeds per dimension over the box, reduced
// until the lattice holds at most maxSeeds points.
func (s *Solver) lattice(n, maxDeg int) (*grid.Grid, error) {
	perDim := s.PerDim
	if perDim <= 0 {
		perDim = min(max(2*maxDeg+1, 5), 21)
	}
	for perDim > 2 {
		total := 1
		for k := 0; k < n && total <= maxSeeds; k++ {
			total *= perDim
		}
		if total <= maxSeeds {
			break
		}
		perDim--
	}
	nodes := basis.Equispaced(max(perDim-1, 1))
	for i := range nodes {
		nodes[i] = s.Lower + 0.5*(nodes[i]+1)*(s.Upper-s.Lower)
	}
	return grid.NewGrid(n, nodes)
}

// damped runs Newton with step halving on ‖F‖ from x0.
func damped(sys solver.System, J [][]polynomial.Polynomial, x0 []float64, maxIter int, scale float64) ([]float64, bool) {
	var (
		x  = append([]float64(nil), x0...)
		F  = sys.Eval(x)
		nF = floats.Norm(F, 2)
		xn = make([]float64, len(x))
	)
	for it := 0; it < maxIter; it++ {
		if nF <= residualTol*scale {
			return x, true
		}
		dx, err := solver.SolveReal(solver.EvalJacobian(J, x), F)
		if err != nil {
			return x, false
		}
		var (
			lambda = 1.
			Fn     []float64
			nFn    float64
		)
		for {
			floats.AddScaledTo(xn, x, -lambda, dx)
			Fn = sys.Eval(xn)
			nFn = floats.Norm(Fn, 2)
			if nFn < nF || lambda < minDamping {
				break
			}
			lambda /= 2
		}
		copy(x, xn)
		F, nF = Fn, nFn
		if floats.Norm(x, 2) > escape || !utils.IsFinite(x) {
			return x, false
		}
	}
	return x, nF <= residualTol*scale
}
