// Package solver defines the contract between the critical point search and a
// polynomial system solver, with the helpers shared by the bundled solvers.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/types"
)

// System is a square polynomial system F(x) = 0 in Vars unknowns.
type System struct {
	Vars      int
	Equations []polynomial.Polynomial
}

// Result lists the real solutions found. TotalComplex counts every distinct
// finite solution, real or not, that the solver located; Paths and Failed
// describe the work done.
type Result struct {
	Real         [][]float64
	TotalComplex int
	Paths        int
	Failed       int
}

type Solver interface {
	Solve(ctx context.Context, sys System) (Result, error)
}

func (s System) Validate() error {
	if s.Vars < 1 {
		return fmt.Errorf("%w: %d unknowns", types.ErrInvalidDimension, s.Vars)
	}
	if len(s.Equations) != s.Vars {
		return fmt.Errorf("%w: %d equations in %d unknowns",
			types.ErrDimensionMismatch, len(s.Equations), s.Vars)
	}
	for i, eq := range s.Equations {
		if eq.Vars != s.Vars {
			return fmt.Errorf("%w: equation %d has %d variables, system has %d",
				types.ErrDimensionMismatch, i, eq.Vars, s.Vars)
		}
	}
	return nil
}

// Degrees returns the total degree of each equation, -1 for a zero equation.
func (s System) Degrees() (d []int) {
	d = make([]int, len(s.Equations))
	for i, eq := range s.Equations {
		d[i] = eq.Degree()
	}
	return
}

// BezoutBound is Π deg F_i, the number of paths of a total degree homotopy.
func (s System) BezoutBound() (b int) {
	b = 1
	for _, d := range s.Degrees() {
		if d < 0 {
			return 0
		}
		b *= d
	}
	return
}

// SolveWithTimeout runs s.Solve under a context derived from ctx that expires
// after timeout (no limit when timeout <= 0). A solve that overruns yields
// types.ErrSolverTimeout; any other solver error is wrapped in
// types.ErrSolverFailure.
func SolveWithTimeout(ctx context.Context, s Solver, sys System, timeout time.Duration) (res Result, err error) {
	type outcome struct {
		res Result
		err error
	}
	var (
		sctx   = ctx
		cancel = func() {}
		done   = make(chan outcome, 1)
	)
	if err = sys.Validate(); err != nil {
		return
	}
	if timeout > 0 {
		sctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()
	go func() {
		var o outcome
		defer func() {
			if r := recover(); r != nil {
				o.err = fmt.Errorf("panic: %v", r)
			}
			done <- o
		}()
		o.res, o.err = s.Solve(sctx, sys)
	}()
	select {
	case o := <-done:
		switch {
		case o.err == nil:
			return o.res, nil
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		case errors.Is(o.err, context.DeadlineExceeded) || sctx.Err() != nil:
			return Result{}, fmt.Errorf("%w after %v: %w", types.ErrSolverTimeout, timeout, o.err)
		default:
			return Result{}, fmt.Errorf("%w: %w", types.ErrSolverFailure, o.err)
		}
	case <-sctx.Done():
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w after %v", types.ErrSolverTimeout, timeout)
	}
}
