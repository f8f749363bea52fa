package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
)

// SweepEntry is the outcome of one degree of a sweep. Err is set when the
// solve stage failed; the approximation figures are still valid then.
type SweepEntry struct {
	Degree       types.Degree
	Coefficients int
	L2Norm       float64
	Cond         float64
	Points       int
	Minima       int
	BestValue    float64
	Err          error
}

// DegreeSweep runs the pipeline once per total degree. Approximation errors
// abort the sweep, solver timeouts and failures are recorded per entry.
func DegreeSweep(ctx context.Context, d problem.Domain, cfg Config, degrees []int) (entries []SweepEntry, err error) {
	if len(degrees) == 0 {
		return nil, fmt.Errorf("%w: empty degree list", types.ErrInvalidDegree)
	}
	for _, deg := range degrees {
		var (
			res *Result
			e   = SweepEntry{Degree: types.TotalDegree(deg), L2Norm: math.NaN(), Cond: math.NaN(), BestValue: math.NaN()}
		)
		cfg.Degree = e.Degree
		res, e.Err = Run(ctx, d, cfg)
		if a := res.Approximant; a != nil {
			e.Coefficients, e.L2Norm, e.Cond = len(a.Coeffs), a.L2Norm, a.Cond
		} else {
			return entries, e.Err
		}
		if e.Err != nil && !errors.Is(e.Err, types.ErrSolverTimeout) && !errors.Is(e.Err, types.ErrSolverFailure) {
			return entries, e.Err
		}
		if e.Err == nil {
			s := res.Summary()
			e.Points, e.Minima, e.BestValue = s.Points, s.Minima, s.BestValue
		}
		cfg.logger().Info("degree sweep", "degree", deg, "l2", e.L2Norm,
			"points", e.Points, "minima", e.Minima, "err", e.Err)
		entries = append(entries, e)
	}
	return
}
