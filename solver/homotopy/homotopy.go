// Package homotopy solves square polynomial systems by total degree homotopy
// continuation with the gamma trick.
//
// The start system G_i(x) = x_i^{d_i} - 1 has Π d_i known roots. Each is
// tracked along H(x,t) = (1-t)·γ·G(x) + t·F(x) from t = 0 to t = 1 with an
// Euler predictor and a Newton corrector, then sharpened by Newton on F. The
// random complex γ keeps every path regular for t < 1 with probability one; it
// is drawn from a seeded generator so runs are reproducible.
package homotopy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/solver"
	"github.com/notargets/globtim/utils"
)

const (
	initialStep    = 0.01
	maxStep        = 0.1
	minStep        = 1e-10
	correctorIters = 3
	correctorTol   = 1e-9
	endgameIters   = 20
	endgameTol     = 1e-11
	divergence     = 1e7
	dedupTol       = 1e-6
	polishIters    = 10
	polishTol      = 1e-10
)

type Solver struct {
	Seed     uint64 // γ seed; zero selects 1
	Workers  int    // concurrent paths; zero means NumCPU
	MaxSteps int    // per path; zero means 20000
	ImagTol  float64
	Logger   *slog.Logger
}

func New() *Solver {
	return &Solver{
		Seed:     1,
		MaxSteps: 20000,
		ImagTol:  1e-7,
	}
}

type endpoint struct {
	x     []complex128
	ok    bool
	steps int
}

type tracker struct {
	sys   solver.System
	J     [][]polynomial.Polynomial
	degs  []int
	gamma complex128
	scale float64
}

func (s *Solver) Solve(ctx context.Context, sys solver.System) (res solver.Result, err error) {
	if err = sys.Validate(); err != nil {
		return
	}
	var (
		logger   = s.Logger
		maxSteps = s.MaxSteps
		imagTol  = s.ImagTol
		tr       = tracker{
			sys:   sys,
			J:     sys.Jacobian(),
			degs:  sys.Degrees(),
			gamma: s.gamma(),
			scale: sys.Scale(),
		}
	)
	if logger == nil {
		logger = slog.Default()
	}
	if maxSteps <= 0 {
		maxSteps = 20000
	}
	if imagTol <= 0 {
		imagTol = 1e-7
	}
	for i, d := range tr.degs {
		switch {
		case d < 0:
			err = fmt.Errorf("equation %d is identically zero, solutions are not isolated", i)
			return
		case d == 0:
			// a nonzero constant equation has no solutions
			return
		}
	}

	starts := startPoints(tr.degs)
	ends := make([]endpoint, len(starts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.ParallelDegree(s.Workers, len(starts)))
	for p := range starts {
		g.Go(func() error {
			ends[p] = tr.track(gctx, starts[p], maxSteps)
			return gctx.Err()
		})
	}
	if err = g.Wait(); err != nil {
		return
	}

	res.Paths = len(starts)
	var (
		finite [][]complex128
	)
	for _, e := range ends {
		if !e.ok {
			res.Failed++
			continue
		}
		dup := false
		for _, f := range finite {
			if maxAbsDiff(e.x, f) <= dedupTol {
				dup = true
				break
			}
		}
		if !dup {
			finite = append(finite, e.x)
		}
	}
	res.TotalComplex = len(finite)

	var (
		reals [][]float64
	)
	for _, z := range finite {
		var (
			re      = make([]float64, len(z))
			imagMax float64
		)
		for k, v := range z {
			re[k] = real(v)
			imagMax = math.Max(imagMax, math.Abs(imag(v)))
		}
		if imagMax > imagTol*(1+solver.NormComplex(z)) {
			continue
		}
		if polished, ok := solver.Polish(sys, tr.J, re, polishIters, polishTol); ok {
			re = polished
		}
		reals = append(reals, re)
	}
	res.Real = solver.Dedup(reals, dedupTol)
	logger.Debug("homotopy continuation finished",
		"paths", res.Paths, "failed", res.Failed,
		"finite", res.TotalComplex, "real", len(res.Real))
	return
}

func (s *Solver) gamma() complex128 {
	seed := s.Seed
	if seed == 0 {
		seed = 1
	}
	r := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	return cmplx.Rect(1, 2*math.Pi*r.Float64())
}

// startPoints enumerates every combination of d_i-th roots of unity.
func startPoints(degs []int) (starts [][]complex128) {
	var (
		n     = len(degs)
		total = 1
		idx   = make([]int, n)
	)
	for _, d := range degs {
		total *= d
	}
	starts = make([][]complex128, total)
	for p := range starts {
		z := make([]complex128, n)
		for i := range z {
			z[i] = cmplx.Rect(1, 2*math.Pi*float64(idx[i])/float64(degs[i]))
		}
		starts[p] = z
		for i := n - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < degs[i] {
				break
			}
			idx[i] = 0
		}
	}
	return
}

// H returns H(x,t), Hx the Jacobian in x and Ht = ∂H/∂t.
func (tr *tracker) eval(x []complex128, t float64) (H []complex128, Hx [][]complex128, Ht []complex128) {
	var (
		n  = len(x)
		F  = tr.sys.EvalComplex(x)
		JF = solver.EvalJacobianComplex(tr.J, x)
		s  = complex(1-t, 0) * tr.gamma
		tc = complex(t, 0)
	)
	H, Ht = make([]complex128, n), make([]complex128, n)
	Hx = make([][]complex128, n)
	for i := 0; i < n; i++ {
		d := tr.degs[i]
		xd1 := complex(1, 0)
		for k := 1; k < d; k++ {
			xd1 *= x[i]
		}
		G := xd1*x[i] - 1
		H[i] = s*G + tc*F[i]
		Ht[i] = F[i] - tr.gamma*G
		Hx[i] = make([]complex128, n)
		for k := 0; k < n; k++ {
			Hx[i][k] = tc * JF[i][k]
		}
		Hx[i][i] += s * complex(float64(d), 0) * xd1
	}
	return
}

func (tr *tracker) track(ctx context.Context, x0 []complex128, maxSteps int) (e endpoint) {
	var (
		x     = append([]complex128(nil), x0...)
		t     float64
		dt    = initialStep
		succ  int
		steps int
	)
	for t < 1 {
		if steps >= maxSteps || ctx.Err() != nil {
			return
		}
		steps++
		tn := t + dt
		if tn >= 1 {
			tn, dt = 1, 1-t
		}
		_, Hx, Ht := tr.eval(x, t)
		for i := range Ht {
			Ht[i] = -Ht[i]
		}
		v, err := solver.SolveComplex(Hx, Ht)
		if err == nil {
			xp := make([]complex128, len(x))
			for i := range x {
				xp[i] = x[i] + complex(dt, 0)*v[i]
			}
			if xc, ok := tr.correct(xp, tn); ok {
				x, t = xc, tn
				if solver.NormComplex(x) > divergence {
					return
				}
				if succ++; succ >= 3 {
					dt, succ = math.Min(2*dt, maxStep), 0
				}
				continue
			}
		}
		dt, succ = dt/2, 0
		if dt < minStep {
			return
		}
	}
	e.x, e.ok = tr.endgame(x)
	e.steps = steps
	return
}

func (tr *tracker) correct(x []complex128, t float64) (xc []complex128, ok bool) {
	xc = append([]complex128(nil), x...)
	for it := 0; it < correctorIters; it++ {
		H, Hx, _ := tr.eval(xc, t)
		dx, err := solver.SolveComplex(Hx, H)
		if err != nil {
			return nil, false
		}
		for i := range xc {
			xc[i] -= dx[i]
		}
		step, size := solver.NormComplex(dx), 1+solver.NormComplex(xc)
		if it == 0 && step > 0.1*size {
			return nil, false
		}
		if step <= correctorTol*size {
			return xc, true
		}
	}
	return nil, false
}

// endgame runs Newton on F at t = 1.
func (tr *tracker) endgame(x []complex128) ([]complex128, bool) {
	var (
		xc = append([]complex128(nil), x...)
	)
	for it := 0; it < endgameIters; it++ {
		F := tr.sys.EvalComplex(xc)
		if solver.NormComplex(F) <= endgameTol*tr.scale {
			return xc, true
		}
		dx, err := solver.SolveComplex(solver.EvalJacobianComplex(tr.J, xc), F)
		if err != nil {
			break
		}
		for i := range xc {
			xc[i] -= dx[i]
		}
		if solver.NormComplex(dx) <= endgameTol*(1+solver.NormComplex(xc)) {
			return xc, true
		}
	}
	// multiple roots converge slowly; accept small residuals
	F := tr.sys.EvalComplex(xc)
	return xc, solver.NormComplex(F) <= 1e-8*tr.scale && solver.NormComplex(xc) < divergence
}

func maxAbsDiff(a, b []complex128) (d float64) {
	for i := range a {
		d = math.Max(d, cmplx.Abs(a[i]-b[i]))
	}
	return
}
