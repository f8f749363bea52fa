package approx

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
)

// cubic has total degree 3 in any dimension.
func cubic(x []float64) (f float64) {
	f = 1
	for _, xi := range x {
		f += xi - 0.25*xi*xi
	}
	return f + 0.5*x[0]*x[0]*x[len(x)-1]
}

func newDomain(t *testing.T, f func([]float64) float64, n, GN int, center, rng float64) problem.Domain {
	c := make([]float64, n)
	for i := range c {
		c[i] = center
	}
	d, err := problem.NewDomain(problem.NewObjective("test", n, f), c, []float64{rng}, GN)
	require.NoError(t, err)
	return d
}

func TestExactnessOnPolynomials(t *testing.T) {
	ctx := context.Background()
	for n := 1; n <= 4; n++ {
		for _, bt := range []types.BasisType{types.Chebyshev, types.Legendre} {
			d := newDomain(t, cubic, n, 5, 0.5, 2)
			a, err := Constructor(ctx, d, types.TotalDegree(3), WithBasis(bt))
			require.NoError(t, err)
			assert.Less(t, a.L2Norm, 1e-10, "n=%d %v", n, bt)
			assert.Equal(t, 0, a.EvalErrors)
			assert.False(t, math.IsInf(a.Cond, 1))
			x := make([]float64, n)
			for k := range x {
				x[k] = 0.5 + 1.7*math.Sin(float64(k+1))
			}
			assert.InDelta(t, cubic(x), a.Eval(x), 1e-9)
		}
	}
}

func TestRationalPrecision(t *testing.T) {
	ctx := context.Background()
	for n := 1; n <= 2; n++ {
		d := newDomain(t, cubic, n, 4, 0, 1)
		af, err := Constructor(ctx, d, types.TotalDegree(3))
		require.NoError(t, err)
		ar, err := Constructor(ctx, d, types.TotalDegree(3), WithPrecision(types.RationalPrecision))
		require.NoError(t, err)
		require.Len(t, ar.RationalCoeffs, len(ar.Coeffs))
		assert.Equal(t, types.RationalPrecision, ar.Precision)
		assert.InDeltaSlice(t, af.Coeffs, ar.Coeffs, 1e-12)
		assert.Less(t, ar.L2Norm, 1e-12)
		assert.InDelta(t, af.Cond, ar.Cond, 1e-9*af.Cond)
	}
	{ // exact coefficients of x^2 = (T_0 + T_2)/2
		d := newDomain(t, func(x []float64) float64 { return x[0] * x[0] }, 1, 4, 0, 1)
		a, err := Constructor(ctx, d, types.TotalDegree(2),
			WithPrecision(types.RationalPrecision), WithNodes(types.NodeUniform))
		require.NoError(t, err)
		assert.Equal(t, "1/2", a.RationalCoeffs[0].RatString())
		assert.Equal(t, "0", a.RationalCoeffs[1].RatString())
		assert.Equal(t, "1/2", a.RationalCoeffs[2].RatString())
	}
}

func TestLinearSolvers(t *testing.T) {
	var (
		ctx = context.Background()
		f   = func(x []float64) float64 { return math.Exp(x[0]) * math.Cos(x[1]) }
		d   = newDomain(t, f, 2, 12, 0, 1)
	)
	ref, err := Constructor(ctx, d, types.TotalDegree(6))
	require.NoError(t, err)
	assert.Equal(t, SolverSVD, ref.Solver)
	for _, ls := range []LinearSolver{SolverQR, SolverNormalEquations} {
		a, err := Constructor(ctx, d, types.TotalDegree(6), WithLinearSolver(ls))
		require.NoError(t, err)
		assert.Equal(t, ls, a.Solver)
		assert.InDeltaSlice(t, ref.Coeffs, a.Coeffs, 1e-8)
		assert.InDelta(t, ref.L2Norm, a.L2Norm, 1e-8)
	}
	ls, err := NewLinearSolver("QR")
	require.NoError(t, err)
	assert.Equal(t, SolverQR, ls)
	_, err = NewLinearSolver("lu")
	assert.Error(t, err)
}

func TestDegreeZero(t *testing.T) {
	var (
		f = func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] }
		d = newDomain(t, f, 2, 4, 0, 1)
	)
	a, err := Constructor(context.Background(), d, types.TotalDegree(0))
	require.NoError(t, err)
	require.Len(t, a.Coeffs, 1)
	var mean float64
	for _, v := range a.Values {
		mean += v
	}
	mean /= float64(len(a.Values))
	assert.InDelta(t, mean, a.Coeffs[0], 1e-12)
	var ss float64
	for _, v := range a.Values {
		ss += (v - mean) * (v - mean)
	}
	assert.InDelta(t, math.Sqrt(0.25*ss), a.L2Norm, 1e-12)
	assert.InDelta(t, 1., a.Cond, 1e-12)
}

func TestFailedSamples(t *testing.T) {
	var (
		ctx   = context.Background()
		cause = errors.New("simulation diverged")
	)
	{ // one failing sample at the origin
		obj := problem.Objective{Name: "holed", Dim: 2, F: func(x []float64) (float64, error) {
			if x[0] == 0 && x[1] == 0 {
				return 0, cause
			}
			return x[0]*x[0] + x[1]*x[1], nil
		}}
		d, err := problem.NewDomain(obj, []float64{0, 0}, []float64{1}, 4)
		require.NoError(t, err)
		rec := metrics.New()
		a, err := Constructor(ctx, d, types.TotalDegree(4), WithMetrics(rec))
		require.NoError(t, err)
		assert.Equal(t, 1, a.EvalErrors)
		require.Len(t, a.EvalFailures, 1)
		assert.Equal(t, 12, a.EvalFailures[0].Index)
		assert.ErrorIs(t, a.EvalFailures[0], cause)
		assert.True(t, math.IsNaN(a.Values[12]))
		assert.Less(t, a.L2Norm, 1e-10)
		assert.InDelta(t, 0, a.Eval([]float64{0, 0}), 1e-10)
		assert.Equal(t, 1, rec.Counter(metrics.EvalErrors))
		assert.Equal(t, 25, rec.Counter(metrics.GridPoints))

		r := a.Residuals()
		assert.True(t, math.IsNaN(r[12]))
		rs, err := a.ResidualStats()
		require.NoError(t, err)
		assert.Equal(t, 24, rs.N)
		assert.Less(t, rs.MaxAbs, 1e-10)
	}
	{ // panics are contained too
		obj := problem.Objective{Name: "panicky", Dim: 1, F: func(x []float64) (float64, error) {
			if x[0] > 0.9 {
				panic("out of range")
			}
			return x[0], nil
		}}
		d, err := problem.NewDomain(obj, []float64{0}, []float64{1}, 6)
		require.NoError(t, err)
		a, err := Constructor(ctx, d, types.TotalDegree(1))
		require.NoError(t, err)
		assert.Equal(t, 1, a.EvalErrors)
		assert.InDeltaSlice(t, []float64{0, 1}, a.Coeffs, 1e-12)
	}
	{ // every sample fails
		obj := problem.Objective{Name: "broken", Dim: 1, F: func(x []float64) (float64, error) {
			return 0, cause
		}}
		d, err := problem.NewDomain(obj, []float64{0}, []float64{1}, 3)
		require.NoError(t, err)
		_, err = Constructor(ctx, d, types.TotalDegree(2))
		assert.ErrorIs(t, err, types.ErrAllEvaluationsFailed)
		assert.ErrorIs(t, err, types.ErrObjectiveEvaluation)
		assert.ErrorIs(t, err, cause)
	}
}

func TestOptionsAndErrors(t *testing.T) {
	var (
		ctx = context.Background()
		d   = newDomain(t, cubic, 2, 10, 0, 1)
	)
	a, err := Constructor(ctx, d, types.TotalDegree(3), WithDensityReduction(0.5), WithWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, 5, a.GN)
	assert.Equal(t, 36, a.Grid.N)

	a, err = Constructor(ctx, d, types.TotalDegree(3), WithDensityReduction(0.01))
	require.NoError(t, err)
	assert.Equal(t, 1, a.GN)

	_, err = Constructor(ctx, d, types.TotalDegree(3), WithDensityReduction(0))
	assert.ErrorIs(t, err, types.ErrInvalidGrid)
	_, err = Constructor(ctx, d, types.TotalDegree(3), WithDensityReduction(1.5))
	assert.ErrorIs(t, err, types.ErrInvalidGrid)
	_, err = Constructor(ctx, d, types.TotalDegree(-2))
	assert.ErrorIs(t, err, types.ErrInvalidDegree)
	_, err = Constructor(ctx, d, types.AnisotropicDegree(1, 2, 3))
	assert.ErrorIs(t, err, types.ErrInvalidDegree)

	// anisotropic degree with uniform nodes
	a, err = Constructor(ctx, d, types.AnisotropicDegree(3, 2), WithBasis(types.Legendre), WithNodes(types.NodeUniform))
	require.NoError(t, err)
	assert.Equal(t, 12, len(a.Coeffs))

	// under-determined fits are diagnostic, not errors
	d1 := newDomain(t, func(x []float64) float64 { return math.Sin(x[0]) }, 1, 2, 0, 1)
	a, err = Constructor(ctx, d1, types.TotalDegree(6))
	require.NoError(t, err)
	assert.True(t, math.IsInf(a.Cond, 1))
	assert.Less(t, a.Rank, 7)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Constructor(cctx, d, types.TotalDegree(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonomialForm(t *testing.T) {
	d := newDomain(t, cubic, 2, 6, 0, 1)
	a, err := Constructor(context.Background(), d, types.TotalDegree(3), WithBasis(types.Legendre))
	require.NoError(t, err)
	p, err := a.Monomial()
	require.NoError(t, err)
	for _, x := range [][]float64{{0, 0}, {0.5, -0.5}, {-0.9, 0.7}} {
		assert.InDelta(t, cubic(x), p.Eval(x), 1e-10)
	}
	assert.Equal(t, 3, p.Degree())
}
