package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/testfunctions"
	"github.com/notargets/globtim/types"
)

func TestSolverKind(t *testing.T) {
	sk, err := NewSolverKind(" Newton ")
	require.NoError(t, err)
	assert.Equal(t, SolverNewton, sk)
	assert.Equal(t, "homotopy", SolverHomotopy.String())
	_, err = NewSolverKind("groebner")
	assert.Error(t, err)
}

func TestRunDoubleWell(t *testing.T) {
	d, err := testfunctions.DoubleWell.Domain(2, 10)
	require.NoError(t, err)
	for _, sk := range []SolverKind{SolverHomotopy, SolverNewton} {
		cfg := DefaultConfig(4)
		cfg.Solver = sk
		cfg.ClusterTol = 1e-4
		res, err := Run(context.Background(), d, cfg)
		require.NoError(t, err, sk.String())
		assert.NotEmpty(t, res.RunID)
		assert.Equal(t, res.RunID, res.Metrics.RunID)
		assert.Len(t, res.Table, 9, sk.String())
		assert.Len(t, res.Minima, 4)
		assert.Len(t, res.Groups, 9)
		assert.Less(t, res.Residuals.MaxAbs, 1e-10)

		s := res.Summary()
		assert.Equal(t, 9, s.Points)
		assert.Equal(t, 4, s.Minima)
		assert.Equal(t, 1, s.Maxima)
		assert.Equal(t, 4, s.Saddles)
		assert.InDelta(t, 0, s.BestValue, 1e-12)
		assert.InDelta(t, 0, s.MinimaMean, 1e-12)
		assert.Contains(t, s.String(), "9 critical points: 4 minima, 1 maxima, 4 saddles")

		var names []string
		for _, st := range res.Metrics.Stages {
			names = append(names, st.Name)
		}
		assert.Equal(t, []string{"approximation", "solve", "process", "classify"}, names)
		assert.Equal(t, 121, res.Metrics.Counters[metrics.GridPoints])
		assert.Equal(t, 9, res.Metrics.Counters[metrics.InDomainSolutions])
	}
}

// A single failing sample is recorded and the run completes.
func TestRunWithFailedSample(t *testing.T) {
	obj := problem.Objective{
		Name: "punctured",
		Dim:  2,
		F: func(x []float64) (float64, error) {
			if x[0] == 0 && x[1] == 0 {
				return 0, errors.New("singular at origin")
			}
			return x[0]*x[0] + x[1]*x[1], nil
		},
	}
	d, err := problem.NewDomain(obj, []float64{0, 0}, []float64{1}, 8)
	require.NoError(t, err)
	res, err := Run(context.Background(), d, DefaultConfig(4))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Approximant.EvalErrors)
	assert.Equal(t, 1, res.Metrics.Counters[metrics.EvalErrors])
	assert.Equal(t, 80, res.Residuals.N)
	require.Len(t, res.Table, 1)
	assert.InDeltaSlice(t, []float64{0, 0}, res.Table[0].X, 1e-8)
}

// A constant offset moves no critical point.
func TestRunConstantOffset(t *testing.T) {
	for _, off := range []float64{0, 1e10, 1e11} {
		obj := problem.NewObjective("offset sphere", 2, func(x []float64) float64 {
			return off + x[0]*x[0] + x[1]*x[1]
		}).WithHyperdual(func(x []hyperdual.Number) hyperdual.Number {
			return hyperdual.Add(hyperdual.Number{Real: off},
				hyperdual.Add(hyperdual.Mul(x[0], x[0]), hyperdual.Mul(x[1], x[1])))
		})
		d, err := problem.NewDomain(obj, []float64{0, 0}, []float64{1}, 10)
		require.NoError(t, err)
		res, err := Run(context.Background(), d, DefaultConfig(4))
		require.NoError(t, err)
		assert.True(t, res.Solutions.Isolated, "offset %g", off)
		require.Len(t, res.Table, 1, "offset %g", off)
		require.Len(t, res.Minima, 1, "offset %g", off)
		assert.InDeltaSlice(t, []float64{0, 0}, res.Minima[0].X, 1e-3)
	}
}

func TestDegreeSweep(t *testing.T) {
	d, err := testfunctions.SixHumpCamel.Domain(2, 12)
	require.NoError(t, err)
	entries, err := DegreeSweep(context.Background(), d, DefaultConfig(0), []int{2, 3, 4, 6})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for i, e := range entries {
		require.NoError(t, e.Err)
		if i > 0 {
			assert.LessOrEqual(t, e.L2Norm, entries[i-1].L2Norm+1e-12, "degree %s", e.Degree)
			assert.Greater(t, e.Coefficients, entries[i-1].Coefficients)
		}
	}
	last := entries[3]
	assert.Less(t, last.L2Norm, 1e-9)
	assert.Equal(t, 28, last.Coefficients)
	assert.GreaterOrEqual(t, last.Minima, 2)
	assert.InDelta(t, -1.0316284534898774, last.BestValue, 1e-8)

	_, err = DegreeSweep(context.Background(), d, DefaultConfig(0), nil)
	assert.ErrorIs(t, err, types.ErrInvalidDegree)
	_, err = DegreeSweep(context.Background(), d, DefaultConfig(0), []int{2, -1})
	assert.ErrorIs(t, err, types.ErrInvalidDegree)
}

func TestRunErrors(t *testing.T) {
	d, err := testfunctions.Sphere.Domain(2, 6)
	require.NoError(t, err)
	cfg := DefaultConfig(2)
	cfg.Density = 2
	res, err := Run(context.Background(), d, cfg)
	assert.ErrorIs(t, err, types.ErrInvalidGrid)
	assert.Nil(t, res.Approximant)

	cfg = DefaultConfig(2)
	cfg.Timeout = time.Nanosecond
	res, err = Run(context.Background(), d, cfg)
	if err != nil {
		assert.ErrorIs(t, err, types.ErrSolverTimeout)
		assert.NotNil(t, res.Approximant)
	}

	s := (&Result{}).Summary()
	assert.True(t, math.IsNaN(s.BestValue))
	assert.NotContains(t, s.String(), "Lowest")
}
