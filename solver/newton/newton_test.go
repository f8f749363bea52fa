package newton

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/solver"
)

func term(c float64, exp ...int) polynomial.Term { return polynomial.Term{Exp: exp, Coeff: c} }

func TestDoubleWell(t *testing.T) {
	sys := solver.System{Vars: 2, Equations: []polynomial.Polynomial{
		polynomial.New(2, term(4, 3, 0), term(-1, 1, 0)),
		polynomial.New(2, term(4, 0, 3), term(-1, 0, 1)),
	}}
	res, err := New().Solve(context.Background(), sys)
	require.NoError(t, err)
	require.Len(t, res.Real, 9)
	assert.Equal(t, 9, res.TotalComplex)
	assert.Equal(t, 49, res.Paths)
	for _, x := range res.Real {
		F := sys.Eval(x)
		assert.InDelta(t, 0, F[0], 1e-13)
		assert.InDelta(t, 0, F[1], 1e-13)
	}
}

func TestLinear(t *testing.T) {
	// 2x - 1 = 0 in one variable
	sys := solver.System{Vars: 1, Equations: []polynomial.Polynomial{
		polynomial.New(1, term(2, 1), term(-1, 0)),
	}}
	s := New()
	s.PerDim = 4
	res, err := s.Solve(context.Background(), sys)
	require.NoError(t, err)
	require.Len(t, res.Real, 1)
	assert.InDelta(t, 0.5, res.Real[0][0], 1e-12)
	assert.Equal(t, 4, res.Paths)
	assert.Equal(t, 0, res.Failed)
}

func TestNoRealRoots(t *testing.T) {
	sys := solver.System{Vars: 1, Equations: []polynomial.Polynomial{
		polynomial.New(1, term(1, 2), term(1, 0)),
	}}
	res, err := New().Solve(context.Background(), sys)
	require.NoError(t, err)
	assert.Empty(t, res.Real)
	assert.Equal(t, res.Paths, res.Failed)

	s := New()
	s.Lower, s.Upper = 1, 1
	_, err = s.Solve(context.Background(), sys)
	assert.Error(t, err)
}
