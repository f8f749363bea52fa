package autodiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
)

// f(x,y) = exp(x) sin(y) + x^2 y
func testObjective() problem.Objective {
	return problem.NewObjective("expsin", 2, func(x []float64) float64 {
		return math.Exp(x[0])*math.Sin(x[1]) + x[0]*x[0]*x[1]
	}).WithHyperdual(func(x []hyperdual.Number) hyperdual.Number {
		return hyperdual.Add(
			hyperdual.Mul(hyperdual.Exp(x[0]), hyperdual.Sin(x[1])),
			hyperdual.Mul(hyperdual.Mul(x[0], x[0]), x[1]),
		)
	})
}

func exact(x []float64) (g []float64, H [][]float64) {
	ex, s, c := math.Exp(x[0]), math.Sin(x[1]), math.Cos(x[1])
	g = []float64{ex*s + 2*x[0]*x[1], ex*c + x[0]*x[0]}
	H = [][]float64{
		{ex*s + 2*x[1], ex*c + 2*x[0]},
		{ex*c + 2*x[0], -ex * s},
	}
	return
}

func TestDifferentiators(t *testing.T) {
	var (
		obj = testObjective()
		x   = []float64{0.3, -0.7}
	)
	gw, Hw := exact(x)
	for _, tc := range []struct {
		name string
		d    Differentiator
		tol  float64
	}{
		{"hyperdual", Hyperdual{}, 1e-13},
		{"finite-difference", FiniteDifference{}, 1e-5},
		{"finite-difference-concurrent", FiniteDifference{Concurrent: true}, 1e-5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g, err := tc.d.Gradient(obj, x)
			require.NoError(t, err)
			assert.InDeltaSlice(t, gw, g, tc.tol)
			H, err := tc.d.Hessian(obj, x)
			require.NoError(t, err)
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					assert.InDelta(t, Hw[i][j], H.At(i, j), tc.tol)
				}
			}
		})
	}
}

func TestAuto(t *testing.T) {
	assert.IsType(t, Hyperdual{}, Auto(testObjective()))
	plain := problem.NewObjective("plain", 1, func(x []float64) float64 { return x[0] })
	assert.IsType(t, FiniteDifference{}, Auto(plain))
}

func TestFailures(t *testing.T) {
	{
		obj := problem.NewObjective("log", 1, func(x []float64) float64 { return math.Log(x[0]) }).
			WithHyperdual(func(x []hyperdual.Number) hyperdual.Number { return hyperdual.Log(x[0]) })
		_, err := Hyperdual{}.Hessian(obj, []float64{-1})
		assert.ErrorIs(t, err, types.ErrHessianFailure)
		_, err = FiniteDifference{}.Hessian(obj, []float64{-1})
		assert.ErrorIs(t, err, types.ErrHessianFailure)
	}
	{
		obj := problem.NewObjective("plain", 2, func(x []float64) float64 { return x[0] * x[1] })
		_, err := Hyperdual{}.Hessian(obj, []float64{1, 2})
		assert.ErrorIs(t, err, types.ErrHessianFailure)
		_, err = FiniteDifference{}.Hessian(obj, []float64{1})
		assert.ErrorIs(t, err, types.ErrDimensionMismatch)
	}
	{
		obj := testObjective()
		obj.HD = func(x []hyperdual.Number) hyperdual.Number { panic("unsupported") }
		_, err := Hyperdual{}.Gradient(obj, []float64{1, 2})
		assert.ErrorIs(t, err, types.ErrHessianFailure)
	}
}
