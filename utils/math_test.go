package utils

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowers(t *testing.T) {
	x := Powers(1.3, make([]float64, 11))
	for p := range x {
		assert.InDelta(t, math.Pow(1.3, float64(p)), x[p], 1.e-12*x[p])
	}
	assert.Equal(t, []float64{1, 2, 4, 8}, Powers(2, make([]float64, 4)))
	assert.Equal(t, []complex128{1, 1i, -1, -1i}, ComplexPowers(1i, make([]complex128, 4)))
	assert.Equal(t, 5, Ceil(10, 0.5))
	assert.Equal(t, 4, Ceil(7, 0.5))
	assert.Equal(t, 10, Ceil(10, 1))
}

func TestArith(t *testing.T) {
	{
		var ar Arith[float64] = Float64Arith{}
		x := ar.Add(ar.Mul(ar.FromFrac(3, 2), ar.FromFloat(2)), ar.One())
		assert.Equal(t, 4., x)
		assert.Equal(t, 0., ar.Sub(x, x))
	}
	{
		var ar Arith[*big.Rat] = RationalArith{}
		third := ar.FromFrac(1, 3)
		x := ar.Add(ar.Add(third, third), third)
		assert.Equal(t, 0, x.Cmp(ar.One()))
		assert.Equal(t, 1., ar.Float(x))
		// inputs are not mutated
		assert.Equal(t, "1/3", third.RatString())
		assert.Equal(t, 0, ar.FromFloat(math.NaN()).Sign())
		assert.Equal(t, 0.1, ar.Float(ar.FromFloat(0.1)))
	}
}

func TestIsFinite(t *testing.T) {
	assert.False(t, IsFinite([]float64{1, math.NaN()}))
	assert.False(t, IsFinite([]float64{1, math.Inf(1)}))
	assert.True(t, IsFinite([]float64{1, 2}))
}
