package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	{ // Basis names
		tokens := []string{"Chebyshev", "cheb", " legendre ", "LEG", "monomial"}
		flags := []BasisType{Chebyshev, Chebyshev, Legendre, Legendre, Monomial}
		for i, token := range tokens {
			bt, err := NewBasisType(token)
			require.NoError(t, err)
			assert.Equal(t, flags[i], bt)
		}
		_, err := NewBasisType("hermite")
		assert.Error(t, err)
		assert.Equal(t, "legendre", Legendre.String())
	}
	{ // Precision names
		p, err := NewPrecision("exact")
		require.NoError(t, err)
		assert.Equal(t, RationalPrecision, p)
		assert.Equal(t, "float64", FloatPrecision.String())
	}
	{ // Node resolution follows the basis
		assert.Equal(t, NodeChebyshev, NodeDefault.Resolve(Chebyshev))
		assert.Equal(t, NodeUniform, NodeDefault.Resolve(Legendre))
		assert.Equal(t, NodeChebyshev, NodeChebyshev.Resolve(Legendre))
		nt, err := NewNodeType("Equispaced")
		require.NoError(t, err)
		assert.Equal(t, NodeUniform, nt)
		_, err = NewNodeType("gauss")
		assert.Error(t, err)
	}
	{ // Point type labels
		assert.Equal(t, "minimum", Minimum.String())
		assert.Equal(t, "error", ClassificationError.String())
	}
}

func TestDegree(t *testing.T) {
	assert.NoError(t, TotalDegree(4).Validate(2))
	assert.NoError(t, TotalDegree(0).Validate(1))
	assert.ErrorIs(t, TotalDegree(-1).Validate(2), ErrInvalidDegree)
	assert.ErrorIs(t, TotalDegree(3).Validate(0), ErrInvalidDimension)
	assert.ErrorIs(t, AnisotropicDegree(2, 3).Validate(3), ErrInvalidDegree)
	assert.ErrorIs(t, AnisotropicDegree(2, -3).Validate(2), ErrInvalidDegree)

	d := AnisotropicDegree(2, 5)
	assert.True(t, d.IsAnisotropic())
	assert.Equal(t, 5, d.Max(1))
	assert.Equal(t, 4, TotalDegree(4).Max(1))
	assert.Equal(t, "[2 5]", d.String())
}

func TestEvaluationError(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("sample: %w", &EvaluationError{Index: 3, X: []float64{1, 2}, Wrapped: cause})
	assert.ErrorIs(t, err, ErrObjectiveEvaluation)
	assert.ErrorIs(t, err, cause)
	var ee *EvaluationError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.Index)
}
