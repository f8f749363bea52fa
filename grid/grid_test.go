package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/globtim/types"
)

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}

func TestTotalDegreeSupport(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for d := 0; d <= 6; d++ {
			s, err := TotalDegreeSupport(n, d)
			require.NoError(t, err)
			assert.Equal(t, binomial(n+d, d), s.Len())
			assert.Equal(t, d, s.TotalDegree())
			for j, a := range s.Alphas {
				assert.Equal(t, j, s.Index(a))
				var sum int
				for _, ak := range a {
					sum += ak
				}
				assert.LessOrEqual(t, sum, d)
				if j > 0 { // strictly increasing lexicographically
					assert.True(t, lexLess(s.Alphas[j-1], a))
				}
			}
		}
	}
	s, err := TotalDegreeSupport(2, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {2, 0}}, s.Alphas)
	assert.Equal(t, -1, s.Index([]int{1, 2}))
	assert.Equal(t, -1, s.Index([]int{3, 0}))
	assert.Equal(t, -1, s.Index([]int{1}))

	// 2^70 overflows a packed integer key
	s, err = TotalDegreeSupport(70, 1)
	require.NoError(t, err)
	require.Equal(t, 71, s.Len())
	for j, a := range s.Alphas {
		assert.Equal(t, j, s.Index(a))
	}
}

func lexLess(a, b []int) bool {
	for k := range a {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}

func TestTensorSupport(t *testing.T) {
	s, err := TensorSupport([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, s.Alphas)
	assert.Equal(t, 1, s.MaxDegree(0))
	assert.Equal(t, 2, s.MaxDegree(1))
	assert.Equal(t, 4, s.Index([]int{1, 1}))

	s, err = NewSupport(3, types.AnisotropicDegree(2, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())
	s, err = NewSupport(3, types.TotalDegree(2))
	require.NoError(t, err)
	assert.Equal(t, 10, s.Len())
}

func TestSupportErrors(t *testing.T) {
	_, err := TotalDegreeSupport(0, 3)
	assert.ErrorIs(t, err, types.ErrInvalidDimension)
	_, err = TotalDegreeSupport(2, -1)
	assert.ErrorIs(t, err, types.ErrInvalidDegree)
	_, err = TensorSupport([]int{2, -1})
	assert.ErrorIs(t, err, types.ErrInvalidDegree)
	_, err = TensorSupport(nil)
	assert.ErrorIs(t, err, types.ErrInvalidDimension)
	_, err = NewSupport(2, types.AnisotropicDegree(1, 2, 3))
	assert.ErrorIs(t, err, types.ErrInvalidDegree)
}

func TestGrid(t *testing.T) {
	{ // row-major, last dimension fastest
		g, err := NewAnisotropicGrid([][]float64{{-1, 1}, {-1, 0, 1}})
		require.NoError(t, err)
		assert.Equal(t, 6, g.N)
		assert.Equal(t, []float64{
			-1, -1,
			-1, 0,
			-1, 1,
			1, -1,
			1, 0,
			1, 1,
		}, g.Points)
		assert.Equal(t, []float64{1, 0}, g.Point(4))
		assert.Equal(t, 0., g.At(4, 1))
	}
	{ // deterministic and sized (GN+1)^n
		for n := 1; n <= 4; n++ {
			g1, err := NewSampleGrid(n, 5, types.NodeDefault, types.Chebyshev)
			require.NoError(t, err)
			g2, err := NewSampleGrid(n, 5, types.NodeDefault, types.Chebyshev)
			require.NoError(t, err)
			N := 1
			for k := 0; k < n; k++ {
				N *= 6
			}
			assert.Equal(t, N, g1.N)
			assert.Equal(t, g1.Points, g2.Points)
			for _, v := range g1.Points {
				assert.True(t, v >= -1 && v <= 1)
			}
		}
	}
	{
		_, err := NewSampleGrid(2, 0, types.NodeDefault, types.Legendre)
		assert.ErrorIs(t, err, types.ErrInvalidGrid)
		_, err = NewSampleGrid(0, 3, types.NodeDefault, types.Legendre)
		assert.ErrorIs(t, err, types.ErrInvalidDimension)
		_, err = NewAnisotropicGrid([][]float64{{0}, {}})
		assert.ErrorIs(t, err, types.ErrInvalidGrid)
	}
}
