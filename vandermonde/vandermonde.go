// Package vandermonde assembles the tensor basis matrix V[i,j] = Π_k P_{α_j,k}(x_{i,k})
// of a support set over a sample grid.
package vandermonde

import (
	"fmt"
	"math/big"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/globtim/basis"
	"github.com/notargets/globtim/grid"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
)

// Build returns V in row-major order as a flat slice with rows = g.N and
// cols = s.Len(). The 1-D tables are computed once per point and dimension.
func Build[T any](ar utils.Arith[T], b basis.Basis, s *grid.SupportSet, g *grid.Grid) (V []T, rows, cols int, err error) {
	if s.Dim != g.Dim {
		err = fmt.Errorf("%w: support dimension %d, grid dimension %d",
			types.ErrDimensionMismatch, s.Dim, g.Dim)
		return
	}
	var (
		n      = s.Dim
		tables = make([][]T, n)
	)
	rows, cols = g.N, s.Len()
	V = make([]T, rows*cols)
	for i := 0; i < rows; i++ {
		for k := 0; k < n; k++ {
			tables[k] = basis.EvalUpTo(b, ar, ar.FromFloat(g.At(i, k)), s.MaxDegree(k))
		}
		for j, alpha := range s.Alphas {
			v := ar.One()
			for k, ak := range alpha {
				if ak != 0 {
					v = ar.Mul(v, tables[k][ak])
				}
			}
			V[i*cols+j] = v
		}
	}
	return
}

// BuildFloat is the float64 form of Build, rows evaluated in parallel.
func BuildFloat(b basis.Basis, s *grid.SupportSet, g *grid.Grid, procLimit int) (V *mat.Dense, err error) {
	if s.Dim != g.Dim {
		err = fmt.Errorf("%w: support dimension %d, grid dimension %d",
			types.ErrDimensionMismatch, s.Dim, g.Dim)
		return
	}
	var (
		rows, cols = g.N, s.Len()
		data       = make([]float64, rows*cols)
		pm         = utils.NewPartitionMap(utils.ParallelDegree(procLimit, rows), rows)
	)
	pm.Each(func(i int) {
		Row(b, s, g.Point(i), data[i*cols:(i+1)*cols])
	})
	V = mat.NewDense(rows, cols, data)
	return
}

// BuildRational is the exact form of Build over *big.Rat.
func BuildRational(b basis.Basis, s *grid.SupportSet, g *grid.Grid) (V [][]*big.Rat, err error) {
	var (
		flat       []*big.Rat
		rows, cols int
	)
	if flat, rows, cols, err = Build[*big.Rat](utils.RationalArith{}, b, s, g); err != nil {
		return
	}
	V = make([][]*big.Rat, rows)
	for i := range V {
		V[i] = flat[i*cols : (i+1)*cols]
	}
	return
}

// Row writes the basis row of point x (normalized coordinates) into dst,
// which must have length s.Len().
func Row(b basis.Basis, s *grid.SupportSet, x []float64, dst []float64) []float64 {
	var (
		n      = s.Dim
		tables = make([][]float64, n)
	)
	for k := 0; k < n; k++ {
		tables[k] = basis.EvalFloat(b, x[k], make([]float64, s.MaxDegree(k)+1))
	}
	for j, alpha := range s.Alphas {
		v := 1.
		for k, ak := range alpha {
			if ak != 0 {
				v *= tables[k][ak]
			}
		}
		dst[j] = v
	}
	return dst
}
