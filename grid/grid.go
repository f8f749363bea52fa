package grid

import (
	"fmt"

	"github.com/notargets/globtim/basis"
	"github.com/notargets/globtim/types"
)

// Grid is the Cartesian product of per-dimension node sets, stored row-major
// with the last dimension varying fastest.
type Grid struct {
	Dim    int
	N      int
	Nodes  [][]float64
	Points []float64 // N x Dim
}

// NewGrid builds the n-fold product of one node set.
func NewGrid(n int, nodes []float64) (g *Grid, err error) {
	if n < 1 {
		err = fmt.Errorf("%w: n = %d", types.ErrInvalidDimension, n)
		return
	}
	perDim := make([][]float64, n)
	for k := range perDim {
		perDim[k] = nodes
	}
	return NewAnisotropicGrid(perDim)
}

// NewAnisotropicGrid builds the product of nodes[0] x nodes[1] x ...
func NewAnisotropicGrid(nodes [][]float64) (g *Grid, err error) {
	var (
		n = len(nodes)
		N = 1
	)
	if n < 1 {
		err = fmt.Errorf("%w: no node sets", types.ErrInvalidDimension)
		return
	}
	for k, nk := range nodes {
		if len(nk) == 0 {
			err = fmt.Errorf("%w: empty node set in dimension %d", types.ErrInvalidGrid, k)
			return
		}
		N *= len(nk)
	}
	g = &Grid{
		Dim:    n,
		N:      N,
		Nodes:  make([][]float64, n),
		Points: make([]float64, N*n),
	}
	for k, nk := range nodes {
		g.Nodes[k] = make([]float64, len(nk))
		copy(g.Nodes[k], nk)
	}
	var (
		idx = make([]int, n)
	)
	for i := 0; i < N; i++ {
		row := g.Points[i*n : (i+1)*n]
		for k := 0; k < n; k++ {
			row[k] = g.Nodes[k][idx[k]]
		}
		// odometer, last dimension fastest
		for k := n - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(g.Nodes[k]) {
				break
			}
			idx[k] = 0
		}
	}
	return
}

// NewSampleGrid builds the grid of GN+1 nodes per dimension of kind nt.
func NewSampleGrid(n, GN int, nt types.NodeType, bt types.BasisType) (g *Grid, err error) {
	var (
		nodes []float64
	)
	if n < 1 {
		err = fmt.Errorf("%w: n = %d", types.ErrInvalidDimension, n)
		return
	}
	if nodes, err = basis.Nodes(nt, bt, GN); err != nil {
		return
	}
	return NewGrid(n, nodes)
}

// Point returns row i. The slice aliases the grid storage.
func (g *Grid) Point(i int) []float64 {
	return g.Points[i*g.Dim : (i+1)*g.Dim]
}

func (g *Grid) At(i, k int) float64 { return g.Points[i*g.Dim+k] }
