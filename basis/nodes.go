package basis

import (
	"fmt"
	"math"

	"github.com/notargets/globtim/types"
)

// ChebyshevExtrema returns cos(kπ/GN) for k = 0..GN, in descending order.
func ChebyshevExtrema(GN int) (x []float64) {
	x = make([]float64, GN+1)
	for k := 0; k <= GN; k++ {
		x[k] = math.Cos(float64(k) * math.Pi / float64(GN))
	}
	// exact symmetry and endpoints
	x[0], x[GN] = 1, -1
	if GN%2 == 0 {
		x[GN/2] = 0
	}
	for k := 0; k < (GN+1)/2; k++ {
		x[GN-k] = -x[k]
	}
	return
}

// Equispaced returns GN+1 uniformly spaced nodes on [-1,1].
func Equispaced(GN int) (x []float64) {
	x = make([]float64, GN+1)
	for k := 0; k <= GN; k++ {
		x[k] = -1 + 2*float64(k)/float64(GN)
	}
	x[GN] = 1
	return
}

// Nodes returns the 1-D node set of the given kind for density GN >= 1.
func Nodes(nt types.NodeType, bt types.BasisType, GN int) (x []float64, err error) {
	if GN < 1 {
		err = fmt.Errorf("%w: GN = %d", types.ErrInvalidGrid, GN)
		return
	}
	switch nt.Resolve(bt) {
	case types.NodeChebyshev:
		x = ChebyshevExtrema(GN)
	case types.NodeUniform:
		x = Equispaced(GN)
	default:
		err = fmt.Errorf("unsupported node type %v", nt)
	}
	return
}
