// Package grid builds the exponent support sets of the approximation space and
// the tensor product sample grids on [-1,1]^n.
package grid

import (
	"encoding/binary"
	"fmt"

	"github.com/notargets/globtim/types"
)

// SupportSet is an ordered set of multi-indices α ∈ N^n, lexicographic with the
// first coordinate most significant. The set is always downward closed.
type SupportSet struct {
	Dim    int
	Alphas [][]int
	maxDeg []int
	index  map[string]int
}

// TotalDegreeSupport returns every α with Σα ≤ d.
func TotalDegreeSupport(n, d int) (s *SupportSet, err error) {
	if err = types.TotalDegree(d).Validate(n); err != nil {
		return
	}
	var (
		alphas [][]int
		alpha  = make([]int, n)
		walk   func(k, budget int)
	)
	walk = func(k, budget int) {
		if k == n {
			a := make([]int, n)
			copy(a, alpha)
			alphas = append(alphas, a)
			return
		}
		for ak := 0; ak <= budget; ak++ {
			alpha[k] = ak
			walk(k+1, budget-ak)
		}
		alpha[k] = 0
	}
	walk(0, d)
	maxDeg := make([]int, n)
	for k := range maxDeg {
		maxDeg[k] = d
	}
	s = newSupportSet(n, alphas, maxDeg)
	return
}

// TensorSupport returns every α with α_k ≤ degrees[k].
func TensorSupport(degrees []int) (s *SupportSet, err error) {
	var (
		n = len(degrees)
	)
	if n == 0 {
		err = fmt.Errorf("%w: empty degree vector", types.ErrInvalidDimension)
		return
	}
	if err = types.AnisotropicDegree(degrees...).Validate(n); err != nil {
		return
	}
	var (
		alphas [][]int
		alpha  = make([]int, n)
		walk   func(k int)
	)
	walk = func(k int) {
		if k == n {
			a := make([]int, n)
			copy(a, alpha)
			alphas = append(alphas, a)
			return
		}
		for ak := 0; ak <= degrees[k]; ak++ {
			alpha[k] = ak
			walk(k + 1)
		}
		alpha[k] = 0
	}
	walk(0)
	maxDeg := make([]int, n)
	copy(maxDeg, degrees)
	s = newSupportSet(n, alphas, maxDeg)
	return
}

// NewSupport dispatches on the degree kind: total degree for an isotropic
// degree, tensor product for a per-dimension degree.
func NewSupport(n int, d types.Degree) (s *SupportSet, err error) {
	if err = d.Validate(n); err != nil {
		return
	}
	if d.IsAnisotropic() {
		return TensorSupport(d.PerDim)
	}
	return TotalDegreeSupport(n, d.Total)
}

func newSupportSet(n int, alphas [][]int, maxDeg []int) (s *SupportSet) {
	s = &SupportSet{
		Dim:    n,
		Alphas: alphas,
		maxDeg: maxDeg,
		index:  make(map[string]int, len(alphas)),
	}
	for j, a := range alphas {
		s.index[s.key(a)] = j
	}
	return
}

// key encodes α as a string of varints, collision free at any dimension.
func (s *SupportSet) key(alpha []int) string {
	buf := make([]byte, 0, len(alpha))
	for _, ak := range alpha {
		buf = binary.AppendUvarint(buf, uint64(ak))
	}
	return string(buf)
}

func (s *SupportSet) Len() int { return len(s.Alphas) }

// Index returns the position of alpha in the set, or -1.
func (s *SupportSet) Index(alpha []int) int {
	if len(alpha) != s.Dim {
		return -1
	}
	for k, ak := range alpha {
		if ak < 0 || ak > s.maxDeg[k] {
			return -1
		}
	}
	if j, ok := s.index[s.key(alpha)]; ok {
		return j
	}
	return -1
}

// MaxDegree returns the largest exponent of dimension k over the set.
func (s *SupportSet) MaxDegree(k int) int { return s.maxDeg[k] }

// TotalDegree returns max Σα over the set.
func (s *SupportSet) TotalDegree() (d int) {
	for _, a := range s.Alphas {
		var sum int
		for _, ak := range a {
			sum += ak
		}
		if sum > d {
			d = sum
		}
	}
	return
}
