// Package basis holds the 1-D polynomial families whose tensor products span
// the approximation space, and the 1-D sample node rules.
package basis

import (
	"fmt"

	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
)

// Basis describes a family through its three-term recurrence
//
//	P_0(x) = 1, P_1(x) = x, P_{k+1}(x) = α_k x P_k(x) - β_k P_{k-1}(x),  k >= 1
//
// Every evaluation in the module goes through this recurrence, never through
// expanded powers.
type Basis interface {
	Type() types.BasisType
	Recurrence(k int) (alpha, beta utils.Frac)
}

type chebyshev struct{}

func (chebyshev) Type() types.BasisType { return types.Chebyshev }
func (chebyshev) Recurrence(k int) (alpha, beta utils.Frac) {
	return utils.Frac{Num: 2, Den: 1}, utils.Frac{Num: 1, Den: 1}
}

type legendre struct{}

func (legendre) Type() types.BasisType { return types.Legendre }
func (legendre) Recurrence(k int) (alpha, beta utils.Frac) {
	kk := int64(k)
	return utils.Frac{Num: 2*kk + 1, Den: kk + 1}, utils.Frac{Num: kk, Den: kk + 1}
}

type monomial struct{}

func (monomial) Type() types.BasisType { return types.Monomial }
func (monomial) Recurrence(k int) (alpha, beta utils.Frac) {
	return utils.Frac{Num: 1, Den: 1}, utils.Frac{Num: 0, Den: 1}
}

var (
	Chebyshev Basis = chebyshev{}
	Legendre  Basis = legendre{}
	Monomial  Basis = monomial{}
)

func New(bt types.BasisType) (b Basis, err error) {
	switch bt {
	case types.Chebyshev:
		b = Chebyshev
	case types.Legendre:
		b = Legendre
	case types.Monomial:
		b = Monomial
	default:
		err = fmt.Errorf("unsupported basis %v", bt)
	}
	return
}

// EvalUpTo returns P_0(x) .. P_maxDeg(x).
func EvalUpTo[T any](b Basis, ar utils.Arith[T], x T, maxDeg int) (P []T) {
	if maxDeg < 0 {
		return nil
	}
	P = make([]T, maxDeg+1)
	P[0] = ar.One()
	if maxDeg == 0 {
		return
	}
	P[1] = x
	for k := 1; k < maxDeg; k++ {
		alpha, beta := b.Recurrence(k)
		next := ar.Mul(ar.Mul(ar.FromFrac(alpha.Num, alpha.Den), x), P[k])
		if !beta.IsZero() {
			next = ar.Sub(next, ar.Mul(ar.FromFrac(beta.Num, beta.Den), P[k-1]))
		}
		P[k+1] = next
	}
	return
}

// Eval returns P_d(x).
func Eval[T any](b Basis, ar utils.Arith[T], x T, d int) T {
	return EvalUpTo(b, ar, x, d)[d]
}

// EvalFloat is the float64 fast path of EvalUpTo writing into dst, which must
// have length maxDeg+1.
func EvalFloat(b Basis, x float64, dst []float64) []float64 {
	var (
		maxDeg = len(dst) - 1
	)
	if maxDeg < 0 {
		return dst
	}
	dst[0] = 1
	if maxDeg == 0 {
		return dst
	}
	dst[1] = x
	for k := 1; k < maxDeg; k++ {
		alpha, beta := b.Recurrence(k)
		dst[k+1] = alpha.Float()*x*dst[k] - beta.Float()*dst[k-1]
	}
	return dst
}

// MonomialTable returns C with P_d(x) = Σ_j C[d][j] x^j for d = 0..maxDeg.
func MonomialTable[T any](b Basis, ar utils.Arith[T], maxDeg int) (C [][]T) {
	if maxDeg < 0 {
		return nil
	}
	C = make([][]T, maxDeg+1)
	for d := range C {
		C[d] = make([]T, d+1)
		for j := range C[d] {
			C[d][j] = ar.Zero()
		}
	}
	C[0][0] = ar.One()
	if maxDeg == 0 {
		return
	}
	C[1][1] = ar.One()
	for k := 1; k < maxDeg; k++ {
		alpha, beta := b.Recurrence(k)
		a, bb := ar.FromFrac(alpha.Num, alpha.Den), ar.FromFrac(beta.Num, beta.Den)
		for j := 1; j <= k+1; j++ {
			C[k+1][j] = ar.Mul(a, C[k][j-1])
		}
		for j := 0; j <= k-1; j++ {
			C[k+1][j] = ar.Sub(C[k+1][j], ar.Mul(bb, C[k-1][j]))
		}
	}
	return
}
