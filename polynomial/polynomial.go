// Package polynomial holds sparse multivariate polynomials in the monomial
// basis, the form handed to polynomial system solvers.
package polynomial

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/notargets/globtim/basis"
	"github.com/notargets/globtim/grid"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/utils"
)

// Term is Coeff · Π_k x_k^Exp[k].
type Term struct {
	Exp   []int
	Coeff float64
}

// Polynomial is a sum of terms with distinct exponents, sorted
// lexicographically, no zero coefficients.
type Polynomial struct {
	Vars  int
	Terms []Term
}

// New merges like terms, drops zeros and sorts.
func New(vars int, terms ...Term) (p Polynomial) {
	var (
		acc = make(map[string]int)
	)
	p.Vars = vars
	for _, t := range terms {
		if len(t.Exp) != vars {
			panic(fmt.Errorf("%w: term with %d exponents in %d variables",
				types.ErrDimensionMismatch, len(t.Exp), vars))
		}
		key := expKey(t.Exp)
		if i, ok := acc[key]; ok {
			p.Terms[i].Coeff += t.Coeff
			continue
		}
		exp := make([]int, vars)
		copy(exp, t.Exp)
		acc[key] = len(p.Terms)
		p.Terms = append(p.Terms, Term{Exp: exp, Coeff: t.Coeff})
	}
	p.compact()
	return
}

func expKey(exp []int) string {
	var b strings.Builder
	for _, e := range exp {
		fmt.Fprintf(&b, "%d,", e)
	}
	return b.String()
}

func (p *Polynomial) compact() {
	kept := p.Terms[:0]
	for _, t := range p.Terms {
		if t.Coeff != 0 {
			kept = append(kept, t)
		}
	}
	p.Terms = kept
	sort.Slice(p.Terms, func(i, j int) bool {
		a, b := p.Terms[i].Exp, p.Terms[j].Exp
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}

// FromBasis converts Σ_j coeffs[j] Π_k P_{α_j,k}(x_k) to monomial form. The
// change of basis is assembled as a sparse matrix M with
// M[β,α] = Π_k C[α_k][β_k], C the 1-D expansion table of the basis. Support
// sets are downward closed, so every β ≤ α is a member.
func FromBasis(b basis.Basis, s *grid.SupportSet, coeffs []float64) (p Polynomial, err error) {
	var (
		m      = s.Len()
		n      = s.Dim
		tables = make([][][]float64, n)
		M      = utils.NewDOK(m, m)
	)
	if len(coeffs) != m {
		err = fmt.Errorf("%w: %d coefficients for a support of %d",
			types.ErrDimensionMismatch, len(coeffs), m)
		return
	}
	for k := 0; k < n; k++ {
		tables[k] = basis.MonomialTable(b, utils.Float64Arith{}, s.MaxDegree(k))
	}
	beta := make([]int, n)
	for j, alpha := range s.Alphas {
		for k := range beta {
			beta[k] = 0
		}
		for {
			v := 1.
			for k := 0; k < n && v != 0; k++ {
				v *= tables[k][alpha[k]][beta[k]]
			}
			if v != 0 {
				i := s.Index(beta)
				if i < 0 {
					err = fmt.Errorf("support set is not downward closed at %v", beta)
					return
				}
				M.Set(i, j, v)
			}
			// next β ≤ α
			k := n - 1
			for ; k >= 0; k-- {
				beta[k]++
				if beta[k] <= alpha[k] {
					break
				}
				beta[k] = 0
			}
			if k < 0 {
				break
			}
		}
	}
	M.SetReadOnly("change of basis")
	mono := M.ToCSR().MulVec(coeffs)
	terms := make([]Term, 0, m)
	for i, alpha := range s.Alphas {
		terms = append(terms, Term{Exp: alpha, Coeff: mono[i]})
	}
	p = New(n, terms...)
	return
}

func (p Polynomial) IsZero() bool { return len(p.Terms) == 0 }

// Degree returns the total degree, -1 for the zero polynomial.
func (p Polynomial) Degree() (d int) {
	d = -1
	for _, t := range p.Terms {
		var s int
		for _, e := range t.Exp {
			s += e
		}
		if s > d {
			d = s
		}
	}
	return
}

// DegreeIn returns the largest exponent of variable k.
func (p Polynomial) DegreeIn(k int) (d int) {
	for _, t := range p.Terms {
		if t.Exp[k] > d {
			d = t.Exp[k]
		}
	}
	return
}

func (p Polynomial) MaxAbsCoeff() (c float64) {
	for _, t := range p.Terms {
		c = math.Max(c, math.Abs(t.Coeff))
	}
	return
}

// Truncate drops terms with |c| < relTol · max|c|.
func (p Polynomial) Truncate(relTol float64) (r Polynomial) {
	var (
		cut = relTol * p.MaxAbsCoeff()
	)
	r.Vars = p.Vars
	for _, t := range p.Terms {
		if math.Abs(t.Coeff) >= cut {
			r.Terms = append(r.Terms, t)
		}
	}
	return
}

// Derivative returns ∂p/∂x_k.
func (p Polynomial) Derivative(k int) (d Polynomial) {
	d.Vars = p.Vars
	for _, t := range p.Terms {
		if t.Exp[k] == 0 {
			continue
		}
		exp := make([]int, p.Vars)
		copy(exp, t.Exp)
		exp[k]--
		d.Terms = append(d.Terms, Term{Exp: exp, Coeff: t.Coeff * float64(t.Exp[k])})
	}
	return
}

func (p Polynomial) Gradient() (g []Polynomial) {
	g = make([]Polynomial, p.Vars)
	for k := range g {
		g[k] = p.Derivative(k)
	}
	return
}

func (p Polynomial) powerTables(x []float64) (pw [][]float64) {
	pw = make([][]float64, p.Vars)
	for k := range pw {
		pw[k] = utils.Powers(x[k], make([]float64, p.DegreeIn(k)+1))
	}
	return
}

func (p Polynomial) Eval(x []float64) (v float64) {
	pw := p.powerTables(x)
	for _, t := range p.Terms {
		c := t.Coeff
		for k, e := range t.Exp {
			c *= pw[k][e]
		}
		v += c
	}
	return
}

func (p Polynomial) EvalComplex(z []complex128) (v complex128) {
	pw := make([][]complex128, p.Vars)
	for k := range pw {
		pw[k] = utils.ComplexPowers(z[k], make([]complex128, p.DegreeIn(k)+1))
	}
	for _, t := range p.Terms {
		c := complex(t.Coeff, 0)
		for k, e := range t.Exp {
			c *= pw[k][e]
		}
		v += c
	}
	return
}

func (p Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	var (
		b strings.Builder
	)
	for i, t := range p.Terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%g", t.Coeff)
		for k, e := range t.Exp {
			switch e {
			case 0:
			case 1:
				fmt.Fprintf(&b, "*x%d", k+1)
			default:
				fmt.Fprintf(&b, "*x%d^%d", k+1, e)
			}
		}
	}
	return b.String()
}
