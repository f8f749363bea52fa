// Package critical locates the critical points of a polynomial approximant,
// refines them on the true objective and classifies them by the spectrum of
// the Hessian.
package critical

import (
	"math"

	"github.com/notargets/globtim/types"
)

// Row status values.
const (
	StatusOK                   = "ok"
	StatusEvaluationFailed     = "evaluation_failed"
	StatusRefinementFailed     = "refinement_failed"
	StatusClassificationFailed = "classification_failed"
)

// Record is one critical point candidate. X and Normalized locate the solver
// root; the Refined fields describe local refinement on the objective and the
// Hessian fields are filled by classification. GradNorm is taken at the
// refined point, or at X when refinement is off. Converged requires Close.
type Record struct {
	X               []float64
	Normalized      []float64
	Value           float64
	Refined         []float64
	RefinedValue    float64
	RefineSteps     int
	Converged       bool
	Close           bool
	RefinedInDomain bool
	GradNorm        float64

	Type               types.PointType
	Eigenvalues        []float64
	HessianNorm        float64
	HessianCond        float64
	Determinant        float64
	CriticalEigenvalue float64

	Status string
	Err    error
}

// UseRefined reports whether the refined coordinates replace X downstream.
func (r *Record) UseRefined() bool {
	return r.Converged && r.Close && r.RefinedInDomain && r.Refined != nil
}

// Best returns the coordinates and value used for classification.
func (r *Record) Best() ([]float64, float64) {
	if r.UseRefined() {
		return r.Refined, r.RefinedValue
	}
	return r.X, r.Value
}

func (r Record) clone() Record {
	c := r
	c.X = append([]float64(nil), r.X...)
	c.Normalized = append([]float64(nil), r.Normalized...)
	if r.Refined != nil {
		c.Refined = append([]float64(nil), r.Refined...)
	}
	if r.Eigenvalues != nil {
		c.Eigenvalues = append([]float64(nil), r.Eigenvalues...)
	}
	return c
}

type Table []Record

func (t Table) Len() int { return len(t) }

// Filter returns copies of the rows for which keep is true.
func (t Table) Filter(keep func(r *Record) bool) (f Table) {
	f = Table{}
	for i := range t {
		if keep(&t[i]) {
			f = append(f, t[i].clone())
		}
	}
	return
}

func (t Table) Minima() Table {
	return t.Filter(func(r *Record) bool { return r.Type == types.Minimum })
}

func (t Table) Count(pt types.PointType) (n int) {
	for i := range t {
		if t[i].Type == pt {
			n++
		}
	}
	return
}

// Lowest returns the index of the row with the smallest finite best value, or -1.
func (t Table) Lowest() (idx int) {
	idx = -1
	best := math.Inf(1)
	for i := range t {
		if _, v := t[i].Best(); !math.IsNaN(v) && v < best {
			best, idx = v, i
		}
	}
	return
}
