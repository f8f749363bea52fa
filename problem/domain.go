package problem

import (
	"fmt"
	"math"

	"github.com/notargets/globtim/types"
)

// Domain is the hyperrectangle [Center-Range, Center+Range] together with the
// objective defined on it and the sampling density GN.
type Domain struct {
	Dim       int
	Center    []float64
	Range     []float64
	GN        int
	Objective Objective
}

// NewDomain validates and builds a Domain. sampleRange may have length one, in
// which case it is broadcast to every dimension.
func NewDomain(obj Objective, center, sampleRange []float64, GN int) (d Domain, err error) {
	var (
		n = len(center)
	)
	if n < 1 {
		err = fmt.Errorf("%w: empty center", types.ErrInvalidDimension)
		return
	}
	if obj.Dim != n {
		err = fmt.Errorf("%w: objective dimension %d, center dimension %d",
			types.ErrDimensionMismatch, obj.Dim, n)
		return
	}
	if obj.F == nil {
		err = fmt.Errorf("%w: objective %q has no function", types.ErrObjectiveEvaluation, obj.Name)
		return
	}
	rng := make([]float64, n)
	switch len(sampleRange) {
	case 1:
		for i := range rng {
			rng[i] = sampleRange[0]
		}
	case n:
		copy(rng, sampleRange)
	default:
		err = fmt.Errorf("%w: %d range values for dimension %d",
			types.ErrDimensionMismatch, len(sampleRange), n)
		return
	}
	for i, r := range rng {
		if !(r > 0) || math.IsInf(r, 0) {
			err = fmt.Errorf("%w: range[%d] = %v", types.ErrInvalidRange, i, r)
			return
		}
	}
	if GN < 1 {
		err = fmt.Errorf("%w: GN = %d", types.ErrInvalidGrid, GN)
		return
	}
	c := make([]float64, n)
	copy(c, center)
	d = Domain{
		Dim:       n,
		Center:    c,
		Range:     rng,
		GN:        GN,
		Objective: obj,
	}
	return
}

// Denormalize maps p in [-1,1]^n to x = center + range ⊙ p.
func (d Domain) Denormalize(p []float64) (x []float64) {
	x = make([]float64, d.Dim)
	for i := range x {
		x[i] = d.Center[i] + d.Range[i]*p[i]
	}
	return
}

// Normalize maps x to p = (x - center) ⊘ range.
func (d Domain) Normalize(x []float64) (p []float64) {
	p = make([]float64, d.Dim)
	for i := range p {
		p[i] = (x[i] - d.Center[i]) / d.Range[i]
	}
	return
}

// Contains reports whether x lies in the domain widened by eps in every dimension.
func (d Domain) Contains(x []float64, eps float64) bool {
	for i := range x {
		if x[i] < d.Center[i]-d.Range[i]-eps || x[i] > d.Center[i]+d.Range[i]+eps {
			return false
		}
	}
	return true
}

func (d Domain) Bounds() (lower, upper []float64) {
	lower, upper = make([]float64, d.Dim), make([]float64, d.Dim)
	for i := range lower {
		lower[i] = d.Center[i] - d.Range[i]
		upper[i] = d.Center[i] + d.Range[i]
	}
	return
}

func (d Domain) String() string {
	return fmt.Sprintf("%s on center=%v range=%v (n=%d, GN=%d)",
		d.Objective.Name, d.Center, d.Range, d.Dim, d.GN)
}
