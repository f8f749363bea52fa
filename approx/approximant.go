package approx

import (
	"fmt"
	"math"
	"math/big"

	"github.com/montanaflynn/stats"

	"github.com/notargets/globtim/basis"
	"github.com/notargets/globtim/grid"
	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/types"
	"github.com/notargets/globtim/vandermonde"
)

// Approximant is the least squares polynomial fitted to the samples of an
// objective. Coeffs[j] multiplies the tensor basis function of Support.Alphas[j]
// in coordinates normalized to [-1,1]^n.
type Approximant struct {
	Coeffs         []float64
	RationalCoeffs []*big.Rat // exact solution, RationalPrecision only
	Support        *grid.SupportSet
	Degree         types.Degree
	Basis          types.BasisType
	Precision      types.Precision
	Solver         LinearSolver // method that produced Coeffs, after fallbacks
	Center, Scale  []float64
	Cond           float64
	Rank           int
	L2Norm         float64
	Grid           *grid.Grid
	Values         []float64 // sampled objective, NaN where evaluation failed
	EvalErrors     int
	EvalFailures   []*types.EvaluationError
	GN             int
}

func (a *Approximant) Dim() int { return a.Support.Dim }

func (a *Approximant) basis() basis.Basis {
	b, err := basis.New(a.Basis)
	if err != nil {
		panic(err)
	}
	return b
}

// EvalNormalized evaluates the approximant at p in [-1,1]^n.
func (a *Approximant) EvalNormalized(p []float64) (v float64) {
	row := vandermonde.Row(a.basis(), a.Support, p, make([]float64, a.Support.Len()))
	for j, c := range a.Coeffs {
		v += c * row[j]
	}
	return
}

// Eval evaluates the approximant at a point x of the original domain.
func (a *Approximant) Eval(x []float64) float64 {
	p := make([]float64, len(x))
	for k := range x {
		p[k] = (x[k] - a.Center[k]) / a.Scale[k]
	}
	return a.EvalNormalized(p)
}

// Monomial returns the approximant expanded in monomials of the normalized
// coordinates.
func (a *Approximant) Monomial() (polynomial.Polynomial, error) {
	return polynomial.FromBasis(a.basis(), a.Support, a.Coeffs)
}

// Residuals returns f_i - p(x_i) for every grid point, NaN for failed samples.
func (a *Approximant) Residuals() (r []float64) {
	r = make([]float64, a.Grid.N)
	for i := range r {
		if math.IsNaN(a.Values[i]) {
			r[i] = math.NaN()
			continue
		}
		r[i] = a.Values[i] - a.EvalNormalized(a.Grid.Point(i))
	}
	return
}

type ResidualSummary struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
	MaxAbs float64
	RMS    float64
}

// ResidualStats summarises the residuals of the valid samples.
func (a *Approximant) ResidualStats() (rs ResidualSummary, err error) {
	var (
		valid stats.Float64Data
		abs   stats.Float64Data
	)
	for _, r := range a.Residuals() {
		if !math.IsNaN(r) {
			valid = append(valid, r)
			abs = append(abs, math.Abs(r))
		}
	}
	rs.N = len(valid)
	if rs.N == 0 {
		err = fmt.Errorf("%w: no valid residuals", types.ErrAllEvaluationsFailed)
		return
	}
	if rs.Mean, err = stats.Mean(valid); err != nil {
		return
	}
	if rs.StdDev, err = stats.StandardDeviation(valid); err != nil {
		return
	}
	if rs.Median, err = stats.Median(valid); err != nil {
		return
	}
	if rs.MaxAbs, err = stats.Max(abs); err != nil {
		return
	}
	var ms float64
	for _, r := range valid {
		ms += r * r
	}
	rs.RMS = math.Sqrt(ms / float64(rs.N))
	return
}

func (a *Approximant) String() string {
	return fmt.Sprintf("%s degree %s, %d coefficients, GN=%d, cond=%.3g, L2=%.6g, %d failed samples",
		a.Basis, a.Degree, len(a.Coeffs), a.GN, a.Cond, a.L2Norm, a.EvalErrors)
}
