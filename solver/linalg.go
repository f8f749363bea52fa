package solver

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/globtim/polynomial"
	"github.com/notargets/globtim/utils"
)

// Jacobian returns J[i][k] = ∂F_i/∂x_k.
func (s System) Jacobian() (J [][]polynomial.Polynomial) {
	J = make([][]polynomial.Polynomial, len(s.Equations))
	for i, eq := range s.Equations {
		J[i] = eq.Gradient()
	}
	return
}

func (s System) Eval(x []float64) (F []float64) {
	F = make([]float64, len(s.Equations))
	for i, eq := range s.Equations {
		F[i] = eq.Eval(x)
	}
	return
}

func (s System) EvalComplex(z []complex128) (F []complex128) {
	F = make([]complex128, len(s.Equations))
	for i, eq := range s.Equations {
		F[i] = eq.EvalComplex(z)
	}
	return
}

// Scale is the largest coefficient magnitude over the system, used to make
// residual tolerances relative.
func (s System) Scale() (c float64) {
	for _, eq := range s.Equations {
		c = math.Max(c, eq.MaxAbsCoeff())
	}
	if c == 0 {
		c = 1
	}
	return
}

func EvalJacobian(J [][]polynomial.Polynomial, x []float64) *mat.Dense {
	n := len(J)
	A := mat.NewDense(n, n, nil)
	for i := range J {
		for k := range J[i] {
			A.Set(i, k, J[i][k].Eval(x))
		}
	}
	return A
}

func EvalJacobianComplex(J [][]polynomial.Polynomial, z []complex128) (A [][]complex128) {
	A = make([][]complex128, len(J))
	for i := range J {
		A[i] = make([]complex128, len(J[i]))
		for k := range J[i] {
			A[i][k] = J[i][k].EvalComplex(z)
		}
	}
	return
}

// SolveComplex solves A x = b as the equivalent real system
//
//	[Re A  -Im A] [Re x]   [Re b]
//	[Im A   Re A] [Im x] = [Im b]
func SolveComplex(A [][]complex128, b []complex128) (x []complex128, err error) {
	var (
		n  = len(b)
		M  = mat.NewDense(2*n, 2*n, nil)
		rv = mat.NewVecDense(2*n, nil)
		xv mat.VecDense
	)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			re, im := real(A[i][k]), imag(A[i][k])
			M.Set(i, k, re)
			M.Set(i, k+n, -im)
			M.Set(i+n, k, im)
			M.Set(i+n, k+n, re)
		}
		rv.SetVec(i, real(b[i]))
		rv.SetVec(i+n, imag(b[i]))
	}
	if err = xv.SolveVec(M, rv); err != nil {
		return
	}
	x = make([]complex128, n)
	for i := range x {
		x[i] = complex(xv.AtVec(i), xv.AtVec(i+n))
	}
	return
}

func SolveReal(A *mat.Dense, b []float64) (x []float64, err error) {
	var (
		xv mat.VecDense
	)
	if err = xv.SolveVec(A, mat.NewVecDense(len(b), b)); err != nil {
		return
	}
	x = xv.RawVector().Data
	return
}

func NormComplex(z []complex128) (s float64) {
	for _, v := range z {
		s = math.Hypot(s, cmplx.Abs(v))
	}
	return
}

// Polish runs real Newton iterations on F from x until the step stalls or
// maxIter is reached, keeping the iterate with the smallest residual. It
// reports whether that residual reached tol relative to the system scale.
func Polish(sys System, J [][]polynomial.Polynomial, x []float64, maxIter int, tol float64) ([]float64, bool) {
	var (
		xk    = append([]float64(nil), x...)
		scale = sys.Scale()
		best  = append([]float64(nil), x...)
		nBest = floats.Norm(sys.Eval(xk), 2)
		F     = sys.Eval(xk)
	)
	for it := 0; it < maxIter; it++ {
		dx, err := SolveReal(EvalJacobian(J, xk), F)
		if err != nil {
			break
		}
		floats.Sub(xk, dx)
		if !utils.IsFinite(xk) {
			break
		}
		F = sys.Eval(xk)
		if nF := floats.Norm(F, 2); nF < nBest {
			copy(best, xk)
			nBest = nF
		}
		if floats.Norm(dx, 2) <= 1e-14*(1+floats.Norm(xk, 2)) {
			break
		}
	}
	return best, nBest <= tol*scale && utils.IsFinite(best)
}

// Dedup keeps the first of every group of points within tol (max norm).
func Dedup(points [][]float64, tol float64) (unique [][]float64) {
	for _, p := range points {
		dup := false
		for _, q := range unique {
			if floats.Distance(p, q, math.Inf(1)) <= tol {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, p)
		}
	}
	return
}
