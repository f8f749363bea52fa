package approx

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

// machine epsilon of float64
const dlamchE = 1.0 / (1 << 52)

type lsqResult struct {
	coeffs []float64
	cond   float64
	rank   int
	method LinearSolver
}

func solveFloat(ls LinearSolver, A *mat.Dense, b []float64, logger *slog.Logger) (res lsqResult) {
	switch ls {
	case SolverQR:
		return solveQR(A, b, logger)
	case SolverNormalEquations:
		return solveNormal(A, b, logger)
	}
	return solveSVD(A, b)
}

// solveSVD returns the minimum norm least squares solution truncated to the
// numerical rank. Cond is +Inf when the system is under-determined or rank
// deficient, and a rank zero system yields zero coefficients.
func solveSVD(A *mat.Dense, b []float64) (res lsqResult) {
	var (
		r, c = A.Dims()
		svd  mat.SVD
	)
	res = lsqResult{
		coeffs: make([]float64, c),
		cond:   math.Inf(1),
		method: SolverSVD,
	}
	if !svd.Factorize(A, mat.SVDThin) {
		return
	}
	sv := svd.Values(nil)
	res.rank = svd.Rank(float64(max(r, c)) * dlamchE)
	if res.rank == 0 {
		return
	}
	x := mat.NewVecDense(c, nil)
	svd.SolveVecTo(x, mat.NewVecDense(r, b), res.rank)
	copy(res.coeffs, x.RawVector().Data)
	if r >= c && res.rank == len(sv) {
		res.cond = sv[0] / sv[len(sv)-1]
	}
	return
}

func solveQR(A *mat.Dense, b []float64, logger *slog.Logger) (res lsqResult) {
	var (
		r, c = A.Dims()
		qr   mat.QR
	)
	if r < c {
		logger.Debug("QR needs an over-determined system, using SVD", "rows", r, "cols", c)
		return solveSVD(A, b)
	}
	qr.Factorize(A)
	x := mat.NewVecDense(c, nil)
	if err := qr.SolveVecTo(x, false, mat.NewVecDense(r, b)); err != nil {
		logger.Debug("QR solve ill conditioned, using SVD", "err", err)
		return solveSVD(A, b)
	}
	res = lsqResult{
		coeffs: x.RawVector().Data,
		cond:   qr.Cond(),
		rank:   c,
		method: SolverQR,
	}
	return
}

// solveNormal solves VᵀV c = Vᵀf by Cholesky. Cond is that of VᵀV.
func solveNormal(A *mat.Dense, b []float64, logger *slog.Logger) (res lsqResult) {
	var (
		r, c = A.Dims()
		ata  mat.SymDense
		ch   mat.Cholesky
	)
	if r < c {
		logger.Debug("normal equations are singular for an under-determined system, using SVD", "rows", r, "cols", c)
		return solveSVD(A, b)
	}
	ata.SymOuterK(1, A.T())
	atb := mat.NewVecDense(c, nil)
	atb.MulVec(A.T(), mat.NewVecDense(r, b))
	if !ch.Factorize(&ata) {
		logger.Debug("normal equations not positive definite, using SVD")
		return solveSVD(A, b)
	}
	x := mat.NewVecDense(c, nil)
	if err := ch.SolveVecTo(x, atb); err != nil {
		logger.Debug("normal equations ill conditioned, using SVD", "err", err)
		return solveSVD(A, b)
	}
	res = lsqResult{
		coeffs: x.RawVector().Data,
		cond:   ch.Cond(),
		rank:   c,
		method: SolverNormalEquations,
	}
	return
}
