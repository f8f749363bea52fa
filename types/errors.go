package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension indicates a problem dimension below one.
	ErrInvalidDimension = errors.New("globtim: dimension must be at least 1")
	// ErrInvalidDegree indicates a negative degree or a malformed anisotropic degree.
	ErrInvalidDegree = errors.New("globtim: invalid polynomial degree")
	// ErrInvalidGrid indicates a sampling density below one.
	ErrInvalidGrid = errors.New("globtim: grid density must be at least 1")
	// ErrInvalidRange indicates a non positive sample range.
	ErrInvalidRange = errors.New("globtim: sample range must be strictly positive")
	// ErrDimensionMismatch indicates inconsistent dimensions between inputs.
	ErrDimensionMismatch = errors.New("globtim: dimension mismatch")
	// ErrObjectiveEvaluation indicates the objective failed at a point.
	ErrObjectiveEvaluation = errors.New("globtim: objective evaluation failed")
	// ErrAllEvaluationsFailed indicates no grid sample could be evaluated.
	ErrAllEvaluationsFailed = errors.New("globtim: objective failed at every sample")
	// ErrSolverTimeout indicates the polynomial system solver exceeded its wall clock budget.
	ErrSolverTimeout = errors.New("globtim: polynomial system solver timed out")
	// ErrSolverFailure indicates the polynomial system solver could not complete.
	ErrSolverFailure = errors.New("globtim: polynomial system solver failed")
	// ErrHessianFailure indicates the Hessian or its spectrum could not be computed.
	ErrHessianFailure = errors.New("globtim: hessian evaluation failed")
)

// EvaluationError records an objective failure at one point.
type EvaluationError struct {
	Index   int
	X       []float64
	Wrapped error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s at point %d %v: %v", ErrObjectiveEvaluation, e.Index, e.X, e.Wrapped)
}

func (e *EvaluationError) Unwrap() []error {
	return []error{ErrObjectiveEvaluation, e.Wrapped}
}
