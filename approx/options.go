package approx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/types"
)

// LinearSolver selects the least squares method of the float path.
type LinearSolver uint8

const (
	SolverSVD LinearSolver = iota
	SolverQR
	SolverNormalEquations
)

var LinearSolverNameMap = map[string]LinearSolver{
	"svd":      SolverSVD,
	"qr":       SolverQR,
	"normal":   SolverNormalEquations,
	"cholesky": SolverNormalEquations,
}

func (ls LinearSolver) String() string {
	switch ls {
	case SolverSVD:
		return "svd"
	case SolverQR:
		return "qr"
	case SolverNormalEquations:
		return "normal"
	}
	return fmt.Sprintf("LinearSolver(%d)", ls)
}

func NewLinearSolver(label string) (ls LinearSolver, err error) {
	var ok bool
	if ls, ok = LinearSolverNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown linear solver %q", label)
	}
	return
}

type options struct {
	basis     types.BasisType
	precision types.Precision
	density   float64
	solver    LinearSolver
	workers   int
	nodes     types.NodeType
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		basis:     types.Chebyshev,
		precision: types.FloatPrecision,
		density:   1,
		solver:    SolverSVD,
		nodes:     types.NodeDefault,
	}
}

type Option func(*options)

func WithBasis(bt types.BasisType) Option { return func(o *options) { o.basis = bt } }

func WithPrecision(p types.Precision) Option { return func(o *options) { o.precision = p } }

// WithDensityReduction samples on ceil(GN·factor) instead of GN, factor in (0,1].
func WithDensityReduction(factor float64) Option {
	return func(o *options) { o.density = factor }
}

func WithLinearSolver(ls LinearSolver) Option { return func(o *options) { o.solver = ls } }

// WithWorkers bounds objective evaluation parallelism; zero means NumCPU.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

func WithNodes(nt types.NodeType) Option { return func(o *options) { o.nodes = nt } }

func WithMetrics(r *metrics.Recorder) Option { return func(o *options) { o.metrics = r } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func (o *options) validate() error {
	if !(o.density > 0 && o.density <= 1) {
		return fmt.Errorf("%w: density reduction factor %v outside (0,1]", types.ErrInvalidGrid, o.density)
	}
	if o.workers < 0 {
		return fmt.Errorf("negative worker count %d", o.workers)
	}
	switch o.precision {
	case types.FloatPrecision, types.RationalPrecision:
	default:
		return fmt.Errorf("unsupported precision %v", o.precision)
	}
	switch o.solver {
	case SolverSVD, SolverQR, SolverNormalEquations:
	default:
		return fmt.Errorf("unsupported linear solver %v", o.solver)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return nil
}
