package pipeline

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notargets/globtim/approx"
	"github.com/notargets/globtim/critical"
	"github.com/notargets/globtim/solver"
	"github.com/notargets/globtim/solver/homotopy"
	"github.com/notargets/globtim/solver/newton"
	"github.com/notargets/globtim/types"
)

type SolverKind uint8

const (
	SolverHomotopy SolverKind = iota
	SolverNewton
)

var SolverKindNameMap = map[string]SolverKind{
	"homotopy":     SolverHomotopy,
	"continuation": SolverHomotopy,
	"newton":       SolverNewton,
	"lattice":      SolverNewton,
}

func NewSolverKind(label string) (sk SolverKind, err error) {
	var ok bool
	if sk, ok = SolverKindNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unable to use solver named %s", label)
	}
	return
}

func (sk SolverKind) String() string {
	switch sk {
	case SolverHomotopy:
		return "homotopy"
	case SolverNewton:
		return "newton"
	}
	return fmt.Sprintf("SolverKind(%d)", sk)
}

// Config gathers the options of every stage. Zero tolerances select the stage
// defaults; ClusterTol zero disables clustering.
type Config struct {
	Degree       types.Degree
	Basis        types.BasisType
	Precision    types.Precision
	Nodes        types.NodeType
	LinearSolver approx.LinearSolver
	Density      float64
	Solver       SolverKind
	Seed         uint64
	Timeout      time.Duration // zero selects the default, negative disables it
	Refine       bool
	RefineMethod critical.RefineMethod
	GradTol      float64
	CloseTol     float64
	EigTol       float64
	CoeffTol     float64
	DomainTol    float64
	ClusterTol   float64
	Workers      int
	Logger       *slog.Logger
}

func DefaultConfig(degree int) Config {
	return Config{
		Degree:  types.TotalDegree(degree),
		Basis:   types.Chebyshev,
		Density: 1,
		Seed:    1,
		Refine:  true,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c Config) approxOptions() []approx.Option {
	opts := []approx.Option{
		approx.WithBasis(c.Basis),
		approx.WithPrecision(c.Precision),
		approx.WithNodes(c.Nodes),
		approx.WithLinearSolver(c.LinearSolver),
		approx.WithWorkers(c.Workers),
	}
	if c.Density != 0 {
		opts = append(opts, approx.WithDensityReduction(c.Density))
	}
	return opts
}

func (c Config) criticalOptions() []critical.Option {
	opts := []critical.Option{
		critical.Refine(c.Refine),
		critical.WithRefineMethod(c.RefineMethod),
		critical.Workers(c.Workers),
	}
	switch {
	case c.Timeout > 0:
		opts = append(opts, critical.Timeout(c.Timeout))
	case c.Timeout < 0:
		opts = append(opts, critical.Timeout(0))
	}
	for _, tol := range []struct {
		v   float64
		opt func(float64) critical.Option
	}{
		{c.GradTol, critical.GradTol},
		{c.CloseTol, critical.CloseTolerance},
		{c.EigTol, critical.EigenvalueTolerance},
		{c.CoeffTol, critical.CoefficientTolerance},
		{c.DomainTol, critical.DomainTolerance},
	} {
		if tol.v != 0 {
			opts = append(opts, tol.opt(tol.v))
		}
	}
	return opts
}

func (c Config) newSolver() solver.Solver {
	switch c.Solver {
	case SolverNewton:
		s := newton.New()
		s.Workers, s.Logger = c.Workers, c.logger()
		return s
	default:
		s := homotopy.New()
		s.Seed, s.Workers, s.Logger = c.Seed, c.Workers, c.logger()
		return s
	}
}
