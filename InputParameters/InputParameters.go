package InputParameters

import (
	"fmt"
	"time"

	"github.com/ghodss/yaml"

	"github.com/notargets/globtim/approx"
	"github.com/notargets/globtim/critical"
	"github.com/notargets/globtim/pipeline"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/testfunctions"
	"github.com/notargets/globtim/types"
)

// Parameters obtained from the YAML problem file
type InputParameters struct {
	Title        string    `yaml:"Title"`
	Function     string    `yaml:"Function"`  // name of a registered test function
	Dimension    int       `yaml:"Dimension"` // zero selects the function's fixed dimension, or 2
	Center       []float64 `yaml:"Center"`    // defaults to the function's domain
	Range        []float64 `yaml:"Range"`
	GN           int       `yaml:"GN"` // zero selects DefaultGN
	Degree       int       `yaml:"Degree"`
	Degrees      []int     `yaml:"Degrees"` // per dimension degree, overrides Degree
	Sweep        []int     `yaml:"Sweep"`
	Basis        string    `yaml:"Basis"`
	Precision    string    `yaml:"Precision"`
	Nodes        string    `yaml:"Nodes"`
	LinearSolver string    `yaml:"LinearSolver"`
	Density      float64   `yaml:"Density"`
	Solver       string    `yaml:"Solver"`
	Seed         uint64    `yaml:"Seed"`
	Timeout      string    `yaml:"Timeout"` // Go duration, e.g. 90s
	Refine       *bool     `yaml:"Refine"`
	RefineMethod string    `yaml:"RefineMethod"`
	GradTol      float64   `yaml:"GradTol"`
	CloseTol     float64   `yaml:"CloseTol"`
	EigTol       float64   `yaml:"EigTol"`
	CoeffTol     float64   `yaml:"CoeffTol"`
	DomainTol    float64   `yaml:"DomainTol"`
	ClusterTol   float64   `yaml:"ClusterTol"`
	Workers      int       `yaml:"Workers"`
}

const ExampleFile = `
########################################
Title: "Double well"
Function: double_well
Dimension: 2
Degree: 4
GN: 10
Basis: chebyshev   # or legendre, monomial
Precision: float64 # or rational
Solver: homotopy   # or newton
RefineMethod: bfgs # or newton
Sweep: [2, 4, 6]
########################################
`

// DefaultGN samples each dimension at 2d+3 nodes, leaving the fit
// overdetermined for every total degree d.
func DefaultGN(degree int) int {
	return max(2*degree+2, 4)
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Function\n", ip.Function)
	fmt.Printf("[%d]\t\t\t= Dimension\n", ip.dim())
	if len(ip.Degrees) != 0 {
		fmt.Printf("%v\t\t\t= Degrees\n", ip.Degrees)
	} else {
		fmt.Printf("[%d]\t\t\t= Degree\n", ip.Degree)
	}
	fmt.Printf("[%d]\t\t\t= GN\n", ip.gn())
	fmt.Printf("[%s]\t\t= Basis\n", orDefault(ip.Basis, "chebyshev"))
	fmt.Printf("[%s]\t\t= Precision\n", orDefault(ip.Precision, "float64"))
	fmt.Printf("[%s]\t\t= Solver\n", orDefault(ip.Solver, "homotopy"))
	fmt.Printf("[%s]\t\t\t= Refine Method\n", orDefault(ip.RefineMethod, "bfgs"))
	if len(ip.Sweep) != 0 {
		fmt.Printf("%v\t\t= Sweep\n", ip.Sweep)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (ip *InputParameters) benchmark() (testfunctions.Benchmark, error) {
	return testfunctions.Lookup(ip.Function)
}

func (ip *InputParameters) dim() int {
	if ip.Dimension != 0 {
		return ip.Dimension
	}
	if len(ip.Degrees) != 0 {
		return len(ip.Degrees)
	}
	if b, err := ip.benchmark(); err == nil && b.Dim != 0 {
		return b.Dim
	}
	return 2
}

func (ip *InputParameters) degree() types.Degree {
	if len(ip.Degrees) != 0 {
		return types.AnisotropicDegree(ip.Degrees...)
	}
	return types.TotalDegree(ip.Degree)
}

func (ip *InputParameters) gn() int {
	if ip.GN != 0 {
		return ip.GN
	}
	d := ip.Degree
	for _, dk := range ip.Degrees {
		d = max(d, dk)
	}
	for _, dk := range ip.Sweep {
		d = max(d, dk)
	}
	return DefaultGN(d)
}

// Validate checks every field that can be checked without sampling.
func (ip *InputParameters) Validate() (err error) {
	if _, err = ip.Domain(); err != nil {
		return
	}
	if _, err = ip.PipelineConfig(); err != nil {
		return
	}
	if err = ip.degree().Validate(ip.dim()); err != nil {
		return
	}
	for _, d := range ip.Sweep {
		if d < 0 {
			return fmt.Errorf("%w: sweep degree %d", types.ErrInvalidDegree, d)
		}
	}
	return
}

// Domain builds the problem domain, filling unset geometry from the test
// function defaults.
func (ip *InputParameters) Domain() (d problem.Domain, err error) {
	var (
		b testfunctions.Benchmark
		n = ip.dim()
	)
	if b, err = ip.benchmark(); err != nil {
		return
	}
	if d, err = b.Domain(n, ip.gn()); err != nil {
		return
	}
	center, rng := d.Center, d.Range
	if len(ip.Center) != 0 {
		center = ip.Center
	}
	if len(ip.Range) != 0 {
		rng = ip.Range
	}
	return problem.NewDomain(d.Objective, center, rng, ip.gn())
}

func (ip *InputParameters) PipelineConfig() (cfg pipeline.Config, err error) {
	cfg = pipeline.DefaultConfig(0)
	cfg.Degree = ip.degree()
	if ip.Basis != "" {
		if cfg.Basis, err = types.NewBasisType(ip.Basis); err != nil {
			return
		}
	}
	if ip.Precision != "" {
		if cfg.Precision, err = types.NewPrecision(ip.Precision); err != nil {
			return
		}
	}
	if cfg.Nodes, err = types.NewNodeType(ip.Nodes); err != nil {
		return
	}
	if ip.LinearSolver != "" {
		if cfg.LinearSolver, err = approx.NewLinearSolver(ip.LinearSolver); err != nil {
			return
		}
	}
	if ip.Solver != "" {
		if cfg.Solver, err = pipeline.NewSolverKind(ip.Solver); err != nil {
			return
		}
	}
	if ip.RefineMethod != "" {
		if cfg.RefineMethod, err = critical.NewRefineMethod(ip.RefineMethod); err != nil {
			return
		}
	}
	if ip.Timeout != "" {
		if cfg.Timeout, err = time.ParseDuration(ip.Timeout); err != nil {
			return
		}
	}
	if ip.Density != 0 {
		if ip.Density < 0 || ip.Density > 1 {
			err = fmt.Errorf("%w: density %v outside (0,1]", types.ErrInvalidGrid, ip.Density)
			return
		}
		cfg.Density = ip.Density
	}
	if ip.Seed != 0 {
		cfg.Seed = ip.Seed
	}
	if ip.Refine != nil {
		cfg.Refine = *ip.Refine
	}
	cfg.GradTol, cfg.CloseTol, cfg.EigTol = ip.GradTol, ip.CloseTol, ip.EigTol
	cfg.CoeffTol, cfg.DomainTol, cfg.ClusterTol = ip.CoeffTol, ip.DomainTol, ip.ClusterTol
	cfg.Workers = ip.Workers
	return
}
