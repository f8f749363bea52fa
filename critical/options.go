package critical

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notargets/globtim/autodiff"
	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/utils"
)

// RefineMethod selects the local method polishing solver roots on the true
// objective.
type RefineMethod uint8

const (
	// RefineBFGS minimizes f from the root; it stays at minima and leaves
	// saddles and maxima, which are then flagged as not close.
	RefineBFGS RefineMethod = iota
	// RefineNewton solves ∇f = 0 and converges to stationary points of any type.
	RefineNewton
)

var RefineMethodNameMap = map[string]RefineMethod{
	"bfgs":   RefineBFGS,
	"newton": RefineNewton,
}

func NewRefineMethod(label string) (rm RefineMethod, err error) {
	var ok bool
	if rm, ok = RefineMethodNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown refinement method %q", label)
	}
	return
}

func (rm RefineMethod) String() string {
	switch rm {
	case RefineBFGS:
		return "bfgs"
	case RefineNewton:
		return "newton"
	}
	return fmt.Sprintf("RefineMethod(%d)", rm)
}

type config struct {
	coeffTol       float64
	domainTol      float64
	timeout        time.Duration
	refine         bool
	refineMethod   RefineMethod
	gradTol        float64
	maxIterations  int
	closeTol       float64
	eigTol         float64
	workers        int
	differentiator autodiff.Differentiator
	metrics        *metrics.Recorder
	logger         *slog.Logger
}

func newConfig(opts []Option) (c config) {
	c = config{
		coeffTol:      utils.COEFFTOL,
		domainTol:     utils.DOMAINTOL,
		timeout:       5 * time.Minute,
		refine:        true,
		refineMethod:  RefineBFGS,
		gradTol:       1e-6,
		maxIterations: 200,
		closeTol:      0.1,
		eigTol:        utils.EIGTOL,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return
}

type Option func(*config)

// CoefficientTolerance drops monomial coefficients below tol·max|c| before
// the gradient system is formed.
func CoefficientTolerance(tol float64) Option { return func(c *config) { c.coeffTol = tol } }

// DomainTolerance is the slack ε of the [-1-ε, 1+ε]^n root filter.
func DomainTolerance(eps float64) Option { return func(c *config) { c.domainTol = eps } }

// Timeout bounds the polynomial system solve; zero disables the limit.
func Timeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

func Refine(on bool) Option { return func(c *config) { c.refine = on } }

func WithRefineMethod(rm RefineMethod) Option { return func(c *config) { c.refineMethod = rm } }

// GradTol is the gradient norm under which a refined point counts as converged.
func GradTol(tol float64) Option { return func(c *config) { c.gradTol = tol } }

func MaxIterations(n int) Option { return func(c *config) { c.maxIterations = n } }

// CloseTolerance is the largest normalized coordinate shift for which a
// refined point still describes the root it started from.
func CloseTolerance(tol float64) Option { return func(c *config) { c.closeTol = tol } }

// EigenvalueTolerance separates zero eigenvalues from signed ones.
func EigenvalueTolerance(tol float64) Option { return func(c *config) { c.eigTol = tol } }

func Workers(n int) Option { return func(c *config) { c.workers = n } }

func WithDifferentiator(d autodiff.Differentiator) Option {
	return func(c *config) { c.differentiator = d }
}

func WithMetrics(r *metrics.Recorder) Option { return func(c *config) { c.metrics = r } }

func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }
