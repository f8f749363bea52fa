// Package pipeline chains approximation, critical point solving, refinement
// and classification into one run.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/notargets/globtim/approx"
	"github.com/notargets/globtim/critical"
	"github.com/notargets/globtim/metrics"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
)

type Result struct {
	RunID       string
	Domain      problem.Domain
	Config      Config
	Approximant *approx.Approximant
	Residuals   approx.ResidualSummary
	Solutions   critical.Solutions
	Table       critical.Table
	Minima      critical.Table
	Groups      []critical.Group
	Metrics     metrics.Snapshot
}

// Run executes every stage on d. On a stage failure the partially filled
// result is returned with the error.
func Run(ctx context.Context, d problem.Domain, cfg Config) (res *Result, err error) {
	var (
		rec   = metrics.New()
		log   = cfg.logger().With("run_id", rec.RunID, "objective", d.Objective.Name)
		aopts = append(cfg.approxOptions(), approx.WithMetrics(rec), approx.WithLogger(log))
		copts = append(cfg.criticalOptions(), critical.WithMetrics(rec), critical.WithLogger(log))
	)
	res = &Result{RunID: rec.RunID, Domain: d, Config: cfg}
	defer func() { res.Metrics = rec.Snapshot() }()

	log.Info("approximation", "degree", cfg.Degree, "basis", cfg.Basis, "GN", d.GN)
	if res.Approximant, err = approx.Constructor(ctx, d, cfg.Degree, aopts...); err != nil {
		return
	}
	if res.Residuals, err = res.Approximant.ResidualStats(); err != nil {
		return
	}
	log.Info("approximant", "coefficients", len(res.Approximant.Coeffs),
		"l2", res.Approximant.L2Norm, "cond", res.Approximant.Cond,
		"eval_errors", res.Approximant.EvalErrors)

	if res.Solutions, err = critical.SolveCriticalPoints(ctx, res.Approximant, cfg.newSolver(), copts...); err != nil {
		return
	}
	if res.Table, err = critical.ProcessCriticalPoints(ctx, res.Solutions.Points, d, copts...); err != nil {
		return
	}
	if res.Table, res.Minima, err = critical.ClassifyCriticalPoints(ctx, res.Table, d, copts...); err != nil {
		return
	}
	if cfg.ClusterTol > 0 {
		res.Groups = critical.Cluster(res.Table, cfg.ClusterTol)
	}
	log.Info("critical points", "isolated", res.Solutions.Isolated,
		"points", len(res.Table), "minima", len(res.Minima), "discarded", res.Solutions.Discarded)
	return
}

type Summary struct {
	Points, Minima, Maxima, Saddles, Degenerate, Errors int
	BestX                                               []float64
	BestValue                                           float64
	MinimaMean, MinimaStdDev, MinimaMedian              float64
}

// Summary tabulates the classified points and the statistics of the minimum
// values. Statistics are NaN when no minimum has a finite value.
func (r *Result) Summary() (s Summary) {
	t := r.Table
	s = Summary{
		Points:       len(t),
		Minima:       t.Count(types.Minimum),
		Maxima:       t.Count(types.Maximum),
		Saddles:      t.Count(types.Saddle),
		Degenerate:   t.Count(types.Degenerate),
		Errors:       t.Count(types.ClassificationError),
		BestValue:    math.NaN(),
		MinimaMean:   math.NaN(),
		MinimaStdDev: math.NaN(),
		MinimaMedian: math.NaN(),
	}
	if i := t.Lowest(); i >= 0 {
		s.BestX, s.BestValue = t[i].Best()
	}
	var values stats.Float64Data
	for i := range r.Minima {
		if _, v := r.Minima[i].Best(); !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return
	}
	s.MinimaMean, _ = stats.Mean(values)
	s.MinimaStdDev, _ = stats.StandardDeviation(values)
	s.MinimaMedian, _ = stats.Median(values)
	return
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d critical points: %d minima, %d maxima, %d saddles, %d degenerate, %d errors\n",
		s.Points, s.Minima, s.Maxima, s.Saddles, s.Degenerate, s.Errors)
	if s.BestX != nil {
		fmt.Fprintf(&b, "Lowest value %.10g at %v\n", s.BestValue, s.BestX)
	}
	if !math.IsNaN(s.MinimaMean) {
		fmt.Fprintf(&b, "Minimum values: mean %.6g, std dev %.6g, median %.6g\n",
			s.MinimaMean, s.MinimaStdDev, s.MinimaMedian)
	}
	return b.String()
}
