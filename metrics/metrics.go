// Package metrics collects stage timings and counters for one pipeline run.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notargets/globtim/utils"
)

// Counter names recorded by the pipeline stages.
const (
	GridPoints         = "grid_points"
	EvalErrors         = "eval_errors"
	Coefficients       = "coefficients"
	SolverPaths        = "solver_paths"
	SolverFailedPaths  = "solver_failed_paths"
	RealSolutions      = "real_solutions"
	InDomainSolutions  = "in_domain_solutions"
	DiscardedSolutions = "discarded_solutions"
	RefineFailures     = "refine_failures"
	ClassifyFailures   = "classify_failures"
)

type Recorder struct {
	RunID    string
	Start    time.Time
	mu       sync.Mutex
	stages   map[string]time.Duration
	order    []string
	counters map[string]int
	memory   map[string]string
}

func New() *Recorder {
	return &Recorder{
		RunID:    uuid.NewString(),
		Start:    time.Now(),
		stages:   make(map[string]time.Duration),
		counters: make(map[string]int),
		memory:   make(map[string]string),
	}
}

// Stage starts timing name and returns the function that stops it. Timings of
// repeated stages accumulate.
func (r *Recorder) Stage(name string) (stop func()) {
	if r == nil {
		return func() {}
	}
	t0 := time.Now()
	return func() {
		elapsed := time.Since(t0)
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.stages[name]; !ok {
			r.order = append(r.order, name)
		}
		r.stages[name] += elapsed
		r.memory[name] = utils.GetMemUsage()
	}
}

func (r *Recorder) Add(name string, delta int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.counters[name] += delta
	r.mu.Unlock()
}

func (r *Recorder) Set(name string, value int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.counters[name] = value
	r.mu.Unlock()
}

func (r *Recorder) Counter(name string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

func (r *Recorder) Duration(name string) time.Duration {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stages[name]
}

type StageTiming struct {
	Name     string
	Duration time.Duration
	MemUsage string
}

type Snapshot struct {
	RunID    string
	Elapsed  time.Duration
	Stages   []StageTiming
	Counters map[string]int
}

func (r *Recorder) Snapshot() (s Snapshot) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s = Snapshot{
		RunID:    r.RunID,
		Elapsed:  time.Since(r.Start),
		Stages:   make([]StageTiming, len(r.order)),
		Counters: make(map[string]int, len(r.counters)),
	}
	for i, name := range r.order {
		s.Stages[i] = StageTiming{Name: name, Duration: r.stages[name], MemUsage: r.memory[name]}
	}
	for k, v := range r.counters {
		s.Counters[k] = v
	}
	return
}

func (s Snapshot) String() string {
	var (
		b    strings.Builder
		keys = make([]string, 0, len(s.Counters))
	)
	fmt.Fprintf(&b, "Run %s, elapsed %v\n", s.RunID, s.Elapsed)
	for _, st := range s.Stages {
		fmt.Fprintf(&b, "  %-20s %12v  [%s]\n", st.Name, st.Duration, st.MemUsage)
	}
	for k := range s.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-20s %12d\n", k, s.Counters[k])
	}
	return b.String()
}
