// Package testfunctions is a library of benchmark objectives with known
// critical points, each with a hyperdual form for exact Hessians.
package testfunctions

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/types"
)

// KnownPoint is an analytically known critical point.
type KnownPoint struct {
	X     []float64
	Type  types.PointType
	Value float64
}

type Benchmark struct {
	Name        string
	Description string
	Dim         int       // fixed dimension, zero when any n >= MinDim works
	MinDim      int
	Center      []float64 // default domain, broadcast when of length one
	Range       []float64
	f           func(x []float64) float64
	hd          func(x []hyperdual.Number) hyperdual.Number
	known       func(n int) []KnownPoint
}

func (b Benchmark) checkDim(n int) error {
	switch {
	case b.Dim != 0 && n != b.Dim:
		return fmt.Errorf("%w: %s is defined in dimension %d, got %d",
			types.ErrDimensionMismatch, b.Name, b.Dim, n)
	case n < max(b.MinDim, 1):
		return fmt.Errorf("%w: %s needs dimension >= %d, got %d",
			types.ErrInvalidDimension, b.Name, max(b.MinDim, 1), n)
	}
	return nil
}

func (b Benchmark) Objective(n int) (obj problem.Objective, err error) {
	if err = b.checkDim(n); err != nil {
		return
	}
	obj = problem.NewObjective(b.Name, n, b.f).WithHyperdual(b.hd)
	return
}

// Domain returns the default domain of the benchmark in dimension n.
func (b Benchmark) Domain(n, GN int) (d problem.Domain, err error) {
	var (
		obj    problem.Objective
		center = make([]float64, n)
	)
	if obj, err = b.Objective(n); err != nil {
		return
	}
	for i := range center {
		if len(b.Center) == 1 {
			center[i] = b.Center[0]
		} else if i < len(b.Center) {
			center[i] = b.Center[i]
		}
	}
	return problem.NewDomain(obj, center, b.Range, GN)
}

// Known returns the known critical points in dimension n, nil when none are
// tabulated.
func (b Benchmark) Known(n int) []KnownPoint {
	if b.known == nil || b.checkDim(n) != nil {
		return nil
	}
	return b.known(n)
}

var registry = map[string]Benchmark{}

func register(b Benchmark) Benchmark {
	registry[b.Name] = b
	return b
}

func Lookup(name string) (b Benchmark, err error) {
	var ok bool
	if b, ok = registry[name]; !ok {
		err = fmt.Errorf("unknown test function %q, available: %v", name, Names())
	}
	return
}

func Names() (names []string) {
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func c(v float64) hyperdual.Number { return hyperdual.Number{Real: v} }

func sq(x hyperdual.Number) hyperdual.Number { return hyperdual.Mul(x, x) }

var (
	Sphere = register(Benchmark{
		Name:        "sphere",
		Description: "Σ x_i², one minimum at the origin",
		MinDim:      1,
		Center:      []float64{0},
		Range:       []float64{1},
		f: func(x []float64) (f float64) {
			for _, xi := range x {
				f += xi * xi
			}
			return
		},
		hd: func(x []hyperdual.Number) (f hyperdual.Number) {
			for _, xi := range x {
				f = hyperdual.Add(f, sq(xi))
			}
			return
		},
		known: func(n int) []KnownPoint {
			return []KnownPoint{{X: make([]float64, n), Type: types.Minimum, Value: 0}}
		},
	})

	DoubleWell = register(Benchmark{
		Name:        "double_well",
		Description: "Σ (x_i² - 1/4)², 3^n critical points on {-1/2, 0, 1/2}^n",
		MinDim:      1,
		Center:      []float64{0},
		Range:       []float64{1},
		f: func(x []float64) (f float64) {
			for _, xi := range x {
				v := xi*xi - 0.25
				f += v * v
			}
			return
		},
		hd: func(x []hyperdual.Number) (f hyperdual.Number) {
			for _, xi := range x {
				f = hyperdual.Add(f, sq(hyperdual.Sub(sq(xi), c(0.25))))
			}
			return
		},
		known: doubleWellPoints,
	})

	Deuflhard = register(Benchmark{
		Name:        "deuflhard",
		Description: "(exp(x²+y²) - 3)² + (x + y - sin(3(x+y)))²",
		Dim:         2,
		Center:      []float64{0},
		Range:       []float64{1.2},
		f: func(x []float64) float64 {
			a := math.Exp(x[0]*x[0]+x[1]*x[1]) - 3
			s := x[0] + x[1]
			b := s - math.Sin(3*s)
			return a*a + b*b
		},
		hd: func(x []hyperdual.Number) hyperdual.Number {
			a := hyperdual.Sub(hyperdual.Exp(hyperdual.Add(sq(x[0]), sq(x[1]))), c(3))
			s := hyperdual.Add(x[0], x[1])
			b := hyperdual.Sub(s, hyperdual.Sin(hyperdual.Scale(3, s)))
			return hyperdual.Add(sq(a), sq(b))
		},
	})

	Rosenbrock = register(Benchmark{
		Name:        "rosenbrock",
		Description: "Σ 100(x_{i+1} - x_i²)² + (1 - x_i)², minimum at (1,...,1)",
		MinDim:      2,
		Center:      []float64{0},
		Range:       []float64{2},
		f: func(x []float64) (f float64) {
			for i := 0; i+1 < len(x); i++ {
				a, b := x[i+1]-x[i]*x[i], 1-x[i]
				f += 100*a*a + b*b
			}
			return
		},
		hd: func(x []hyperdual.Number) (f hyperdual.Number) {
			for i := 0; i+1 < len(x); i++ {
				a := hyperdual.Sub(x[i+1], sq(x[i]))
				b := hyperdual.Sub(c(1), x[i])
				f = hyperdual.Add(f, hyperdual.Add(hyperdual.Scale(100, sq(a)), sq(b)))
			}
			return
		},
		known: func(n int) []KnownPoint {
			x := make([]float64, n)
			for i := range x {
				x[i] = 1
			}
			return []KnownPoint{{X: x, Type: types.Minimum, Value: 0}}
		},
	})

	SixHumpCamel = register(Benchmark{
		Name:        "camel",
		Description: "six-hump camel, two global minima of value -1.0316",
		Dim:         2,
		Center:      []float64{0, 0},
		Range:       []float64{2, 1},
		f: func(x []float64) float64 {
			x2, y2 := x[0]*x[0], x[1]*x[1]
			return (4-2.1*x2+x2*x2/3)*x2 + x[0]*x[1] + (-4+4*y2)*y2
		},
		hd: func(x []hyperdual.Number) hyperdual.Number {
			x2, y2 := sq(x[0]), sq(x[1])
			a := hyperdual.Add(hyperdual.Sub(c(4), hyperdual.Scale(2.1, x2)), hyperdual.Scale(1./3, sq(x2)))
			b := hyperdual.Add(c(-4), hyperdual.Scale(4, y2))
			return hyperdual.Add(hyperdual.Add(hyperdual.Mul(a, x2), hyperdual.Mul(x[0], x[1])), hyperdual.Mul(b, y2))
		},
		known: func(int) []KnownPoint {
			return []KnownPoint{
				{X: []float64{0.08984201310031807, -0.7126564030207396}, Type: types.Minimum, Value: -1.0316284534898774},
				{X: []float64{-0.08984201310031807, 0.7126564030207396}, Type: types.Minimum, Value: -1.0316284534898774},
			}
		},
	})

	Himmelblau = register(Benchmark{
		Name:        "himmelblau",
		Description: "(x² + y - 11)² + (x + y² - 7)², four minima of value 0",
		Dim:         2,
		Center:      []float64{0},
		Range:       []float64{5},
		f: func(x []float64) float64 {
			a, b := x[0]*x[0]+x[1]-11, x[0]+x[1]*x[1]-7
			return a*a + b*b
		},
		hd: func(x []hyperdual.Number) hyperdual.Number {
			a := hyperdual.Sub(hyperdual.Add(sq(x[0]), x[1]), c(11))
			b := hyperdual.Sub(hyperdual.Add(x[0], sq(x[1])), c(7))
			return hyperdual.Add(sq(a), sq(b))
		},
		known: func(int) []KnownPoint {
			return []KnownPoint{
				{X: []float64{3, 2}, Type: types.Minimum},
				{X: []float64{-2.805118086952745, 3.131312518250573}, Type: types.Minimum},
				{X: []float64{-3.779310253377747, -3.283185991286169}, Type: types.Minimum},
				{X: []float64{3.5844283403304917, -1.8481265269644034}, Type: types.Minimum},
				{X: []float64{-0.2708445906673476, -0.9230385564799816}, Type: types.Maximum, Value: 181.6165215225827},
			}
		},
	})

	Rastrigin = register(Benchmark{
		Name:        "rastrigin",
		Description: "10n + Σ (x_i² - 10 cos(2π x_i)), highly multimodal",
		MinDim:      1,
		Center:      []float64{0},
		Range:       []float64{5.12},
		f: func(x []float64) float64 {
			f := 10 * float64(len(x))
			for _, xi := range x {
				f += xi*xi - 10*math.Cos(2*math.Pi*xi)
			}
			return f
		},
		hd: func(x []hyperdual.Number) hyperdual.Number {
			f := c(10 * float64(len(x)))
			for _, xi := range x {
				f = hyperdual.Add(f, hyperdual.Sub(sq(xi), hyperdual.Scale(10, hyperdual.Cos(hyperdual.Scale(2*math.Pi, xi)))))
			}
			return f
		},
		known: func(n int) []KnownPoint {
			return []KnownPoint{{X: make([]float64, n), Type: types.Minimum, Value: 0}}
		},
	})
)

// doubleWellPoints enumerates {-1/2, 0, 1/2}^n: a minimum when no coordinate
// is zero, the maximum when all are, a saddle otherwise.
func doubleWellPoints(n int) (pts []KnownPoint) {
	var (
		levels = []float64{-0.5, 0, 0.5}
		idx    = make([]int, n)
		total  = int(math.Pow(3, float64(n)))
	)
	for p := 0; p < total; p++ {
		var (
			x     = make([]float64, n)
			zeros int
			value float64
		)
		for k := range x {
			x[k] = levels[idx[k]]
			if x[k] == 0 {
				zeros++
				value += 0.0625
			}
		}
		kp := KnownPoint{X: x, Type: types.Saddle, Value: value}
		switch zeros {
		case 0:
			kp.Type = types.Minimum
		case n:
			kp.Type = types.Maximum
		}
		pts = append(pts, kp)
		for k := n - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < 3 {
				break
			}
			idx[k] = 0
		}
	}
	return
}
