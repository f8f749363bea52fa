package types

import (
	"fmt"
	"strings"
)

type BasisType uint8

const (
	Chebyshev BasisType = iota
	Legendre
	Monomial
)

var BasisNameMap = map[string]BasisType{
	"chebyshev": Chebyshev,
	"cheb":      Chebyshev,
	"legendre":  Legendre,
	"leg":       Legendre,
	"monomial":  Monomial,
	"power":     Monomial,
}

func (bt BasisType) String() string {
	switch bt {
	case Chebyshev:
		return "chebyshev"
	case Legendre:
		return "legendre"
	case Monomial:
		return "monomial"
	}
	return fmt.Sprintf("BasisType(%d)", bt)
}

func NewBasisType(label string) (bt BasisType, err error) {
	var ok bool
	if bt, ok = BasisNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown basis type %q", label)
	}
	return
}

type Precision uint8

const (
	FloatPrecision Precision = iota
	RationalPrecision
)

var PrecisionNameMap = map[string]Precision{
	"float":    FloatPrecision,
	"float64":  FloatPrecision,
	"rational": RationalPrecision,
	"exact":    RationalPrecision,
}

func (p Precision) String() string {
	switch p {
	case FloatPrecision:
		return "float64"
	case RationalPrecision:
		return "rational"
	}
	return fmt.Sprintf("Precision(%d)", p)
}

func NewPrecision(label string) (p Precision, err error) {
	var ok bool
	if p, ok = PrecisionNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown precision %q", label)
	}
	return
}

// NodeType selects the 1-D sample placement rule. NodeDefault follows the basis:
// Chebyshev extrema for the Chebyshev basis, equispaced nodes otherwise.
type NodeType uint8

const (
	NodeDefault NodeType = iota
	NodeChebyshev
	NodeUniform
)

func (nt NodeType) String() string {
	switch nt {
	case NodeDefault:
		return "default"
	case NodeChebyshev:
		return "chebyshev"
	case NodeUniform:
		return "uniform"
	}
	return fmt.Sprintf("NodeType(%d)", nt)
}

var NodeNameMap = map[string]NodeType{
	"":           NodeDefault,
	"default":    NodeDefault,
	"chebyshev":  NodeChebyshev,
	"cheb":       NodeChebyshev,
	"uniform":    NodeUniform,
	"equispaced": NodeUniform,
}

func NewNodeType(label string) (nt NodeType, err error) {
	var ok bool
	if nt, ok = NodeNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown node type %q", label)
	}
	return
}

func (nt NodeType) Resolve(bt BasisType) NodeType {
	if nt != NodeDefault {
		return nt
	}
	if bt == Chebyshev {
		return NodeChebyshev
	}
	return NodeUniform
}

type PointType uint8

const (
	Unclassified PointType = iota
	Minimum
	Maximum
	Saddle
	Degenerate
	ClassificationError
)

func (pt PointType) String() string {
	switch pt {
	case Unclassified:
		return "unclassified"
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Saddle:
		return "saddle"
	case Degenerate:
		return "degenerate"
	case ClassificationError:
		return "error"
	}
	return fmt.Sprintf("PointType(%d)", pt)
}

// Degree is either an isotropic total degree (PerDim empty) or a per
// dimension tensor degree.
type Degree struct {
	Total  int
	PerDim []int
}

func TotalDegree(d int) Degree { return Degree{Total: d} }

func AnisotropicDegree(d ...int) Degree {
	pd := make([]int, len(d))
	copy(pd, d)
	return Degree{PerDim: pd}
}

func (d Degree) IsAnisotropic() bool { return len(d.PerDim) != 0 }

// Max returns the largest 1-D degree that can appear in dimension k.
func (d Degree) Max(k int) int {
	if d.IsAnisotropic() {
		return d.PerDim[k]
	}
	return d.Total
}

func (d Degree) Validate(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: n = %d", ErrInvalidDimension, n)
	}
	if !d.IsAnisotropic() {
		if d.Total < 0 {
			return fmt.Errorf("%w: total degree %d", ErrInvalidDegree, d.Total)
		}
		return nil
	}
	if len(d.PerDim) != n {
		return fmt.Errorf("%w: %d per-dimension degrees for dimension %d",
			ErrInvalidDegree, len(d.PerDim), n)
	}
	for k, dk := range d.PerDim {
		if dk < 0 {
			return fmt.Errorf("%w: degree[%d] = %d", ErrInvalidDegree, k, dk)
		}
	}
	return nil
}

func (d Degree) String() string {
	if d.IsAnisotropic() {
		return fmt.Sprintf("%v", d.PerDim)
	}
	return fmt.Sprintf("%d", d.Total)
}
