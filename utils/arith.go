package utils

import (
	"math/big"
)

// Arith is the scalar field used by the recurrence and Vandermonde builders,
// letting one algorithm run in float64 or in exact rational arithmetic.
// Implementations must not mutate their arguments.
type Arith[T any] interface {
	Zero() T
	One() T
	FromFloat(v float64) T
	FromFrac(num, den int64) T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Float(a T) float64
}

type Float64Arith struct{}

func (Float64Arith) Zero() float64                     { return 0 }
func (Float64Arith) One() float64                      { return 1 }
func (Float64Arith) FromFloat(v float64) float64       { return v }
func (Float64Arith) FromFrac(num, den int64) float64   { return float64(num) / float64(den) }
func (Float64Arith) Add(a, b float64) float64          { return a + b }
func (Float64Arith) Sub(a, b float64) float64          { return a - b }
func (Float64Arith) Mul(a, b float64) float64          { return a * b }
func (Float64Arith) Float(a float64) float64           { return a }

// RationalArith allocates a fresh *big.Rat for every result.
type RationalArith struct{}

func (RationalArith) Zero() *big.Rat { return new(big.Rat) }
func (RationalArith) One() *big.Rat  { return big.NewRat(1, 1) }

// FromFloat converts v exactly; non-finite values map to zero.
func (RationalArith) FromFloat(v float64) *big.Rat {
	r := new(big.Rat)
	if r.SetFloat64(v) == nil {
		return new(big.Rat)
	}
	return r
}

func (RationalArith) FromFrac(num, den int64) *big.Rat { return big.NewRat(num, den) }
func (RationalArith) Add(a, b *big.Rat) *big.Rat       { return new(big.Rat).Add(a, b) }
func (RationalArith) Sub(a, b *big.Rat) *big.Rat       { return new(big.Rat).Sub(a, b) }
func (RationalArith) Mul(a, b *big.Rat) *big.Rat       { return new(big.Rat).Mul(a, b) }

func (RationalArith) Float(a *big.Rat) float64 {
	f, _ := a.Float64()
	return f
}

// Frac is an exact fraction num/den, den > 0.
type Frac struct {
	Num, Den int64
}

func (f Frac) Float() float64 { return float64(f.Num) / float64(f.Den) }

func (f Frac) IsZero() bool { return f.Num == 0 }
