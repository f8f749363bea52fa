package utils

import (
	"math"
)

// Powers fills dst[k] = x^k for k = 0..len(dst)-1.
func Powers(x float64, dst []float64) []float64 {
	if len(dst) == 0 {
		return dst
	}
	dst[0] = 1
	for k := 1; k < len(dst); k++ {
		dst[k] = dst[k-1] * x
	}
	return dst
}

// ComplexPowers fills dst[k] = z^k for k = 0..len(dst)-1.
func ComplexPowers(z complex128, dst []complex128) []complex128 {
	if len(dst) == 0 {
		return dst
	}
	dst[0] = 1
	for k := 1; k < len(dst); k++ {
		dst[k] = dst[k-1] * z
	}
	return dst
}

// Ceil returns ceil(a*f) as an int, for density reductions.
func Ceil(a int, f float64) int {
	return int(math.Ceil(float64(a)*f - NODETOL))
}
