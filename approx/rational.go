package approx

import (
	"math/big"

	"github.com/notargets/globtim/utils"
)

// solveRational solves the normal equations VᵀV c = Vᵀf exactly over the rows
// in valid, by Gauss-Jordan elimination. ok is false when VᵀV is singular.
func solveRational(V [][]*big.Rat, f []float64, valid []int) (c []*big.Rat, ok bool) {
	if len(valid) == 0 || len(V) == 0 {
		return
	}
	var (
		ar  = utils.RationalArith{}
		m   = len(V[0])
		aug = make([][]*big.Rat, m)
		tmp = new(big.Rat)
	)
	for j := range aug {
		aug[j] = make([]*big.Rat, m+1)
		for k := range aug[j] {
			aug[j][k] = new(big.Rat)
		}
	}
	for _, i := range valid {
		row := V[i]
		fi := ar.FromFloat(f[i])
		for j := 0; j < m; j++ {
			if row[j].Sign() == 0 {
				continue
			}
			for k := j; k < m; k++ {
				aug[j][k].Add(aug[j][k], tmp.Mul(row[j], row[k]))
			}
			aug[j][m].Add(aug[j][m], tmp.Mul(row[j], fi))
		}
	}
	for j := 0; j < m; j++ {
		for k := 0; k < j; k++ {
			aug[j][k].Set(aug[k][j])
		}
	}
	for col := 0; col < m; col++ {
		piv := -1
		for r := col; r < m; r++ {
			if aug[r][col].Sign() != 0 {
				piv = r
				break
			}
		}
		if piv < 0 {
			return nil, false
		}
		aug[col], aug[piv] = aug[piv], aug[col]
		inv := new(big.Rat).Inv(aug[col][col])
		for k := col; k <= m; k++ {
			aug[col][k].Mul(aug[col][k], inv)
		}
		for r := 0; r < m; r++ {
			if r == col || aug[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(aug[r][col])
			for k := col; k <= m; k++ {
				aug[r][k].Sub(aug[r][k], tmp.Mul(factor, aug[col][k]))
			}
		}
	}
	c = make([]*big.Rat, m)
	for j := range c {
		c[j] = aug[j][m]
	}
	ok = true
	return
}
