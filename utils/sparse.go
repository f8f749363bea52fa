package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a writable sparse matrix used to assemble operators entry by entry.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the compressed, read only form of a DOK used for products.
type CSR struct {
	M    *sparse.CSR
	name string
}

func (m CSR) Dims() (r, c int) { return m.M.Dims() }

// MulVec returns m x.
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
		yv     = mat.NewVecDense(nr, nil)
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch multiplying %q: %d columns, vector length %d", m.name, nc, len(x)))
	}
	yv.MulVec(m.M, mat.NewVecDense(nc, x))
	y = yv.RawVector().Data
	return
}
