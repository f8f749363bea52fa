// Package report writes critical point tables and run summaries as CSV and
// XLSX. Column names are the snake_case record fields; vector fields expand
// to one column per coordinate with a 1-based suffix.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/notargets/globtim/critical"
	"github.com/notargets/globtim/pipeline"
)

// Dim returns the largest coordinate count over the rows of t.
func Dim(t critical.Table) (n int) {
	for i := range t {
		n = max(n, len(t[i].X))
	}
	return
}

func indexed(name string, n int) (cols []string) {
	for k := 1; k <= n; k++ {
		cols = append(cols, fmt.Sprintf("%s_%d", name, k))
	}
	return
}

// Header returns the column names of a table of dimension n.
func Header(n int) (h []string) {
	h = append(h, indexed("x", n)...)
	h = append(h, indexed("normalized", n)...)
	h = append(h, "value")
	h = append(h, indexed("refined", n)...)
	h = append(h, "refined_value", "refine_steps", "converged", "close", "refined_in_domain", "grad_norm", "type")
	h = append(h, indexed("eigenvalue", n)...)
	h = append(h, "hessian_norm", "hessian_cond", "determinant", "critical_eigenvalue", "status", "error")
	return
}

// Cells returns the row values in Header order. Missing vector entries are
// NaN, non-numeric fields are strings.
func Cells(r *critical.Record, n int) (c []interface{}) {
	vec := func(v []float64) {
		for k := 0; k < n; k++ {
			if k < len(v) {
				c = append(c, v[k])
			} else {
				c = append(c, math.NaN())
			}
		}
	}
	vec(r.X)
	vec(r.Normalized)
	c = append(c, r.Value)
	vec(r.Refined)
	c = append(c, r.RefinedValue, r.RefineSteps, r.Converged, r.Close, r.RefinedInDomain, r.GradNorm, r.Type.String())
	vec(r.Eigenvalues)
	errText := ""
	if r.Err != nil {
		errText = r.Err.Error()
	}
	c = append(c, r.HessianNorm, r.HessianCond, r.Determinant, r.CriticalEigenvalue, r.Status, errText)
	return
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func writeCSV(w io.Writer, header []string, rows [][]interface{}) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the critical point table, one row per record.
func WriteCSV(w io.Writer, t critical.Table) error {
	var (
		n    = Dim(t)
		rows = make([][]interface{}, len(t))
	)
	for i := range t {
		rows[i] = Cells(&t[i], n)
	}
	return writeCSV(w, Header(n), rows)
}

var SweepHeader = []string{"objective", "degree", "coefficients", "l2_norm", "cond", "points", "minima", "best_value", "error"}

func sweepCells(objective string, e pipeline.SweepEntry) []interface{} {
	errText := ""
	if e.Err != nil {
		errText = e.Err.Error()
	}
	return []interface{}{objective, e.Degree.String(), e.Coefficients, e.L2Norm, e.Cond,
		e.Points, e.Minima, e.BestValue, errText}
}

// WriteSweepCSV writes a degree sweep in the format read by ReadSweepCSV.
func WriteSweepCSV(w io.Writer, objective string, entries []pipeline.SweepEntry) error {
	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		rows[i] = sweepCells(objective, e)
	}
	return writeCSV(w, SweepHeader, rows)
}

// SweepRecord is one line of a sweep file.
type SweepRecord struct {
	Objective    string
	Degree       int
	Coefficients int
	L2Norm       float64
	Cond         float64
	Points       int
	Minima       int
	BestValue    float64
	Err          string
}

// ReadSweepCSV parses a sweep file written by WriteSweepCSV. Only total
// degree sweeps are representable.
func ReadSweepCSV(r io.Reader) (recs []SweepRecord, err error) {
	var (
		records [][]string
	)
	cr := csv.NewReader(r)
	if records, err = cr.ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != len(SweepHeader) {
			return nil, fmt.Errorf("line %d: %d fields, expected %d", i+1, len(rec), len(SweepHeader))
		}
		var (
			sr   = SweepRecord{Objective: rec[0], Err: rec[8]}
			perr error
		)
		ints := []struct {
			dst *int
			src string
		}{{&sr.Degree, rec[1]}, {&sr.Coefficients, rec[2]}, {&sr.Points, rec[5]}, {&sr.Minima, rec[6]}}
		for _, f := range ints {
			if *f.dst, perr = strconv.Atoi(f.src); perr != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, perr)
			}
		}
		floats := []struct {
			dst *float64
			src string
		}{{&sr.L2Norm, rec[3]}, {&sr.Cond, rec[4]}, {&sr.BestValue, rec[7]}}
		for _, f := range floats {
			if *f.dst, perr = strconv.ParseFloat(f.src, 64); perr != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, perr)
			}
		}
		recs = append(recs, sr)
	}
	return
}

func sortedKeys(m map[string]int) (keys []string) {
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
