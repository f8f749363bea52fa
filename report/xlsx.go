package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/notargets/globtim/pipeline"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SheetPoints       = "critical_points"
	SheetMinima       = "minima"
	SheetApproximant  = "approximant"
	SheetCoefficients = "coefficients"
	SheetMetrics      = "metrics"
)

// xlsxCell maps values a spreadsheet cannot hold as numbers to text.
func xlsxCell(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
	case fmt.Stringer:
		return x.String()
	}
	return v
}

func setRows(f *excelize.File, sheet string, header []string, rows [][]interface{}) (err error) {
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err = f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return
	}
	for i, row := range rows {
		var cell string
		if cell, err = excelize.CoordinatesToCellName(1, i+2); err != nil {
			return
		}
		conv := make([]interface{}, len(row))
		for j, v := range row {
			conv[j] = xlsxCell(v)
		}
		if err = f.SetSheetRow(sheet, cell, &conv); err != nil {
			return
		}
	}
	return
}

// WriteXLSX writes a workbook with the critical point table, the minima, the
// approximant diagnostics, its coefficients and the run metrics.
func WriteXLSX(path string, res *pipeline.Result) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = f.SetSheetName("Sheet1", SheetPoints); err != nil {
		return
	}
	for _, sheet := range []string{SheetMinima, SheetApproximant, SheetCoefficients, SheetMetrics} {
		if _, err = f.NewSheet(sheet); err != nil {
			return
		}
	}
	n := max(Dim(res.Table), res.Domain.Dim)
	for _, sheet := range []string{SheetPoints, SheetMinima} {
		table := res.Table
		if sheet == SheetMinima {
			table = res.Minima
		}
		rows := make([][]interface{}, len(table))
		for i := range table {
			rows[i] = Cells(&table[i], n)
		}
		if err = setRows(f, sheet, Header(n), rows); err != nil {
			return
		}
	}
	if err = setRows(f, SheetApproximant, []string{"field", "value"}, summaryRows(res)); err != nil {
		return
	}
	if a := res.Approximant; a != nil {
		rows := make([][]interface{}, len(a.Coeffs))
		for j, c := range a.Coeffs {
			for _, e := range a.Support.Alphas[j] {
				rows[j] = append(rows[j], e)
			}
			rows[j] = append(rows[j], c)
		}
		if err = setRows(f, SheetCoefficients, append(indexed("alpha", a.Dim()), "coefficient"), rows); err != nil {
			return
		}
	}
	var rows [][]interface{}
	for _, st := range res.Metrics.Stages {
		rows = append(rows, []interface{}{st.Name, "stage_seconds", st.Duration.Seconds(), st.MemUsage})
	}
	for _, name := range sortedKeys(res.Metrics.Counters) {
		rows = append(rows, []interface{}{name, "counter", res.Metrics.Counters[name], ""})
	}
	if err = setRows(f, SheetMetrics, []string{"name", "kind", "value", "memory"}, rows); err != nil {
		return
	}
	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func summaryRows(res *pipeline.Result) (rows [][]interface{}) {
	add := func(k string, v interface{}) { rows = append(rows, []interface{}{k, v}) }
	add("run_id", res.RunID)
	add("objective", res.Domain.Objective.Name)
	add("dimension", res.Domain.Dim)
	add("center", fmt.Sprint(res.Domain.Center))
	add("range", fmt.Sprint(res.Domain.Range))
	if a := res.Approximant; a != nil {
		add("degree", a.Degree.String())
		add("basis", a.Basis)
		add("precision", a.Precision)
		add("linear_solver", a.Solver)
		add("gn", a.GN)
		add("grid_points", a.Grid.N)
		add("coefficients", len(a.Coeffs))
		add("cond", a.Cond)
		add("rank", a.Rank)
		add("l2_norm", a.L2Norm)
		add("eval_errors", a.EvalErrors)
		add("residual_mean", res.Residuals.Mean)
		add("residual_std_dev", res.Residuals.StdDev)
		add("residual_median", res.Residuals.Median)
		add("residual_max_abs", res.Residuals.MaxAbs)
		add("residual_rms", res.Residuals.RMS)
	}
	sol := res.Solutions
	add("isolated", sol.Isolated)
	add("bezout_bound", sol.BezoutBound)
	add("total_complex", sol.TotalComplex)
	add("paths", sol.Paths)
	add("failed_paths", sol.Failed)
	add("discarded", sol.Discarded)
	return
}
