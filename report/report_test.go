package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/notargets/globtim/critical"
	"github.com/notargets/globtim/pipeline"
	"github.com/notargets/globtim/testfunctions"
	"github.com/notargets/globtim/types"
)

func sampleTable() critical.Table {
	return critical.Table{
		{
			X: []float64{0.5, -0.5}, Normalized: []float64{0.5, -0.5}, Value: 0.25,
			Refined: []float64{0.5, -0.5}, RefinedValue: 0.25, RefineSteps: 3,
			Converged: true, Close: true, RefinedInDomain: true, GradNorm: 1e-9,
			Type: types.Minimum, Eigenvalues: []float64{2, 2},
			HessianNorm: math.Sqrt(8), HessianCond: 1, Determinant: 4, CriticalEigenvalue: 2,
			Status: critical.StatusOK,
		},
		{
			X: []float64{0, 0}, Normalized: []float64{0, 0}, Value: math.NaN(),
			RefinedValue: math.NaN(), GradNorm: math.NaN(),
			Type:        types.ClassificationError,
			HessianNorm: math.NaN(), HessianCond: math.NaN(), Determinant: math.NaN(), CriticalEigenvalue: math.NaN(),
			Status: critical.StatusClassificationFailed, Err: errors.New("hessian, failed"),
		},
	}
}

func TestHeader(t *testing.T) {
	h := Header(2)
	assert.Equal(t, []string{"x_1", "x_2", "normalized_1", "normalized_2", "value"}, h[:5])
	assert.Contains(t, h, "refined_in_domain")
	assert.Contains(t, h, "eigenvalue_2")
	assert.Equal(t, "error", h[len(h)-1])
	assert.Len(t, h, 4*2+14)
	assert.Len(t, Cells(&critical.Record{}, 2), len(h))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	h := records[0]
	col := func(name string) int {
		for i, c := range h {
			if c == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	assert.Equal(t, "0.5", records[1][col("x_1")])
	assert.Equal(t, "minimum", records[1][col("type")])
	assert.Equal(t, "true", records[1][col("converged")])
	assert.Equal(t, "3", records[1][col("refine_steps")])
	assert.Equal(t, "NaN", records[2][col("value")])
	assert.Equal(t, "NaN", records[2][col("refined_1")])
	assert.Equal(t, "hessian, failed", records[2][col("error")])
	assert.Equal(t, "classification_failed", records[2][col("status")])

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "value,refined_value"))
}

func TestSweepCSV(t *testing.T) {
	entries := []pipeline.SweepEntry{
		{Degree: types.TotalDegree(2), Coefficients: 6, L2Norm: 0.5, Cond: 3, Points: 1, Minima: 1, BestValue: -0.2},
		{Degree: types.TotalDegree(4), Coefficients: 15, L2Norm: 0.01, Cond: 12, BestValue: math.NaN(),
			Err: types.ErrSolverTimeout},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSweepCSV(&buf, "camel", entries))
	recs, err := ReadSweepCSV(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, SweepRecord{Objective: "camel", Degree: 2, Coefficients: 6, L2Norm: 0.5, Cond: 3,
		Points: 1, Minima: 1, BestValue: -0.2}, recs[0])
	assert.Equal(t, 4, recs[1].Degree)
	assert.True(t, math.IsNaN(recs[1].BestValue))
	assert.Equal(t, types.ErrSolverTimeout.Error(), recs[1].Err)

	_, err = ReadSweepCSV(strings.NewReader("objective,degree\ncamel,x\n"))
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	d, err := testfunctions.Sphere.Domain(2, 8)
	require.NoError(t, err)
	res, err := pipeline.Run(context.Background(), d, pipeline.DefaultConfig(2))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteXLSX(path, res))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetPoints, SheetMinima, SheetApproximant, SheetCoefficients, SheetMetrics},
		f.GetSheetList())

	rows, err := f.GetRows(SheetPoints)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header(2), rows[0])

	rows, err = f.GetRows(SheetCoefficients)
	require.NoError(t, err)
	assert.Len(t, rows, 1+6)
	assert.Equal(t, []string{"alpha_1", "alpha_2", "coefficient"}, rows[0])

	rows, err = f.GetRows(SheetApproximant)
	require.NoError(t, err)
	fields := map[string]string{}
	for _, r := range rows[1:] {
		fields[r[0]] = r[1]
	}
	assert.Equal(t, res.RunID, fields["run_id"])
	assert.Equal(t, "chebyshev", fields["basis"])
	assert.Equal(t, "81", fields["grid_points"])

	rows, err = f.GetRows(SheetMetrics)
	require.NoError(t, err)
	assert.Equal(t, "approximation", rows[1][0])
}
