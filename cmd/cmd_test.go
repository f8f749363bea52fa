package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/globtim/report"
)

func writeProblem(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json", ""} {
		l, err := NewLogger("debug", format)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
	_, err := NewLogger("loud", "text")
	assert.Error(t, err)
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestProcessInput(t *testing.T) {
	_, err := processInput("")
	assert.Error(t, err)
	_, err = processInput(writeProblem(t, "Function: sphere\nDegree: -2\n"))
	assert.Error(t, err)

	ip, err := processInput(writeProblem(t, `
Title: Sphere
Function: sphere
Dimension: 2
Degree: 2
GN: 6
`))
	require.NoError(t, err)
	res, err := Run(context.Background(), ip)
	require.NoError(t, err)
	require.Len(t, res.Minima, 1)
	assert.InDeltaSlice(t, []float64{0, 0}, res.Minima[0].X, 1e-9)

	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, writeCSVFile(path, res))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "x_1,x_2,")
}

func TestSweepCommand(t *testing.T) {
	var (
		problem = writeProblem(t, "Function: sphere\nDimension: 1\nGN: 8\n")
		out     = filepath.Join(t.TempDir(), "sweep.csv")
	)
	rootCmd.SetArgs([]string{"sweep", "-I", problem, "--degrees", "2,4", "--csv", out, "--config", writeProblem(t, "")})
	require.NoError(t, rootCmd.Execute())
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	recs, err := report.ReadSweepCSV(f)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 4, recs[1].Degree)
	assert.Equal(t, 1, recs[0].Minima)
}
