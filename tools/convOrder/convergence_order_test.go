package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	cs := NewConvergenceStudy("geometric")
	for d := 2; d <= 10; d += 2 {
		cs.Add(d, d+1, 3*math.Pow(4, -float64(d)))
	}
	rho, ok := cs.Rate()
	require.True(t, ok)
	assert.InDelta(t, 4, rho, 1e-10)

	cs = NewConvergenceStudy("exact")
	cs.Add(2, 3, 0)
	cs.Add(4, 5, 1e-3)
	_, ok = cs.Rate()
	assert.False(t, ok)
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	body := "objective,degree,coefficients,l2_norm,cond,points,minima,best_value,error\n" +
		"camel,2,6,0.5,3,1,1,-0.2,\n" +
		"camel,4,15,0.05,9,3,2,-1,\n" +
		"sphere,2,6,1e-17,1,1,1,0,\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	studies, err := readCSV(path)
	require.NoError(t, err)
	require.Len(t, studies, 2)
	assert.Equal(t, []int{2, 4}, studies["camel"].degree)
	rho, ok := studies["camel"].Rate()
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(10), rho, 1e-12)

	_, err = readCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
