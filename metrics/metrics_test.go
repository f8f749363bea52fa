package metrics

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)

	stop := r.Stage("approximation")
	stop()
	stop = r.Stage("solve")
	stop()
	r.Stage("approximation")()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(EvalErrors, 1)
		}()
	}
	wg.Wait()
	r.Set(GridPoints, 25)

	assert.Equal(t, 8, r.Counter(EvalErrors))
	assert.Equal(t, 25, r.Counter(GridPoints))
	s := r.Snapshot()
	require.Len(t, s.Stages, 2)
	assert.Equal(t, "approximation", s.Stages[0].Name)
	assert.Equal(t, "solve", s.Stages[1].Name)
	assert.NotEmpty(t, s.Stages[0].MemUsage)
	assert.Contains(t, s.String(), r.RunID)
	assert.Contains(t, s.String(), GridPoints)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Stage("x")()
		r.Add(EvalErrors, 1)
		r.Set(GridPoints, 3)
	})
	assert.Equal(t, 0, r.Counter(EvalErrors))
	assert.Equal(t, Snapshot{}, r.Snapshot())
}
