package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDistribution(t *testing.T) {
	d := NewDistribution([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, 2.5, d.Mean)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)
	assert.InDelta(t, 2.5, d.P50, 1e-9)
	assert.InDelta(t, 3.85, d.P95, 1e-9)

	assert.Equal(t, Distribution{}, NewDistribution(nil))
}

func TestSummarize_OnlySuccessfulCountTowardMakespan(t *testing.T) {
	results := []CloudletResult{
		{ID: 0, Status: StatusSuccess, StartTime: 0, FinishTime: 40, ExecTime: 40},
		{ID: 1, Status: StatusFailed, StartTime: NotStarted, FinishTime: 500},
		{ID: 2, Status: StatusSuccess, StartTime: 40, FinishTime: 100, ExecTime: 60},
	}
	s := Summarize("x", PolicyBundle{}, results, time.Second, 500, nil)

	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.Submitted)
	assert.Equal(t, 100.0, s.Makespan)
	assert.Equal(t, 50.0, s.MeanExec)
	assert.Equal(t, 500.0, s.SimClock)
}
