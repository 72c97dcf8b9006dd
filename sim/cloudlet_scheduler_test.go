package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(cs []*Cloudlet) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestTimeSharedCloudletScheduler_SplitsCapacityEvenly(t *testing.T) {
	// GIVEN a 1-PE VM at 1000 MIPS with two 1000 MI cloudlets
	s := NewTimeSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	require.True(t, s.Submit(NewCloudlet(0, 0, 1000, 1), 0))
	require.True(t, s.Submit(NewCloudlet(1, 0, 1000, 1), 0))

	// THEN each runs at C/k and both finish at t=2
	assert.InDelta(t, 500.0, s.Rate(0), 1e-9)
	assert.InDelta(t, 500.0, s.Rate(1), 1e-9)
	assert.InDelta(t, 2.0, s.NextFinish(0), 1e-9)

	assert.Empty(t, s.Advance(1.5))
	done := s.Advance(2)
	assert.Equal(t, []int{0, 1}, ids(done))
	for _, c := range done {
		assert.Equal(t, StatusSuccess, c.Status)
		assert.Equal(t, 0.0, c.StartTime)
		assert.Equal(t, 2.0, c.FinishTime)
		assert.Equal(t, c.Length, c.Executed)
	}
	assert.True(t, math.IsInf(s.NextFinish(2), 1))
}

func TestTimeSharedCloudletScheduler_RateScalesWhenPEsOversubscribed(t *testing.T) {
	// GIVEN a 1-PE VM and a 2-PE cloudlet
	s := NewTimeSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	require.True(t, s.Submit(NewCloudlet(0, 0, 1000, 2), 0))

	// THEN rate = perPE * pes * P/S = 1000 * 2 * 1/2
	assert.InDelta(t, 1000.0, s.Rate(0), 1e-9)
}

func TestTimeSharedCloudletScheduler_UtilizationScalesRate(t *testing.T) {
	s := NewTimeSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	c := NewCloudlet(0, 0, 1000, 1)
	c.Utilization = UtilizationFixed{Fraction: 0.5}
	require.True(t, s.Submit(c, 0))
	assert.InDelta(t, 2.0, s.NextFinish(0), 1e-9)
}

func TestTimeSharedCloudletScheduler_PauseResume(t *testing.T) {
	s := NewTimeSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	c := NewCloudlet(0, 0, 1000, 1)
	require.True(t, s.Submit(c, 0))

	s.Advance(0.5)
	require.True(t, s.Pause(0, 0.5))
	assert.Equal(t, StatusPaused, c.Status)
	assert.True(t, math.IsInf(s.NextFinish(0.5), 1))

	s.Advance(3)
	assert.InDelta(t, 500.0, c.Executed, 1e-9, "no progress while paused")
	require.True(t, s.Resume(0, 3))
	assert.InDelta(t, 3.5, s.NextFinish(3), 1e-9)
	assert.Equal(t, 0.0, c.StartTime, "start time is the first admission")
	assert.False(t, s.Resume(0, 3))
}

func TestCloudletScheduler_SubmitBeforeAdvancePanics(t *testing.T) {
	for _, name := range []string{CloudletSchedulerTimeShared, CloudletSchedulerSpaceShared} {
		t.Run(name, func(t *testing.T) {
			s := NewCloudletScheduler(name)
			s.SetCapacity(1000, 1)
			s.Advance(0)
			assert.Panics(t, func() { s.Submit(NewCloudlet(0, 0, 10, 1), 1) })
		})
	}
}

func TestCloudletScheduler_AdvanceBackwardsPanics(t *testing.T) {
	s := NewSpaceSharedCloudletScheduler()
	s.Advance(5)
	assert.Panics(t, func() { s.Advance(4) })
}

func TestSpaceSharedCloudletScheduler_RunsOneAtATimeFIFO(t *testing.T) {
	// GIVEN a 1-PE VM and three 1000 MI cloudlets
	s := NewSpaceSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	cs := []*Cloudlet{NewCloudlet(0, 0, 1000, 1), NewCloudlet(1, 0, 1000, 1), NewCloudlet(2, 0, 1000, 1)}
	for _, c := range cs {
		require.True(t, s.Submit(c, 0))
	}

	// THEN only the head executes, at full capacity
	assert.Equal(t, []int{0}, ids(s.Executing()))
	assert.Equal(t, 2, s.Waiting())
	assert.Equal(t, StatusSubmitted, cs[1].Status)
	assert.Equal(t, 1000.0, s.Rate(0))

	// AND they finish back to back
	for i, c := range cs {
		now := float64(i + 1)
		assert.InDelta(t, now, s.NextFinish(float64(i)), 1e-9)
		assert.Equal(t, []int{c.ID}, ids(s.Advance(now)))
		assert.Equal(t, float64(i), c.StartTime)
		assert.Equal(t, now, c.FinishTime)
	}
	assert.Equal(t, 0, s.Waiting())
}

func TestSpaceSharedCloudletScheduler_HeadIsNeverOvertaken(t *testing.T) {
	// GIVEN a 2-PE VM running a 1-PE cloudlet with a 2-PE one queued
	s := NewSpaceSharedCloudletScheduler()
	s.SetCapacity(1000, 2)
	s.Advance(0)
	require.True(t, s.Submit(NewCloudlet(0, 0, 1000, 1), 0))
	require.True(t, s.Submit(NewCloudlet(1, 0, 1000, 2), 0))

	// WHEN a 1-PE cloudlet arrives that would fit the idle PE
	require.True(t, s.Submit(NewCloudlet(2, 0, 1000, 1), 0))

	// THEN it waits behind the head
	assert.Equal(t, []int{0}, ids(s.Executing()))
	assert.Equal(t, 2, s.Waiting())

	s.Advance(1)
	assert.Equal(t, []int{1}, ids(s.Executing()))
	s.Advance(2)
	assert.Equal(t, []int{2}, ids(s.Executing()))
}

func TestSpaceSharedCloudletScheduler_RefusesTooWide(t *testing.T) {
	s := NewSpaceSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	c := NewCloudlet(0, 0, 1000, 2)
	assert.False(t, s.Submit(c, 0))
	assert.Equal(t, StatusCreated, c.Status)
	assert.Equal(t, 0, s.Waiting())
}

func TestSpaceSharedCloudletScheduler_PauseFreesPEs(t *testing.T) {
	s := NewSpaceSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	a, b := NewCloudlet(0, 0, 1000, 1), NewCloudlet(1, 0, 1000, 1)
	require.True(t, s.Submit(a, 0))
	require.True(t, s.Submit(b, 0))

	s.Advance(0.25)
	require.True(t, s.Pause(0, 0.25))

	assert.Equal(t, []int{1}, ids(s.Executing()))
	assert.Equal(t, 1, s.Paused())

	// resumed cloudlet queues behind whatever is waiting
	require.True(t, s.Resume(0, 0.25))
	assert.Equal(t, StatusSubmitted, a.Status)
	assert.Equal(t, 1, s.Waiting())

	s.Advance(1.25)
	assert.Equal(t, StatusSuccess, b.Status)
	assert.InDelta(t, 2.0, s.NextFinish(1.25), 1e-9, "250 MI done before the pause")
}

func TestSpaceSharedCloudletScheduler_PauseQueued(t *testing.T) {
	s := NewSpaceSharedCloudletScheduler()
	s.SetCapacity(1000, 1)
	s.Advance(0)
	require.True(t, s.Submit(NewCloudlet(0, 0, 1000, 1), 0))
	require.True(t, s.Submit(NewCloudlet(1, 0, 1000, 1), 0))

	require.True(t, s.Pause(1, 0))
	assert.Equal(t, 0, s.Waiting())
	assert.False(t, s.Pause(9, 0))
}

func TestIsComplete_Tolerance(t *testing.T) {
	c := NewCloudlet(0, 0, 1e6, 1)
	c.Executed = 1e6 - 1e-4
	assert.True(t, isComplete(c, 1000), "relative remainder under 1e-9")

	c.Executed = 1e6 - 1
	assert.False(t, isComplete(c, 1000))
	assert.True(t, isComplete(c, 1e10), "remaining run time under epsilon")
}

func TestNewCloudletScheduler_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { NewCloudletScheduler("round-robin") })
}
