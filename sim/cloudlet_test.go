package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloudletStatus_Terminal(t *testing.T) {
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	for _, s := range []CloudletStatus{StatusCreated, StatusSubmitted, StatusInExecution, StatusPaused} {
		assert.False(t, s.Terminal(), s)
	}
}

func TestCloudlet_TerminalIsImmutable(t *testing.T) {
	// GIVEN a failed cloudlet
	c := NewCloudlet(3, 0, 1000, 1)
	c.fail(5)

	// THEN it never leaves FAILED and keeps its no-execution markers
	assert.Panics(t, func() { c.setStatus(StatusInExecution) })
	assert.Equal(t, NotStarted, c.StartTime)
	assert.Equal(t, 5.0, c.FinishTime)
	assert.Equal(t, 0.0, c.ExecTime())
}

func TestCloudlet_ExecTime(t *testing.T) {
	c := NewCloudlet(0, 0, 1000, 1)
	c.StartTime = 40
	c.succeed(80)
	assert.Equal(t, 40.0, c.ExecTime())
	assert.Equal(t, 0.0, c.Remaining())
	assert.Contains(t, c.String(), "SUCCESS")
}
