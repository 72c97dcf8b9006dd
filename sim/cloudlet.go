// Defines the Cloudlet struct that models one independent unit of work.
// Tracks its length, placement, progress and start/finish timestamps.

package sim

import (
	"fmt"
)

// CloudletStatus represents the lifecycle state of a cloudlet.
type CloudletStatus string

const (
	StatusCreated     CloudletStatus = "CREATED"
	StatusSubmitted   CloudletStatus = "SUBMITTED"
	StatusInExecution CloudletStatus = "IN_EXECUTION"
	StatusPaused      CloudletStatus = "PAUSED"
	StatusSuccess     CloudletStatus = "SUCCESS"
	StatusFailed      CloudletStatus = "FAILED"
)

// Terminal reports whether the status is SUCCESS or FAILED.
func (s CloudletStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

const (
	// NoVM marks an unbound cloudlet or a free PE.
	NoVM = -1
	// NoHost marks a VM that has not been placed.
	NoHost = -1
	// NotStarted is the StartTime of a cloudlet that never executed.
	NotStarted = -1.0
)

// UtilizationModel returns the fraction of its granted capacity a cloudlet
// actually uses. Implementations must be constant between events; the
// schedulers compute completion times from the current value.
type UtilizationModel interface {
	Utilization(now float64) float64
}

// UtilizationFull uses all granted capacity.
type UtilizationFull struct{}

func (UtilizationFull) Utilization(_ float64) float64 { return 1.0 }

// UtilizationFixed uses a constant fraction in (0, 1] of granted capacity.
type UtilizationFixed struct {
	Fraction float64
}

func (u UtilizationFixed) Utilization(_ float64) float64 { return u.Fraction }

// Cloudlet models one task's lifecycle in the simulation.
type Cloudlet struct {
	ID     int
	UserID int // owning broker

	Length     float64 // total instructions (MI)
	PEs        int     // PEs required
	FileSize   int64   // input size, informational
	OutputSize int64   // output size, informational

	Utilization UtilizationModel

	Status CloudletStatus
	VMID   int // target VM, NoVM until bound
	HostID int // host of the target VM once dispatched

	Executed   float64 // cumulative executed instructions, never above Length
	SubmitTime float64 // arrival at the VM
	StartTime  float64 // first admission to execution, NotStarted until then
	FinishTime float64 // time the cloudlet reached a terminal status
}

// NewCloudlet creates a cloudlet in CREATED state with full utilization.
func NewCloudlet(id, userID int, length float64, pes int) *Cloudlet {
	return &Cloudlet{
		ID:          id,
		UserID:      userID,
		Length:      length,
		PEs:         pes,
		Utilization: UtilizationFull{},
		Status:      StatusCreated,
		VMID:        NoVM,
		HostID:      NoHost,
		StartTime:   NotStarted,
	}
}

// Remaining returns the instructions still to execute.
func (c *Cloudlet) Remaining() float64 {
	return max(0, c.Length-c.Executed)
}

// ExecTime is the wall span of execution in simulated time: finish minus
// first start. Zero for cloudlets that never started.
func (c *Cloudlet) ExecTime() float64 {
	if c.StartTime < 0 || c.Status != StatusSuccess {
		return 0
	}
	return c.FinishTime - c.StartTime
}

// utilization returns the cloudlet's utilization, treating a nil model as full.
func (c *Cloudlet) utilization(now float64) float64 {
	if c.Utilization == nil {
		return 1.0
	}
	return c.Utilization.Utilization(now)
}

// setStatus moves the cloudlet to a new status. Terminal cloudlets are
// immutable; attempting to move one panics.
func (c *Cloudlet) setStatus(s CloudletStatus) {
	if c.Status.Terminal() {
		panic(fmt.Sprintf("cloudlet %d: status change %s -> %s after terminal", c.ID, c.Status, s))
	}
	c.Status = s
}

// fail marks the cloudlet FAILED at now without execution.
func (c *Cloudlet) fail(now float64) {
	c.setStatus(StatusFailed)
	c.FinishTime = now
}

// succeed marks the cloudlet SUCCESS at now with its full length executed.
func (c *Cloudlet) succeed(now float64) {
	c.Executed = c.Length
	c.setStatus(StatusSuccess)
	c.FinishTime = now
}

// This method returns a human-readable string representation of a Cloudlet.
func (c Cloudlet) String() string {
	return fmt.Sprintf("Cloudlet: (ID: %d, Status: %s, VM: %d, Executed: %.2f/%.2f)", c.ID, c.Status, c.VMID, c.Executed, c.Length)
}
