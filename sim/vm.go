package sim

import "fmt"

// VM is a virtual machine request plus its runtime placement. The VM owns its
// CloudletScheduler; the host it runs on is referenced by id only.
type VM struct {
	ID     int
	UserID int

	MIPS float64 // requested capacity per PE
	PEs  int
	RAM  int64
	BW   int64
	Size int64 // image size, charged against host storage
	VMM  string

	Scheduler CloudletScheduler
	HostID    int // NoHost until allocated; fixed afterwards
}

// NewVM creates an unplaced VM.
func NewVM(id, userID int, mips float64, pes int, ram, bw, size int64, vmm string, scheduler CloudletScheduler) *VM {
	return &VM{
		ID:        id,
		UserID:    userID,
		MIPS:      mips,
		PEs:       pes,
		RAM:       ram,
		BW:        bw,
		Size:      size,
		VMM:       vmm,
		Scheduler: scheduler,
		HostID:    NoHost,
	}
}

// RequestedMIPS is the VM's total requested capacity across its PEs.
func (v *VM) RequestedMIPS() float64 {
	return v.MIPS * float64(v.PEs)
}

// Created reports whether the VM has been placed on a host.
func (v *VM) Created() bool { return v.HostID != NoHost }

func (v VM) String() string {
	return fmt.Sprintf("VM: (ID: %d, Host: %d, MIPS: %.0f x %d)", v.ID, v.HostID, v.MIPS, v.PEs)
}
