package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// provisioner tracks one scalar host resource (RAM, bandwidth or storage).
type provisioner struct {
	capacity int64
	used     int64
}

func (p *provisioner) fits(n int64) bool { return p.used+n <= p.capacity }

func (p *provisioner) free() int64 { return p.capacity - p.used }

// Host is a physical machine. It owns its PEs exclusively and references
// its resident VMs by id; VMs live in the Datacenter arena.
//
// Thread-safety: NOT thread-safe.
type Host struct {
	ID        int
	PEs       *PEPool
	Scheduler VMScheduler

	ram     provisioner
	bw      provisioner
	storage provisioner
	vmIDs   []int
}

// NewHost creates a host over pool. The VM scheduler is bound to the same pool.
func NewHost(id int, pool *PEPool, ram, bw, storage int64, vmScheduler string) *Host {
	return &Host{
		ID:        id,
		PEs:       pool,
		Scheduler: NewVMScheduler(vmScheduler, pool),
		ram:       provisioner{capacity: ram},
		bw:        provisioner{capacity: bw},
		storage:   provisioner{capacity: storage},
	}
}

// Fits reports whether vm's RAM, bandwidth and image size fit the free
// host resources. PE admission is the VM scheduler's decision.
func (h *Host) Fits(vm *VM) bool {
	return h.ram.fits(vm.RAM) && h.bw.fits(vm.BW) && h.storage.fits(vm.Size)
}

// CreateVM places vm on the host if both the scalar resources and the VM
// scheduler admit it. Nothing is mutated on failure.
func (h *Host) CreateVM(vm *VM) bool {
	if vm.Created() {
		panic(fmt.Sprintf("Host.CreateVM: VM %d already placed on host %d", vm.ID, vm.HostID))
	}
	if !h.Fits(vm) {
		logrus.Debugf("host %d: VM %d does not fit (ram free %d, bw free %d, storage free %d)",
			h.ID, vm.ID, h.ram.free(), h.bw.free(), h.storage.free())
		return false
	}
	if !h.Scheduler.Allocate(vm) {
		logrus.Debugf("host %d: %s scheduler refused VM %d", h.ID, h.Scheduler.Name(), vm.ID)
		return false
	}
	h.ram.used += vm.RAM
	h.bw.used += vm.BW
	h.storage.used += vm.Size
	h.vmIDs = append(h.vmIDs, vm.ID)
	vm.HostID = h.ID
	return true
}

// DestroyVM releases everything vm holds on this host. The VM keeps its
// HostID; a destroyed VM is never placed again.
func (h *Host) DestroyVM(vm *VM) {
	if vm.HostID != h.ID {
		return
	}
	h.Scheduler.Deallocate(vm)
	h.ram.used -= vm.RAM
	h.bw.used -= vm.BW
	h.storage.used -= vm.Size
	h.vmIDs = slices.DeleteFunc(h.vmIDs, func(id int) bool { return id == vm.ID })
}

// VMIDs returns the resident VM ids in placement order.
func (h *Host) VMIDs() []int { return slices.Clone(h.vmIDs) }

// FreePEs returns host PEs minus PEs claimed by resident VMs. It goes
// negative on oversubscribed time-shared hosts.
func (h *Host) FreePEs() int {
	return h.PEs.Count() - h.Scheduler.AllocatedPEs()
}

// FreeRAM returns unprovisioned RAM.
func (h *Host) FreeRAM() int64 { return h.ram.free() }

func (h Host) String() string {
	return fmt.Sprintf("Host: (ID: %d, %s, VMs: %v)", h.ID, h.PEs, h.vmIDs)
}
