package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// VMAllocationPolicy maps a VM to a host at creation time.
// Implementations try hosts in their own order and return the first one on
// which Host.CreateVM succeeds.
type VMAllocationPolicy interface {
	Name() string
	AllocateHostForVM(vm *VM, hosts []*Host) (*Host, error)
}

// FirstFitAllocation examines hosts in id order and picks the first with
// enough free capacity.
type FirstFitAllocation struct{}

func (f *FirstFitAllocation) Name() string { return AllocationFirstFit }

func (f *FirstFitAllocation) AllocateHostForVM(vm *VM, hosts []*Host) (*Host, error) {
	return tryHosts(vm, hosts)
}

// MostFreePEsAllocation tries hosts with the most unclaimed PEs first, ties
// broken by lower host id. This spreads VMs across hosts.
type MostFreePEsAllocation struct{}

func (m *MostFreePEsAllocation) Name() string { return AllocationMostFreePEs }

func (m *MostFreePEsAllocation) AllocateHostForVM(vm *VM, hosts []*Host) (*Host, error) {
	ordered := make([]*Host, len(hosts))
	copy(ordered, hosts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FreePEs() > ordered[j].FreePEs()
	})
	return tryHosts(vm, ordered)
}

func tryHosts(vm *VM, hosts []*Host) (*Host, error) {
	for _, h := range hosts {
		if h.CreateVM(vm) {
			logrus.Debugf("VM %d placed on host %d", vm.ID, h.ID)
			return h, nil
		}
	}
	return nil, fmt.Errorf("VM %d (%d PEs x %.0f MIPS, %d RAM): %w",
		vm.ID, vm.PEs, vm.MIPS, vm.RAM, ErrInsufficientHostCapacity)
}

// NewAllocationPolicy creates a VMAllocationPolicy by name.
// Valid names: "first-fit", "most-free-pes". Empty string defaults to first-fit.
// Panics on unrecognized names.
func NewAllocationPolicy(name string) VMAllocationPolicy {
	switch name {
	case "", AllocationFirstFit:
		return &FirstFitAllocation{}
	case AllocationMostFreePEs:
		return &MostFreePEsAllocation{}
	default:
		panic(fmt.Sprintf("unknown allocation policy %q", name))
	}
}
