package sim

import "fmt"

// Policy names shared by the VM and cloudlet scheduler layers.
const (
	VMSchedulerTimeShared  = "time-shared"
	VMSchedulerSpaceShared = "space-shared"

	CloudletSchedulerTimeShared  = "time-shared"
	CloudletSchedulerSpaceShared = "space-shared"

	AllocationFirstFit    = "first-fit"
	AllocationMostFreePEs = "most-free-pes"
)

// PolicyBundle selects the sharing policy at each layer and the VM
// allocation strategy. Empty fields fall back to the defaults applied by
// WithDefaults.
type PolicyBundle struct {
	VMScheduler       string `yaml:"vm_scheduler"`
	CloudletScheduler string `yaml:"cloudlet_scheduler"`
	Allocation        string `yaml:"allocation"`
}

// ValidVMSchedulers is the set of recognized VM scheduler names.
var ValidVMSchedulers = map[string]bool{VMSchedulerTimeShared: true, VMSchedulerSpaceShared: true}

// ValidCloudletSchedulers is the set of recognized cloudlet scheduler names.
var ValidCloudletSchedulers = map[string]bool{CloudletSchedulerTimeShared: true, CloudletSchedulerSpaceShared: true}

// ValidAllocationPolicies is the set of recognized allocation policy names.
var ValidAllocationPolicies = map[string]bool{AllocationFirstFit: true, AllocationMostFreePEs: true}

// UniformPolicy returns a bundle using the same sharing policy at both
// layers with first-fit allocation.
func UniformPolicy(sharing string) PolicyBundle {
	return PolicyBundle{VMScheduler: sharing, CloudletScheduler: sharing, Allocation: AllocationFirstFit}
}

// WithDefaults fills empty fields: time-shared at both layers, first-fit.
func (b PolicyBundle) WithDefaults() PolicyBundle {
	if b.VMScheduler == "" {
		b.VMScheduler = VMSchedulerTimeShared
	}
	if b.CloudletScheduler == "" {
		b.CloudletScheduler = CloudletSchedulerTimeShared
	}
	if b.Allocation == "" {
		b.Allocation = AllocationFirstFit
	}
	return b
}

// Validate checks that every policy name in the bundle is recognized.
// Empty names are accepted and resolved by WithDefaults.
func (b PolicyBundle) Validate() error {
	if b.VMScheduler != "" && !ValidVMSchedulers[b.VMScheduler] {
		return fmt.Errorf("unknown VM scheduler %q", b.VMScheduler)
	}
	if b.CloudletScheduler != "" && !ValidCloudletSchedulers[b.CloudletScheduler] {
		return fmt.Errorf("unknown cloudlet scheduler %q", b.CloudletScheduler)
	}
	if b.Allocation != "" && !ValidAllocationPolicies[b.Allocation] {
		return fmt.Errorf("unknown allocation policy %q", b.Allocation)
	}
	return nil
}

// Label is a short human-readable name such as "TimeShared" when both layers
// agree, or "TimeShared/SpaceShared" when they differ.
func (b PolicyBundle) Label() string {
	b = b.WithDefaults()
	vm, cl := camel(b.VMScheduler), camel(b.CloudletScheduler)
	if vm == cl {
		return vm
	}
	return vm + "/" + cl
}

func camel(name string) string {
	switch name {
	case VMSchedulerTimeShared:
		return "TimeShared"
	case VMSchedulerSpaceShared:
		return "SpaceShared"
	default:
		return name
	}
}
