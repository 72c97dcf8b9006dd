package sim

import (
	"fmt"
	"slices"
)

// VMScheduler arbitrates how one host's PEs are shared by the VMs placed on
// it. Each host owns exactly one VMScheduler bound to its PEPool.
type VMScheduler interface {
	// Name returns the policy name ("time-shared" or "space-shared").
	Name() string
	// Allocate admits vm on the PE side. It mutates nothing on failure.
	Allocate(vm *VM) bool
	// Deallocate releases everything held by vm.
	Deallocate(vm *VM)
	// MIPSPerPE returns the capacity currently granted to each PE of vmID.
	MIPSPerPE(vmID int) float64
	// AllocatedPEs returns the PEs claimed by resident VMs. For space-shared
	// hosts this never exceeds the pool size.
	AllocatedPEs() int
	// Residents returns resident VM ids in admission order.
	Residents() []int
}

type vmRequest struct {
	mips  float64 // per PE
	total float64 // across all PEs
	pes   int
}

func requestOf(vm *VM) vmRequest {
	return vmRequest{mips: vm.MIPS, total: vm.RequestedMIPS(), pes: vm.PEs}
}

// TimeSharedVMScheduler divides the host's total capacity equally among all
// resident VMs. PEs are never reserved, so PE requests may oversubscribe the
// host. A VM never receives more than it requested.
type TimeSharedVMScheduler struct {
	pool      *PEPool
	residents []int
	requests  map[int]vmRequest
}

// NewTimeSharedVMScheduler creates a time-shared scheduler over pool.
func NewTimeSharedVMScheduler(pool *PEPool) *TimeSharedVMScheduler {
	return &TimeSharedVMScheduler{pool: pool, requests: make(map[int]vmRequest)}
}

func (s *TimeSharedVMScheduler) Name() string { return VMSchedulerTimeShared }

// Allocate admits vm if no single VM asks for more PEs than the host has or
// more per-PE MIPS than its fastest PE.
func (s *TimeSharedVMScheduler) Allocate(vm *VM) bool {
	if _, exists := s.requests[vm.ID]; exists {
		return false
	}
	if vm.PEs > s.pool.Count() || vm.MIPS > s.pool.MaxMIPS() {
		return false
	}
	s.requests[vm.ID] = requestOf(vm)
	s.residents = append(s.residents, vm.ID)
	return true
}

func (s *TimeSharedVMScheduler) Deallocate(vm *VM) {
	if _, ok := s.requests[vm.ID]; !ok {
		return
	}
	delete(s.requests, vm.ID)
	s.residents = slices.DeleteFunc(s.residents, func(id int) bool { return id == vm.ID })
}

// MIPSPerPE returns min(host_total / residents, requested_total) spread over
// the VM's PEs. Returns 0 for non-resident VMs.
func (s *TimeSharedVMScheduler) MIPSPerPE(vmID int) float64 {
	req, ok := s.requests[vmID]
	if !ok || req.pes == 0 {
		return 0
	}
	share := s.pool.TotalMIPS() / float64(len(s.residents))
	share = min(share, req.total)
	return share / float64(req.pes)
}

func (s *TimeSharedVMScheduler) AllocatedPEs() int {
	n := 0
	for _, req := range s.requests {
		n += req.pes
	}
	return n
}

func (s *TimeSharedVMScheduler) Residents() []int { return slices.Clone(s.residents) }

// SpaceSharedVMScheduler reserves PEs exclusively, first come first served.
// A VM is admitted only if enough free PEs can each carry its per-PE MIPS.
type SpaceSharedVMScheduler struct {
	pool      *PEPool
	residents []int
	requests  map[int]vmRequest
}

// NewSpaceSharedVMScheduler creates a space-shared scheduler over pool.
func NewSpaceSharedVMScheduler(pool *PEPool) *SpaceSharedVMScheduler {
	return &SpaceSharedVMScheduler{pool: pool, requests: make(map[int]vmRequest)}
}

func (s *SpaceSharedVMScheduler) Name() string { return VMSchedulerSpaceShared }

func (s *SpaceSharedVMScheduler) Allocate(vm *VM) bool {
	if _, exists := s.requests[vm.ID]; exists {
		return false
	}
	if _, ok := s.pool.Reserve(vm.ID, vm.PEs, vm.MIPS); !ok {
		return false
	}
	s.requests[vm.ID] = requestOf(vm)
	s.residents = append(s.residents, vm.ID)
	return true
}

func (s *SpaceSharedVMScheduler) Deallocate(vm *VM) {
	if _, ok := s.requests[vm.ID]; !ok {
		return
	}
	s.pool.Release(vm.ID)
	delete(s.requests, vm.ID)
	s.residents = slices.DeleteFunc(s.residents, func(id int) bool { return id == vm.ID })
}

// MIPSPerPE returns the VM's requested per-PE MIPS; its PEs are its own.
func (s *SpaceSharedVMScheduler) MIPSPerPE(vmID int) float64 {
	return s.requests[vmID].mips
}

func (s *SpaceSharedVMScheduler) AllocatedPEs() int { return s.pool.ReservedCount() }

func (s *SpaceSharedVMScheduler) Residents() []int { return slices.Clone(s.residents) }

// NewVMScheduler creates a VMScheduler by name over pool.
// Valid names: "time-shared", "space-shared".
// Panics on unrecognized names.
func NewVMScheduler(name string, pool *PEPool) VMScheduler {
	switch name {
	case VMSchedulerTimeShared:
		return NewTimeSharedVMScheduler(pool)
	case VMSchedulerSpaceShared:
		return NewSpaceSharedVMScheduler(pool)
	default:
		panic(fmt.Sprintf("unknown VM scheduler %q", name))
	}
}
