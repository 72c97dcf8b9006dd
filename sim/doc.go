// Package sim provides the discrete-event engine for simulating cloudlets
// on virtual machines on physical hosts.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - cloudlet.go: Cloudlet lifecycle (CREATED → SUBMITTED → IN_EXECUTION → SUCCESS/FAILED)
//   - event.go: Event kinds that drive the simulation (VM create, submit, update, return, pause)
//   - simulator.go: The event loop and per-run state
//   - datacenter.go: VM placement and the armed UPDATE_CLOUDLET_PROCESSING cycle
//   - broker.go: VM requests, cloudlet binding and result collection
//
// # Sharing Policies
//
// Capacity is shared at two layers, each time-shared or space-shared:
//   - VMScheduler: divides one host's PEs among its VMs (vm_scheduler.go)
//   - CloudletScheduler: divides one VM's capacity among its cloudlets (cloudlet_scheduler.go)
//
// VMAllocationPolicy (allocation.go) picks the host for each VM.
//
// # Ownership
//
// The Datacenter owns hosts and VMs in arenas indexed by id. A VM refers to
// its host by id and a host lists its VMs by id; there are no back pointers.
// Each run owns its Simulator, so independent runs never share state.
//
// Sub-packages:
//   - sim/scenario/: YAML scenarios, building and comparing runs
//   - sim/report/: simulation log and comparison report writers
//   - sim/trace/: Decision trace recording
package sim
