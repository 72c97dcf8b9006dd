// Package trace provides decision-trace recording for VM placement and
// cloudlet dispatch analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AllocationRecord captures a single VM placement decision.
type AllocationRecord struct {
	VMID      int
	Clock     float64
	Allocated bool
	HostID    int // -1 when not allocated
	Policy    string
	Reason    string
}

// DispatchRecord captures the broker's decision for one cloudlet once VM
// creation has settled.
type DispatchRecord struct {
	CloudletID int
	Clock      float64
	VMID       int
	Dispatched bool
	Reason     string
}
