package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalAllocations   int
	AllocatedVMs       int
	RejectedVMs        int
	UniqueHosts        int
	HostDistribution   map[int]int // host ID → VMs placed
	DispatchedCount    int
	FailedDispatches   int
	VMLoadDistribution map[int]int // VM ID → cloudlets dispatched
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		HostDistribution:   make(map[int]int),
		VMLoadDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalAllocations = len(st.Allocations)
	for _, a := range st.Allocations {
		if a.Allocated {
			summary.AllocatedVMs++
			summary.HostDistribution[a.HostID]++
		} else {
			summary.RejectedVMs++
		}
	}
	summary.UniqueHosts = len(summary.HostDistribution)

	for _, d := range st.Dispatches {
		if d.Dispatched {
			summary.DispatchedCount++
			summary.VMLoadDistribution[d.VMID]++
		} else {
			summary.FailedDispatches++
		}
	}
	return summary
}
