package sim

import (
	"math"
	"sort"
	"time"
)

// CloudletResult is the per-cloudlet record handed to report generation.
type CloudletResult struct {
	ID         int
	Status     CloudletStatus
	VMID       int
	HostID     int
	ExecTime   float64 // finish - start for successful cloudlets, 0 otherwise
	StartTime  float64 // NotStarted if the cloudlet never executed
	FinishTime float64
	Executed   float64 // instructions executed
	Length     float64
}

// NewCloudletResult snapshots a terminal cloudlet.
func NewCloudletResult(c *Cloudlet) CloudletResult {
	return CloudletResult{
		ID:         c.ID,
		Status:     c.Status,
		VMID:       c.VMID,
		HostID:     c.HostID,
		ExecTime:   c.ExecTime(),
		StartTime:  c.StartTime,
		FinishTime: c.FinishTime,
		Executed:   c.Executed,
		Length:     c.Length,
	}
}

// Distribution captures statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Summary is the scenario-level outcome of one run.
type Summary struct {
	Name      string
	Policies  PolicyBundle
	WallTime  time.Duration // wall-clock duration of Run
	SimClock  float64       // simulated time when the queue drained
	Makespan  float64       // max finish time over successful cloudlets
	MeanExec  float64       // mean ExecTime over successful cloudlets
	ExecTimes Distribution
	Succeeded int
	Failed    int
	Submitted int
	VMsFailed int
	Events    int
}

// Summarize builds a Summary from terminal cloudlet results.
func Summarize(name string, policies PolicyBundle, results []CloudletResult, wall time.Duration, clock float64, m *Metrics) Summary {
	s := Summary{
		Name:      name,
		Policies:  policies,
		WallTime:  wall,
		SimClock:  clock,
		Submitted: len(results),
	}
	var execTimes []float64
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
			s.Makespan = max(s.Makespan, r.FinishTime)
			execTimes = append(execTimes, r.ExecTime)
		case StatusFailed:
			s.Failed++
		}
	}
	s.ExecTimes = NewDistribution(execTimes)
	s.MeanExec = s.ExecTimes.Mean
	if m != nil {
		s.Events = m.EventsProcessed
		s.VMsFailed = m.VMsFailed
	}
	return s
}
