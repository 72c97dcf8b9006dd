// Package report renders scenario results as the plain-text simulation log
// and the strategy comparison report.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudlet-sim/cloudlet-sim/sim"
	"github.com/cloudlet-sim/cloudlet-sim/sim/scenario"
)

// LogFileName is the file a strategy's simulation log is written to.
func LogFileName(strategy string) string {
	return strategy + "_simulation_log.txt"
}

// ComparisonFileName is the file the comparison report is written to.
const ComparisonFileName = "scheduling_comparison_report.txt"

// WriteSimulationLog writes the per-strategy log: configuration, one row per
// cloudlet in receive order and a performance summary.
func WriteSimulationLog(w io.Writer, res *scenario.Result) error {
	var b strings.Builder
	sum := res.Summary
	fmt.Fprintf(&b, "====== %s VM SCHEDULING SIMULATION LOG ======\n\n", res.Name)

	b.WriteString("SIMULATION CONFIGURATION:\n")
	fmt.Fprintf(&b, "- Scheduling Strategy: %s\n", res.Name)
	fmt.Fprintf(&b, "- VM Scheduler: %s\n", sum.Policies.VMScheduler)
	fmt.Fprintf(&b, "- Cloudlet Scheduler: %s\n", sum.Policies.CloudletScheduler)
	fmt.Fprintf(&b, "- Allocation Policy: %s\n", sum.Policies.Allocation)
	fmt.Fprintf(&b, "- Number of VMs: %d\n", len(res.VMs))
	fmt.Fprintf(&b, "- Number of Cloudlets: %d\n\n", len(res.Cloudlets))

	b.WriteString("VM PLACEMENT:\n")
	for _, vm := range res.VMs {
		if vm.Created {
			fmt.Fprintf(&b, "- VM %d: host %d\n", vm.ID, vm.HostID)
		} else {
			fmt.Fprintf(&b, "- VM %d: creation failed\n", vm.ID)
		}
	}
	b.WriteString("\n")

	b.WriteString("CLOUDLET EXECUTION RESULTS:\n")
	fmt.Fprintf(&b, "%-10s %-10s %-15s %-15s %-15s %-15s\n",
		"Cloudlet", "Status", "VM ID", "Time", "Start Time", "Finish Time")
	for _, c := range res.Cloudlets {
		fmt.Fprintf(&b, "%-10d %-10s %-15d %-15.2f %-15s %-15.2f\n",
			c.ID, c.Status, c.VMID, c.ExecTime, startTime(c), c.FinishTime)
	}

	b.WriteString("\nPERFORMANCE SUMMARY:\n")
	fmt.Fprintf(&b, "- Successful Cloudlets: %d/%d\n", sum.Succeeded, sum.Submitted)
	if sum.Succeeded > 0 {
		fmt.Fprintf(&b, "- Average Execution Time: %.2f\n", sum.MeanExec)
		fmt.Fprintf(&b, "- Execution Time p50/p95/max: %.2f/%.2f/%.2f\n", sum.ExecTimes.P50, sum.ExecTimes.P95, sum.ExecTimes.Max)
		fmt.Fprintf(&b, "- Makespan (total simulation time): %.2f\n", sum.Makespan)
	}
	if res.TraceSummary != nil {
		ts := res.TraceSummary
		b.WriteString("\nDECISION TRACE:\n")
		fmt.Fprintf(&b, "- VM placements: %d allocated, %d rejected over %d hosts\n", ts.AllocatedVMs, ts.RejectedVMs, ts.UniqueHosts)
		fmt.Fprintf(&b, "- Cloudlet dispatches: %d sent, %d failed\n", ts.DispatchedCount, ts.FailedDispatches)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func startTime(c sim.CloudletResult) string {
	if c.StartTime == sim.NotStarted {
		return "-"
	}
	return fmt.Sprintf("%.2f", c.StartTime)
}

// WriteComparisonReport compares two or more strategies on wall-clock
// runtime, makespan and mean execution time and recommends one.
func WriteComparisonReport(w io.Writer, results []*scenario.Result) error {
	if len(results) < 2 {
		return fmt.Errorf("comparison needs at least two results, got %d", len(results))
	}
	var b strings.Builder
	b.WriteString("====== VM SCHEDULING STRATEGY COMPARISON REPORT ======\n\n")

	runtime := func(r *scenario.Result) float64 { return r.Summary.WallTime.Seconds() }
	makespan := func(r *scenario.Result) float64 { return r.Summary.Makespan }
	meanExec := func(r *scenario.Result) float64 { return r.Summary.MeanExec }

	b.WriteString("RUNTIME COMPARISON:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s Simulation Runtime: %.6f seconds\n", r.Name, runtime(r))
	}
	writeDifference(&b, "Runtime Difference", results, runtime, " seconds")
	fmt.Fprintf(&b, "- Faster Strategy: %s\n\n", best(results, runtime))

	b.WriteString("PERFORMANCE METRICS:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s Makespan: %.2f\n", r.Name, makespan(r))
	}
	writeDifference(&b, "Makespan Difference", results, makespan, "")
	bestMakespan := best(results, makespan)
	fmt.Fprintf(&b, "- Better Makespan: %s\n\n", bestMakespan)

	for _, r := range results {
		fmt.Fprintf(&b, "- %s Average Execution Time: %.2f\n", r.Name, meanExec(r))
	}
	writeDifference(&b, "Average Execution Time Difference", results, meanExec, "")
	bestExec := best(results, meanExec)
	fmt.Fprintf(&b, "- Better Average Execution Time: %s\n\n", bestExec)

	for _, r := range results {
		fmt.Fprintf(&b, "- %s Successful Cloudlets: %d/%d\n", r.Name, r.Summary.Succeeded, r.Summary.Submitted)
	}
	b.WriteString("\n")

	b.WriteString("CONCLUSION:\n")
	fmt.Fprintf(&b, "Based on the simulation results, the %s VM scheduling strategy performs better for overall completion time (makespan).\n\n", bestMakespan)
	fmt.Fprintf(&b, "The %s strategy performs better for average cloudlet execution time.\n\n", bestExec)

	b.WriteString("RECOMMENDATION:\n")
	if winner, ok := strictWinner(results, makespan, meanExec); ok {
		fmt.Fprintf(&b, "Use %s scheduling for both better makespan and better average execution time.\n", winner)
	} else {
		b.WriteString("Choose scheduling strategy based on priority:\n")
		fmt.Fprintf(&b, "- Use %s if average execution time is more important.\n", bestExec)
		fmt.Fprintf(&b, "- Use %s if overall completion time (makespan) is more important.\n", bestMakespan)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// best returns the name of the result with the lowest metric. An earlier
// result wins only when strictly lower, so ties go to the later one.
func best(results []*scenario.Result, metric func(*scenario.Result) float64) string {
	winner := results[0]
	for _, r := range results[1:] {
		if metric(r) <= metric(winner) {
			winner = r
		}
	}
	return winner.Name
}

// strictWinner returns the result that is strictly lower than every other
// result on all metrics, if there is one.
func strictWinner(results []*scenario.Result, metrics ...func(*scenario.Result) float64) (string, bool) {
	for i, r := range results {
		wins := true
		for j, other := range results {
			if i == j {
				continue
			}
			for _, metric := range metrics {
				if metric(r) >= metric(other) {
					wins = false
				}
			}
		}
		if wins {
			return r.Name, true
		}
	}
	return "", false
}

// writeDifference prints max minus min of the metric across results.
func writeDifference(b *strings.Builder, label string, results []*scenario.Result, metric func(*scenario.Result) float64, unit string) {
	lo, hi := metric(results[0]), metric(results[0])
	for _, r := range results[1:] {
		lo = min(lo, metric(r))
		hi = max(hi, metric(r))
	}
	fmt.Fprintf(b, "- %s: %.6g%s\n", label, hi-lo, unit)
}
