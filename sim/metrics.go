// Tracks run-wide counters: events, VM placements, cloudlet outcomes.
// Every counter is kept in the struct for reporting and mirrored to a tally
// scope for whatever reporter the caller attached.

package sim

import (
	"time"

	"github.com/uber-go/tally/v4"
)

// Metrics aggregates statistics about one simulation run.
type Metrics struct {
	EventsProcessed    int // events popped and executed
	StaleUpdates       int // superseded update events dropped
	VMsCreated         int
	VMsFailed          int
	CloudletsSucceeded int
	CloudletsFailed    int

	scope           tally.Scope
	eventCounter    tally.Counter
	staleCounter    tally.Counter
	vmCreated       tally.Counter
	vmFailed        tally.Counter
	cloudletSuccess tally.Counter
	cloudletFailure tally.Counter
	makespanGauge   tally.Gauge
	runLatencyTimer tally.Timer
	clockGauge      tally.Gauge
}

// NewMetrics returns a new Metrics struct, with all metrics initialized
// and rooted at the given tally.Scope. A nil scope means tally.NoopScope.
func NewMetrics(scope tally.Scope) *Metrics {
	if scope == nil {
		scope = tally.NoopScope
	}
	return &Metrics{
		scope:           scope,
		eventCounter:    scope.Counter("events_processed"),
		staleCounter:    scope.Counter("stale_updates"),
		vmCreated:       scope.Counter("vm_created"),
		vmFailed:        scope.Counter("vm_failed"),
		cloudletSuccess: scope.Counter("cloudlet_success"),
		cloudletFailure: scope.Counter("cloudlet_failed"),
		makespanGauge:   scope.Gauge("makespan"),
		runLatencyTimer: scope.Timer("run_latency"),
		clockGauge:      scope.Gauge("sim_clock"),
	}
}

// Scope returns the tally scope the metrics are reported to.
func (m *Metrics) Scope() tally.Scope { return m.scope }

func (m *Metrics) eventProcessed() {
	m.EventsProcessed++
	m.eventCounter.Inc(1)
}

func (m *Metrics) staleUpdate() {
	m.StaleUpdates++
	m.staleCounter.Inc(1)
}

func (m *Metrics) vmPlaced(ok bool) {
	if ok {
		m.VMsCreated++
		m.vmCreated.Inc(1)
		return
	}
	m.VMsFailed++
	m.vmFailed.Inc(1)
}

func (m *Metrics) cloudletFinished(status CloudletStatus) {
	if status == StatusSuccess {
		m.CloudletsSucceeded++
		m.cloudletSuccess.Inc(1)
		return
	}
	m.CloudletsFailed++
	m.cloudletFailure.Inc(1)
}

// RecordRun reports the end-of-run gauges and the wall-clock duration.
func (m *Metrics) RecordRun(clock, makespan float64, wall time.Duration) {
	m.clockGauge.Update(clock)
	m.makespanGauge.Update(makespan)
	m.runLatencyTimer.Record(wall)
}
