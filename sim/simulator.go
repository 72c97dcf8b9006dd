// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"

	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// ErrAlreadyRun is returned when Run is called twice on the same Simulator.
var ErrAlreadyRun = errors.New("simulator already run")

// Simulator is the core object that holds simulated time, the entities and
// the event loop. Each run owns its own Simulator; nothing is global, so
// independent runs may execute on separate goroutines.
type Simulator struct {
	Clock float64
	// EventQueue holds pending events ordered by (timestamp, event id).
	EventQueue *EventHeap
	Datacenter *Datacenter
	Broker     *Broker
	Metrics    *Metrics
	// Trace is nil unless decision tracing is enabled.
	Trace    *trace.SimulationTrace
	WallTime time.Duration

	nextEventID uint64
	ran         bool
}

// NewSimulator wires a datacenter and broker into a fresh run.
// A nil scope reports nowhere; a nil trace records nothing.
func NewSimulator(dc *Datacenter, broker *Broker, scope tally.Scope, tr *trace.SimulationTrace) *Simulator {
	if dc == nil || broker == nil {
		panic("NewSimulator: datacenter and broker are required")
	}
	return &Simulator{
		EventQueue: NewEventHeap(),
		Datacenter: dc,
		Broker:     broker,
		Metrics:    NewMetrics(scope),
		Trace:      tr,
	}
}

// Schedule pushes an event into the queue. Events in the past panic.
func (sim *Simulator) Schedule(ev Event) {
	if ev.Timestamp() < sim.Clock {
		panic(fmt.Sprintf("Simulator.Schedule: %s at %v is before clock %v", ev.Kind(), ev.Timestamp(), sim.Clock))
	}
	sim.EventQueue.Schedule(ev)
}

// Run processes events until the queue is empty or ctx is cancelled.
// It returns ErrQueueConsistencyViolation if cloudlets are left unfinished
// once no events remain.
func (sim *Simulator) Run(ctx context.Context) error {
	if sim.ran {
		return ErrAlreadyRun
	}
	sim.ran = true
	start := time.Now()
	defer func() { sim.WallTime = time.Since(start) }()

	sim.Broker.start(sim)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := sim.EventQueue.PopNext()
		if ev == nil {
			break
		}
		if ev.Timestamp() < sim.Clock {
			panic(fmt.Sprintf("Simulator.Run: clock moved backwards from %v to %v", sim.Clock, ev.Timestamp()))
		}
		sim.Clock = ev.Timestamp()
		logrus.Debugf("[%.4f] executing %s #%d", sim.Clock, ev.Kind(), ev.EventID())
		ev.Execute(sim)
		sim.Metrics.eventProcessed()
	}
	logrus.Infof("[%.2f] simulation ended after %d events", sim.Clock, sim.Metrics.EventsProcessed)

	if err := sim.Datacenter.checkDrained(); err != nil {
		return err
	}
	if got, want := len(sim.Broker.received), len(sim.Broker.cloudlets); got != want {
		return fmt.Errorf("%w: broker received %d of %d cloudlets", ErrQueueConsistencyViolation, got, want)
	}
	sim.Metrics.RecordRun(sim.Clock, sim.makespan(), time.Since(start))
	return nil
}

func (sim *Simulator) makespan() float64 {
	m := 0.0
	for _, c := range sim.Broker.received {
		if c.Status == StatusSuccess {
			m = max(m, c.FinishTime)
		}
	}
	return m
}

// Results snapshots the terminal cloudlets in broker receive order.
func (sim *Simulator) Results() []CloudletResult {
	out := make([]CloudletResult, 0, len(sim.Broker.received))
	for _, c := range sim.Broker.received {
		out = append(out, NewCloudletResult(c))
	}
	return out
}

// Summary aggregates the run's results.
func (sim *Simulator) Summary(name string, policies PolicyBundle) Summary {
	return Summarize(name, policies, sim.Results(), sim.WallTime, sim.Clock, sim.Metrics)
}

func (sim *Simulator) base(t float64, kind EventKind) BaseEvent {
	sim.nextEventID++
	return BaseEvent{timestamp: t, eventID: sim.nextEventID, kind: kind}
}

func (sim *Simulator) newVMCreateEvent(t float64, vm *VM) Event {
	return &VMCreateEvent{BaseEvent: sim.base(t, EventVMCreate), VM: vm}
}

func (sim *Simulator) newVMCreateAckEvent(t float64, vm *VM, err error) Event {
	return &VMCreateAckEvent{BaseEvent: sim.base(t, EventVMCreateAck), VM: vm, Err: err}
}

func (sim *Simulator) newCloudletSubmitEvent(t float64, c *Cloudlet) Event {
	return &CloudletSubmitEvent{BaseEvent: sim.base(t, EventCloudletSubmit), Cloudlet: c}
}

func (sim *Simulator) newUpdateProcessingEvent(t float64, token uint64) Event {
	return &UpdateProcessingEvent{BaseEvent: sim.base(t, EventUpdateProcessing), token: token}
}

func (sim *Simulator) newCloudletReturnEvent(t float64, c *Cloudlet) Event {
	return &CloudletReturnEvent{BaseEvent: sim.base(t, EventCloudletReturn), Cloudlet: c}
}

func (sim *Simulator) newCloudletPauseEvent(t float64, id int) Event {
	return &CloudletPauseEvent{BaseEvent: sim.base(t, EventCloudletPause), CloudletID: id}
}

func (sim *Simulator) newCloudletResumeEvent(t float64, id int) Event {
	return &CloudletResumeEvent{BaseEvent: sim.base(t, EventCloudletResume), CloudletID: id}
}
