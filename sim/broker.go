package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// Cloudlet binding modes.
const (
	// BindingStatic binds unbound cloudlet i to submitted VM i mod len(VMs).
	// Cloudlets bound to a VM that failed creation fail.
	BindingStatic = "static"
	// BindingDynamic binds unbound cloudlets round-robin over created VMs only.
	BindingDynamic = "dynamic"
)

// ValidBindings is the set of recognized binding modes.
var ValidBindings = map[string]bool{"": true, BindingStatic: true, BindingDynamic: true}

// PauseWindow suspends a cloudlet at At for Duration simulated seconds.
type PauseWindow struct {
	CloudletID int     `yaml:"cloudlet"`
	At         float64 `yaml:"at"`
	Duration   float64 `yaml:"duration"`
}

// Broker acts for one user: it requests VM creation, binds cloudlets to
// VMs once every creation has been acknowledged and collects terminal
// cloudlets in the order they come back.
//
// Thread-safety: NOT thread-safe.
type Broker struct {
	ID      int
	Name    string
	Binding string

	vms       []*VM
	cloudlets []*Cloudlet
	pauses    []PauseWindow

	created  []*VM
	acks     int
	rr       int
	received []*Cloudlet
	done     bool
}

// NewBroker creates a broker with the given binding mode ("" means static).
func NewBroker(id int, name, binding string) *Broker {
	if !ValidBindings[binding] {
		panic(fmt.Sprintf("unknown binding %q", binding))
	}
	if binding == "" {
		binding = BindingStatic
	}
	return &Broker{ID: id, Name: name, Binding: binding}
}

// SubmitVMList queues VMs for creation. Must be called before the run starts.
func (b *Broker) SubmitVMList(vms []*VM) { b.vms = append(b.vms, vms...) }

// SubmitCloudletList queues cloudlets for dispatch. A cloudlet whose VMID is
// already set keeps that binding.
func (b *Broker) SubmitCloudletList(cloudlets []*Cloudlet) {
	b.cloudlets = append(b.cloudlets, cloudlets...)
}

// SubmitPauses registers pause windows to apply after dispatch.
func (b *Broker) SubmitPauses(pauses []PauseWindow) { b.pauses = append(b.pauses, pauses...) }

// Received returns terminal cloudlets in the order the broker got them.
func (b *Broker) Received() []*Cloudlet { return b.received }

// Created returns the VMs whose creation succeeded, in acknowledgement order.
func (b *Broker) Created() []*VM { return b.created }

// Done reports whether every submitted cloudlet has come back.
func (b *Broker) Done() bool { return b.done }

func (b *Broker) start(sim *Simulator) {
	logrus.Infof("[%.2f] %s: requesting %d VMs", sim.Clock, b.Name, len(b.vms))
	for _, vm := range b.vms {
		sim.Schedule(sim.newVMCreateEvent(sim.Clock, vm))
	}
	if len(b.vms) == 0 {
		b.dispatchCloudlets(sim)
	}
}

func (b *Broker) processVMCreateAck(sim *Simulator, vm *VM, err error) {
	b.acks++
	if err == nil {
		b.created = append(b.created, vm)
	}
	if b.acks == len(b.vms) {
		logrus.Infof("[%.2f] %s: %d/%d VMs created", sim.Clock, b.Name, len(b.created), len(b.vms))
		b.dispatchCloudlets(sim)
	}
}

// bind picks the target VM for the i-th submitted cloudlet, or nil.
func (b *Broker) bind(i int, c *Cloudlet) *VM {
	if c.VMID != NoVM {
		for _, vm := range b.vms {
			if vm.ID == c.VMID {
				return vm
			}
		}
		return nil
	}
	switch b.Binding {
	case BindingDynamic:
		if len(b.created) == 0 {
			return nil
		}
		vm := b.created[b.rr%len(b.created)]
		b.rr++
		return vm
	default:
		if len(b.vms) == 0 {
			return nil
		}
		return b.vms[i%len(b.vms)]
	}
}

func (b *Broker) dispatchCloudlets(sim *Simulator) {
	for i, c := range b.cloudlets {
		vm := b.bind(i, c)
		record := trace.DispatchRecord{CloudletID: c.ID, Clock: sim.Clock, VMID: NoVM}
		if vm != nil {
			c.VMID = vm.ID
			record.VMID = vm.ID
		}
		switch {
		case vm == nil:
			record.Reason = "no VM available"
		case !vm.Created():
			record.Reason = fmt.Sprintf("VM %d was not created", vm.ID)
		default:
			record.Dispatched = true
		}
		sim.Trace.RecordDispatch(record)
		if !record.Dispatched {
			logrus.Warnf("[%.2f] %s: cloudlet %d failed: %s", sim.Clock, b.Name, c.ID, record.Reason)
			c.fail(sim.Clock)
			b.receive(sim, c)
			continue
		}
		logrus.Debugf("[%.2f] %s: sending cloudlet %d to VM %d", sim.Clock, b.Name, c.ID, vm.ID)
		sim.Schedule(sim.newCloudletSubmitEvent(sim.Clock, c))
	}
	for _, p := range b.pauses {
		at := max(p.At, sim.Clock)
		sim.Schedule(sim.newCloudletPauseEvent(at, p.CloudletID))
		sim.Schedule(sim.newCloudletResumeEvent(at+p.Duration, p.CloudletID))
	}
}

func (b *Broker) processCloudletReturn(sim *Simulator, c *Cloudlet) {
	logrus.Debugf("[%.2f] %s: cloudlet %d returned %s", sim.Clock, b.Name, c.ID, c.Status)
	b.receive(sim, c)
}

func (b *Broker) receive(sim *Simulator, c *Cloudlet) {
	b.received = append(b.received, c)
	sim.Metrics.cloudletFinished(c.Status)
	if len(b.received) == len(b.cloudlets) && !b.done {
		b.done = true
		logrus.Infof("[%.2f] %s: all %d cloudlets received", sim.Clock, b.Name, len(b.received))
		sim.Datacenter.destroyVMs(sim)
	}
}
