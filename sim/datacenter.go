package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// Characteristics describes the datacenter's platform and pricing.
// The values are carried into reports; they do not affect scheduling.
type Characteristics struct {
	Arch           string  `yaml:"arch"`
	OS             string  `yaml:"os"`
	VMM            string  `yaml:"vmm"`
	TimeZone       float64 `yaml:"time_zone"`
	CostPerSec     float64 `yaml:"cost_per_sec"`
	CostPerMem     float64 `yaml:"cost_per_mem"`
	CostPerStorage float64 `yaml:"cost_per_storage"`
	CostPerBW      float64 `yaml:"cost_per_bw"`
}

// Datacenter owns the hosts and every VM submitted to it. Hosts and VMs are
// kept in arenas and looked up by id; a VM names its host by id and a host
// lists its VMs by id.
//
// Thread-safety: NOT thread-safe. Driven by a single Simulator.
type Datacenter struct {
	Name            string
	Characteristics Characteristics
	Policy          VMAllocationPolicy

	hosts     []*Host
	hostIndex map[int]int
	vms       []*VM
	vmIndex   map[int]int
	peakPEs   []int // per host index, highest AllocatedPEs seen

	cloudlets map[int]*Cloudlet // submitted and not yet terminal

	armed      bool
	armedAt    float64
	armedToken uint64
	nextToken  uint64
}

// NewDatacenter creates a datacenter over hosts. Host ids must be unique.
func NewDatacenter(name string, chars Characteristics, hosts []*Host, policy VMAllocationPolicy) *Datacenter {
	if policy == nil {
		policy = NewAllocationPolicy(AllocationFirstFit)
	}
	dc := &Datacenter{
		Name:            name,
		Characteristics: chars,
		Policy:          policy,
		hosts:           hosts,
		hostIndex:       make(map[int]int, len(hosts)),
		vmIndex:         make(map[int]int),
		peakPEs:         make([]int, len(hosts)),
		cloudlets:       make(map[int]*Cloudlet),
	}
	for i, h := range hosts {
		if _, dup := dc.hostIndex[h.ID]; dup {
			panic(fmt.Sprintf("NewDatacenter: duplicate host id %d", h.ID))
		}
		dc.hostIndex[h.ID] = i
	}
	return dc
}

// Hosts returns the hosts in id order of construction.
func (dc *Datacenter) Hosts() []*Host { return dc.hosts }

// VMs returns every VM the datacenter was asked to create, placed or not.
func (dc *Datacenter) VMs() []*VM { return dc.vms }

// Host returns the host with the given id, or nil.
func (dc *Datacenter) Host(id int) *Host {
	i, ok := dc.hostIndex[id]
	if !ok {
		return nil
	}
	return dc.hosts[i]
}

// VM returns the VM with the given id, or nil.
func (dc *Datacenter) VM(id int) *VM {
	i, ok := dc.vmIndex[id]
	if !ok {
		return nil
	}
	return dc.vms[i]
}

// PeakAllocatedPEs returns the highest number of PEs claimed on the host at
// any point of the run.
func (dc *Datacenter) PeakAllocatedPEs(hostID int) int {
	i, ok := dc.hostIndex[hostID]
	if !ok {
		return 0
	}
	return dc.peakPEs[i]
}

// Pending returns the number of submitted cloudlets not yet terminal.
func (dc *Datacenter) Pending() int { return len(dc.cloudlets) }

func (dc *Datacenter) processVMCreate(sim *Simulator, vm *VM) {
	if _, dup := dc.vmIndex[vm.ID]; dup {
		panic(fmt.Sprintf("Datacenter.processVMCreate: duplicate VM id %d", vm.ID))
	}
	dc.vmIndex[vm.ID] = len(dc.vms)
	dc.vms = append(dc.vms, vm)

	// Shares on the chosen host change, so account progress under the old ones first.
	dc.updateProcessing(sim)

	host, err := dc.Policy.AllocateHostForVM(vm, dc.hosts)
	record := trace.AllocationRecord{VMID: vm.ID, Clock: sim.Clock, HostID: NoHost, Policy: dc.Policy.Name()}
	if err != nil {
		record.Reason = err.Error()
		logrus.Warnf("[%.2f] %s: VM %d creation failed: %v", sim.Clock, dc.Name, vm.ID, err)
	} else {
		record.Allocated = true
		record.HostID = host.ID
		vm.Scheduler.Advance(sim.Clock)
		dc.refreshHost(host)
		i := dc.hostIndex[host.ID]
		dc.peakPEs[i] = max(dc.peakPEs[i], host.Scheduler.AllocatedPEs())
		logrus.Infof("[%.2f] %s: VM %d created on host %d", sim.Clock, dc.Name, vm.ID, host.ID)
	}
	sim.Trace.RecordAllocation(record)
	sim.Metrics.vmPlaced(err == nil)
	sim.Schedule(sim.newVMCreateAckEvent(sim.Clock, vm, err))
	dc.arm(sim)
}

// refreshHost pushes the host's current per-VM shares into each resident
// VM's cloudlet scheduler.
func (dc *Datacenter) refreshHost(h *Host) {
	for _, id := range h.VMIDs() {
		vm := dc.VM(id)
		vm.Scheduler.SetCapacity(h.Scheduler.MIPSPerPE(id), vm.PEs)
	}
}

// resident returns the VM if it is currently placed on a host.
func (dc *Datacenter) resident(id int) *VM {
	vm := dc.VM(id)
	if vm == nil || !vm.Created() {
		return nil
	}
	h := dc.Host(vm.HostID)
	for _, rid := range h.vmIDs {
		if rid == id {
			return vm
		}
	}
	return nil
}

func (dc *Datacenter) processCloudletSubmit(sim *Simulator, c *Cloudlet) {
	dc.updateProcessing(sim)
	vm := dc.resident(c.VMID)
	if vm == nil {
		logrus.Warnf("[%.2f] %s: cloudlet %d targets VM %d which is not running", sim.Clock, dc.Name, c.ID, c.VMID)
		dc.failCloudlet(sim, c)
		return
	}
	c.HostID = vm.HostID
	if !vm.Scheduler.Submit(c, sim.Clock) {
		logrus.Warnf("[%.2f] %s: VM %d cannot run cloudlet %d (%d PEs)", sim.Clock, dc.Name, vm.ID, c.ID, c.PEs)
		dc.failCloudlet(sim, c)
		return
	}
	dc.cloudlets[c.ID] = c
	logrus.Debugf("[%.2f] %s: cloudlet %d submitted to VM %d (%s)", sim.Clock, dc.Name, c.ID, vm.ID, c.Status)
	dc.arm(sim)
}

func (dc *Datacenter) failCloudlet(sim *Simulator, c *Cloudlet) {
	c.fail(sim.Clock)
	sim.Schedule(sim.newCloudletReturnEvent(sim.Clock, c))
}

func (dc *Datacenter) processUpdate(sim *Simulator, token uint64) {
	if !dc.armed || token != dc.armedToken {
		sim.Metrics.staleUpdate()
		logrus.Debugf("[%.2f] %s: dropping superseded update %d", sim.Clock, dc.Name, token)
		return
	}
	dc.armed = false
	dc.updateProcessing(sim)
	dc.arm(sim)
}

func (dc *Datacenter) processCloudletPause(sim *Simulator, id int) {
	c, ok := dc.cloudlets[id]
	if !ok {
		logrus.Debugf("[%.2f] %s: pause of cloudlet %d ignored, not active", sim.Clock, dc.Name, id)
		return
	}
	dc.updateProcessing(sim)
	if vm := dc.resident(c.VMID); vm != nil && vm.Scheduler.Pause(id, sim.Clock) {
		logrus.Debugf("[%.2f] %s: cloudlet %d paused", sim.Clock, dc.Name, id)
	}
	dc.arm(sim)
}

func (dc *Datacenter) processCloudletResume(sim *Simulator, id int) {
	c, ok := dc.cloudlets[id]
	if !ok {
		logrus.Debugf("[%.2f] %s: resume of cloudlet %d ignored, not active", sim.Clock, dc.Name, id)
		return
	}
	dc.updateProcessing(sim)
	if vm := dc.resident(c.VMID); vm != nil && vm.Scheduler.Resume(id, sim.Clock) {
		logrus.Debugf("[%.2f] %s: cloudlet %d resumed", sim.Clock, dc.Name, id)
	}
	dc.arm(sim)
}

// updateProcessing advances every resident VM to the current clock and
// returns finished cloudlets to the broker. Hosts and VMs are visited in
// placement order so returns are deterministic.
func (dc *Datacenter) updateProcessing(sim *Simulator) {
	for _, h := range dc.hosts {
		for _, id := range h.vmIDs {
			vm := dc.VM(id)
			for _, c := range vm.Scheduler.Advance(sim.Clock) {
				delete(dc.cloudlets, c.ID)
				logrus.Debugf("[%.2f] %s: cloudlet %d finished on VM %d", sim.Clock, dc.Name, c.ID, id)
				sim.Schedule(sim.newCloudletReturnEvent(sim.Clock, c))
			}
		}
	}
}

// nextFinish is the earliest completion over all resident VMs.
func (dc *Datacenter) nextFinish(now float64) float64 {
	next := math.Inf(1)
	for _, h := range dc.hosts {
		for _, id := range h.vmIDs {
			next = min(next, dc.VM(id).Scheduler.NextFinish(now))
		}
	}
	return next
}

// arm schedules an update at the earliest possible completion unless one is
// already pending at or before that time. An earlier arm supersedes the
// pending update, which is dropped when it fires.
func (dc *Datacenter) arm(sim *Simulator) {
	next := dc.nextFinish(sim.Clock)
	if math.IsInf(next, 1) {
		return
	}
	if dc.armed && dc.armedAt <= next {
		return
	}
	dc.nextToken++
	dc.armed = true
	dc.armedAt = next
	dc.armedToken = dc.nextToken
	sim.Schedule(sim.newUpdateProcessingEvent(next, dc.armedToken))
}

// destroyVMs releases every placed VM. Called once the broker has all
// its cloudlets back.
func (dc *Datacenter) destroyVMs(sim *Simulator) {
	for _, h := range dc.hosts {
		for _, id := range h.VMIDs() {
			h.DestroyVM(dc.VM(id))
			logrus.Debugf("[%.2f] %s: VM %d destroyed on host %d", sim.Clock, dc.Name, id, h.ID)
		}
	}
}

// checkDrained reports a queue consistency violation if cloudlets are still
// held by VM schedulers after the event queue ran dry.
func (dc *Datacenter) checkDrained() error {
	if len(dc.cloudlets) == 0 {
		return nil
	}
	var errs []error
	for _, h := range dc.hosts {
		for _, id := range h.vmIDs {
			s := dc.VM(id).Scheduler
			for _, c := range s.Executing() {
				errs = append(errs, fmt.Errorf("cloudlet %d stuck executing on VM %d at rate %v", c.ID, id, s.Rate(c.ID)))
			}
			if n := s.Waiting() + s.Paused(); n > 0 {
				errs = append(errs, fmt.Errorf("VM %d holds %d queued or paused cloudlets", id, n))
			}
		}
	}
	return fmt.Errorf("%w: %d cloudlets never finished: %w", ErrQueueConsistencyViolation, len(dc.cloudlets), multierr.Combine(errs...))
}
