package sim

// EventKind discriminates simulation events.
type EventKind string

const (
	EventVMCreate         EventKind = "VM_CREATE"
	EventVMCreateAck      EventKind = "VM_CREATE_ACK"
	EventCloudletSubmit   EventKind = "CLOUDLET_SUBMIT"
	EventUpdateProcessing EventKind = "UPDATE_CLOUDLET_PROCESSING"
	EventCloudletReturn   EventKind = "CLOUDLET_RETURN"
	EventCloudletPause    EventKind = "CLOUDLET_PAUSE"
	EventCloudletResume   EventKind = "CLOUDLET_RESUME"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (simulated seconds), a per-run EventID used
// for FIFO tie-breaking, and an Execute method that advances simulation
// state when invoked.
type Event interface {
	Timestamp() float64
	EventID() uint64
	Kind() EventKind
	Execute(*Simulator)
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	timestamp float64
	eventID   uint64
	kind      EventKind
}

func (e *BaseEvent) Timestamp() float64 { return e.timestamp }

func (e *BaseEvent) EventID() uint64 { return e.eventID }

func (e *BaseEvent) Kind() EventKind { return e.kind }

// VMCreateEvent asks the datacenter to place a VM.
type VMCreateEvent struct {
	BaseEvent
	VM *VM
}

func (e *VMCreateEvent) Execute(sim *Simulator) {
	sim.Datacenter.processVMCreate(sim, e.VM)
}

// VMCreateAckEvent tells the broker whether a VM was placed.
// Err is nil on success and wraps ErrInsufficientHostCapacity otherwise.
type VMCreateAckEvent struct {
	BaseEvent
	VM  *VM
	Err error
}

func (e *VMCreateAckEvent) Execute(sim *Simulator) {
	sim.Broker.processVMCreateAck(sim, e.VM, e.Err)
}

// CloudletSubmitEvent hands a cloudlet to its VM's cloudlet scheduler.
type CloudletSubmitEvent struct {
	BaseEvent
	Cloudlet *Cloudlet
}

func (e *CloudletSubmitEvent) Execute(sim *Simulator) {
	sim.Datacenter.processCloudletSubmit(sim, e.Cloudlet)
}

// UpdateProcessingEvent advances every VM's cloudlets to the event time.
// Only the most recently armed update (matching token) does any work;
// superseded ones are dropped.
type UpdateProcessingEvent struct {
	BaseEvent
	token uint64
}

func (e *UpdateProcessingEvent) Execute(sim *Simulator) {
	sim.Datacenter.processUpdate(sim, e.token)
}

// CloudletReturnEvent delivers a terminal cloudlet back to the broker.
type CloudletReturnEvent struct {
	BaseEvent
	Cloudlet *Cloudlet
}

func (e *CloudletReturnEvent) Execute(sim *Simulator) {
	sim.Broker.processCloudletReturn(sim, e.Cloudlet)
}

// CloudletPauseEvent suspends a cloudlet on its VM.
type CloudletPauseEvent struct {
	BaseEvent
	CloudletID int
}

func (e *CloudletPauseEvent) Execute(sim *Simulator) {
	sim.Datacenter.processCloudletPause(sim, e.CloudletID)
}

// CloudletResumeEvent resumes a paused cloudlet.
type CloudletResumeEvent struct {
	BaseEvent
	CloudletID int
}

func (e *CloudletResumeEvent) Execute(sim *Simulator) {
	sim.Datacenter.processCloudletResume(sim, e.CloudletID)
}
