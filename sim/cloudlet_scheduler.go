package sim

import (
	"fmt"
	"math"
	"slices"
)

const (
	// completionTolerance is the fraction of a cloudlet's length that may
	// remain unexecuted when it is declared finished (float rounding).
	completionTolerance = 1e-9
	// timeEpsilon is the smallest remaining run time treated as non-zero.
	timeEpsilon = 1e-9
)

// CloudletScheduler divides a VM's granted capacity among its cloudlets.
//
// Callers MUST call Advance(now) before Submit, Pause, Resume or SetCapacity
// at the same now. Submit, Pause and Resume panic if progress has not been
// accounted up to now.
type CloudletScheduler interface {
	// Name returns the policy name ("time-shared" or "space-shared").
	Name() string
	// SetCapacity sets the per-PE MIPS and PE count granted to the VM.
	SetCapacity(mipsPerPE float64, pes int)
	// Submit accepts c at now. It returns false if c can never run on this VM;
	// the caller then fails the cloudlet.
	Submit(c *Cloudlet, now float64) bool
	// Advance consumes capacity from the last update to now, completes the
	// cloudlets that reached their length and returns them in order.
	Advance(now float64) []*Cloudlet
	// NextFinish returns the earliest time an executing cloudlet can finish
	// under the current shares, or +Inf if nothing is executing.
	NextFinish(now float64) float64
	// Pause suspends a queued or executing cloudlet.
	Pause(id int, now float64) bool
	// Resume makes a paused cloudlet eligible to run again.
	Resume(id int, now float64) bool
	// Rate returns the current instruction rate of an executing cloudlet.
	Rate(id int) float64
	// Executing returns the executing cloudlets in admission order.
	Executing() []*Cloudlet
	// Waiting returns the number of cloudlets queued for PEs.
	Waiting() int
	// Paused returns the number of paused cloudlets.
	Paused() int
}

// cloudletBase holds the state common to both cloudlet schedulers.
type cloudletBase struct {
	mipsPerPE  float64
	pes        int
	exec       []*Cloudlet
	paused     []*Cloudlet
	lastUpdate float64
}

func (b *cloudletBase) SetCapacity(mipsPerPE float64, pes int) {
	b.mipsPerPE = mipsPerPE
	b.pes = pes
}

func (b *cloudletBase) mustBeCurrent(op string, now float64) {
	if now != b.lastUpdate {
		panic(fmt.Sprintf("CloudletScheduler.%s at %v before Advance (last update %v)", op, now, b.lastUpdate))
	}
}

func (b *cloudletBase) Executing() []*Cloudlet { return slices.Clone(b.exec) }

func (b *cloudletBase) Paused() int { return len(b.paused) }

// progress adds rate*elapsed to every executing cloudlet and collects the
// ones that are now complete. rate is evaluated against the current set.
func (b *cloudletBase) progress(now float64, rate func(*Cloudlet) float64) []*Cloudlet {
	if now < b.lastUpdate {
		panic(fmt.Sprintf("CloudletScheduler.Advance: time went backwards: %v < %v", now, b.lastUpdate))
	}
	elapsed := now - b.lastUpdate
	rates := make([]float64, len(b.exec))
	for i, c := range b.exec {
		rates[i] = rate(c)
		if elapsed > 0 {
			c.Executed = min(c.Length, c.Executed+rates[i]*elapsed)
		}
	}
	b.lastUpdate = now

	var finished []*Cloudlet
	remaining := b.exec[:0]
	for i, c := range b.exec {
		if isComplete(c, rates[i]) {
			c.succeed(now)
			finished = append(finished, c)
			continue
		}
		remaining = append(remaining, c)
	}
	clear(b.exec[len(remaining):])
	b.exec = remaining
	return finished
}

func (b *cloudletBase) nextFinish(now float64, rate func(*Cloudlet) float64) float64 {
	next := math.Inf(1)
	for _, c := range b.exec {
		r := rate(c)
		if r <= 0 {
			continue
		}
		next = min(next, now+c.Remaining()/r)
	}
	if !math.IsInf(next, 1) && next <= now {
		next = math.Nextafter(now, math.Inf(1))
	}
	return next
}

func (b *cloudletBase) takePaused(id int) *Cloudlet {
	for i, c := range b.paused {
		if c.ID == id {
			b.paused = slices.Delete(b.paused, i, i+1)
			return c
		}
	}
	return nil
}

func (b *cloudletBase) takeExecuting(id int) *Cloudlet {
	for i, c := range b.exec {
		if c.ID == id {
			b.exec = slices.Delete(b.exec, i, i+1)
			return c
		}
	}
	return nil
}

func (b *cloudletBase) startExecution(c *Cloudlet, now float64) {
	c.setStatus(StatusInExecution)
	if c.StartTime < 0 {
		c.StartTime = now
	}
	b.exec = append(b.exec, c)
}

// isComplete reports whether c has nothing meaningful left to execute.
func isComplete(c *Cloudlet, rate float64) bool {
	rem := c.Remaining()
	if rem <= c.Length*completionTolerance {
		return true
	}
	return rate > 0 && rem/rate <= timeEpsilon
}

// TimeSharedCloudletScheduler runs every cloudlet on the VM at once and
// divides the VM's capacity equally. With k single-PE cloudlets on a single
// PE of capacity C each cloudlet runs at C/k.
//
// Thread-safety: NOT thread-safe.
type TimeSharedCloudletScheduler struct {
	cloudletBase
}

// NewTimeSharedCloudletScheduler creates an idle time-shared scheduler.
func NewTimeSharedCloudletScheduler() *TimeSharedCloudletScheduler {
	return &TimeSharedCloudletScheduler{}
}

func (s *TimeSharedCloudletScheduler) Name() string { return CloudletSchedulerTimeShared }

// rate grants perPE*pes to each cloudlet, scaled down by P/S once the
// cloudlets' summed PE demand S exceeds the VM's P PEs.
func (s *TimeSharedCloudletScheduler) rate(c *Cloudlet) float64 {
	demand := 0
	for _, e := range s.exec {
		demand += e.PEs
	}
	if demand == 0 {
		return 0
	}
	scale := min(1.0, float64(s.pes)/float64(demand))
	return s.mipsPerPE * float64(c.PEs) * scale * c.utilization(s.lastUpdate)
}

// Submit starts c immediately; time-shared VMs never queue.
func (s *TimeSharedCloudletScheduler) Submit(c *Cloudlet, now float64) bool {
	s.mustBeCurrent("Submit", now)
	c.SubmitTime = now
	s.startExecution(c, now)
	return true
}

func (s *TimeSharedCloudletScheduler) Advance(now float64) []*Cloudlet {
	return s.progress(now, s.rate)
}

func (s *TimeSharedCloudletScheduler) NextFinish(now float64) float64 {
	return s.nextFinish(now, s.rate)
}

func (s *TimeSharedCloudletScheduler) Pause(id int, now float64) bool {
	s.mustBeCurrent("Pause", now)
	c := s.takeExecuting(id)
	if c == nil {
		return false
	}
	c.setStatus(StatusPaused)
	s.paused = append(s.paused, c)
	return true
}

func (s *TimeSharedCloudletScheduler) Resume(id int, now float64) bool {
	s.mustBeCurrent("Resume", now)
	c := s.takePaused(id)
	if c == nil {
		return false
	}
	s.startExecution(c, now)
	return true
}

func (s *TimeSharedCloudletScheduler) Rate(id int) float64 {
	for _, c := range s.exec {
		if c.ID == id {
			return s.rate(c)
		}
	}
	return 0
}

func (s *TimeSharedCloudletScheduler) Waiting() int { return 0 }

// SpaceSharedCloudletScheduler gives each executing cloudlet exclusive PEs
// at full per-PE capacity. Cloudlets that do not fit wait in FIFO order; the
// queue head is never overtaken.
//
// Thread-safety: NOT thread-safe.
type SpaceSharedCloudletScheduler struct {
	cloudletBase
	waiting *WaitQueue
}

// NewSpaceSharedCloudletScheduler creates an idle space-shared scheduler.
func NewSpaceSharedCloudletScheduler() *SpaceSharedCloudletScheduler {
	return &SpaceSharedCloudletScheduler{waiting: &WaitQueue{}}
}

func (s *SpaceSharedCloudletScheduler) Name() string { return CloudletSchedulerSpaceShared }

func (s *SpaceSharedCloudletScheduler) rate(c *Cloudlet) float64 {
	return s.mipsPerPE * float64(c.PEs) * c.utilization(s.lastUpdate)
}

func (s *SpaceSharedCloudletScheduler) usedPEs() int {
	n := 0
	for _, c := range s.exec {
		n += c.PEs
	}
	return n
}

// admit moves queue heads into execution while they fit.
func (s *SpaceSharedCloudletScheduler) admit(now float64) {
	for s.waiting.Len() > 0 && s.waiting.Peek().PEs <= s.pes-s.usedPEs() {
		s.startExecution(s.waiting.Dequeue(), now)
	}
}

// Submit queues c and admits it at once if PEs are free. A cloudlet asking
// for more PEs than the VM has can never run and is refused.
func (s *SpaceSharedCloudletScheduler) Submit(c *Cloudlet, now float64) bool {
	s.mustBeCurrent("Submit", now)
	if c.PEs > s.pes {
		return false
	}
	c.SubmitTime = now
	c.setStatus(StatusSubmitted)
	s.waiting.Enqueue(c)
	s.admit(now)
	return true
}

func (s *SpaceSharedCloudletScheduler) Advance(now float64) []*Cloudlet {
	finished := s.progress(now, s.rate)
	s.admit(now)
	return finished
}

func (s *SpaceSharedCloudletScheduler) NextFinish(now float64) float64 {
	return s.nextFinish(now, s.rate)
}

func (s *SpaceSharedCloudletScheduler) Pause(id int, now float64) bool {
	s.mustBeCurrent("Pause", now)
	c := s.takeExecuting(id)
	if c == nil {
		c = s.waiting.Remove(id)
	}
	if c == nil {
		return false
	}
	c.setStatus(StatusPaused)
	s.paused = append(s.paused, c)
	s.admit(now)
	return true
}

// Resume puts a paused cloudlet back at the tail of the wait queue.
func (s *SpaceSharedCloudletScheduler) Resume(id int, now float64) bool {
	s.mustBeCurrent("Resume", now)
	c := s.takePaused(id)
	if c == nil {
		return false
	}
	c.setStatus(StatusSubmitted)
	s.waiting.Enqueue(c)
	s.admit(now)
	return true
}

func (s *SpaceSharedCloudletScheduler) Rate(id int) float64 {
	for _, c := range s.exec {
		if c.ID == id {
			return s.rate(c)
		}
	}
	return 0
}

func (s *SpaceSharedCloudletScheduler) Waiting() int { return s.waiting.Len() }

// NewCloudletScheduler creates a CloudletScheduler by name.
// Valid names: "time-shared", "space-shared".
// Panics on unrecognized names.
func NewCloudletScheduler(name string) CloudletScheduler {
	switch name {
	case CloudletSchedulerTimeShared:
		return NewTimeSharedCloudletScheduler()
	case CloudletSchedulerSpaceShared:
		return NewSpaceSharedCloudletScheduler()
	default:
		panic(fmt.Sprintf("unknown cloudlet scheduler %q", name))
	}
}
