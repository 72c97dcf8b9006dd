package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"

	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// testScenario describes a small homogeneous setup for end-to-end tests.
type testScenario struct {
	policy    PolicyBundle
	hosts     int
	hostPEs   int
	hostMIPS  float64
	vms       int
	vmMIPS    float64
	vmPEs     int
	cloudlets []*Cloudlet
	binding   string
	pauses    []PauseWindow
	scope     tally.Scope
	trace     *trace.SimulationTrace
}

// defaultTestScenario mirrors the stock two-host comparison: 2 hosts of one
// 1000 MIPS PE, 4 VMs of 1000 MIPS, 10 cloudlets of 40000 MI.
func defaultTestScenario(sharing string) testScenario {
	cloudlets := make([]*Cloudlet, 10)
	for i := range cloudlets {
		cloudlets[i] = NewCloudlet(i, 0, 40000, 1)
	}
	return testScenario{
		policy:    UniformPolicy(sharing),
		hosts:     2,
		hostPEs:   1,
		hostMIPS:  1000,
		vms:       4,
		vmMIPS:    1000,
		vmPEs:     1,
		cloudlets: cloudlets,
	}
}

func (ts testScenario) build() *Simulator {
	p := ts.policy.WithDefaults()
	hosts := make([]*Host, ts.hosts)
	for i := range hosts {
		hosts[i] = NewHost(i, NewPEPool(ts.hostPEs, ts.hostMIPS), 2048, 10000, 1000000, p.VMScheduler)
	}
	dc := NewDatacenter("dc", Characteristics{}, hosts, NewAllocationPolicy(p.Allocation))
	broker := NewBroker(0, "broker", ts.binding)
	vms := make([]*VM, ts.vms)
	for i := range vms {
		vms[i] = NewVM(i, 0, ts.vmMIPS, ts.vmPEs, 512, 1000, 1000, "Xen", NewCloudletScheduler(p.CloudletScheduler))
	}
	broker.SubmitVMList(vms)
	broker.SubmitCloudletList(ts.cloudlets)
	broker.SubmitPauses(ts.pauses)
	return NewSimulator(dc, broker, ts.scope, ts.trace)
}

func (ts testScenario) run(t *testing.T) *Simulator {
	t.Helper()
	s := ts.build()
	require.NoError(t, s.Run(context.Background()))
	return s
}

func resultsByID(s *Simulator) map[int]CloudletResult {
	out := make(map[int]CloudletResult)
	for _, r := range s.Results() {
		out[r.ID] = r
	}
	return out
}

func lengthCloudlets(lengths ...float64) []*Cloudlet {
	cs := make([]*Cloudlet, len(lengths))
	for i, l := range lengths {
		cs[i] = NewCloudlet(i, 0, l, 1)
	}
	return cs
}
