package scenario

import (
	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"

	"github.com/cloudlet-sim/cloudlet-sim/sim"
	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// brokerID is the user id stamped on every VM and cloudlet; a scenario has
// exactly one broker.
const brokerID = 0

// Build validates cfg and assembles a ready-to-run Simulator. The returned
// simulator owns every entity it was built from.
func Build(cfg Config, scope tally.Scope) (*sim.Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := cfg.Policies.WithDefaults()
	name := cfg.DisplayName()

	dc := sim.NewDatacenter(name+"_Datacenter", cfg.Characteristics, buildHosts(cfg.Hosts, p.VMScheduler), sim.NewAllocationPolicy(p.Allocation))

	broker := sim.NewBroker(brokerID, name+"_Broker", cfg.Binding)
	broker.SubmitVMList(buildVMs(cfg.VMs, p.CloudletScheduler))
	broker.SubmitCloudletList(buildCloudlets(cfg.Cloudlets, sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))))
	broker.SubmitPauses(cfg.Pauses)

	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)})
	logrus.Debugf("built scenario %s: %d hosts, %d VMs, %d cloudlets", name, len(dc.Hosts()), countVMs(cfg.VMs), cfg.NumCloudlets())
	return sim.NewSimulator(dc, broker, scope, tr), nil
}

func buildHosts(groups []HostGroup, vmScheduler string) []*sim.Host {
	var hosts []*sim.Host
	for _, g := range groups {
		for i := 0; i < g.Count; i++ {
			id := len(hosts)
			hosts = append(hosts, sim.NewHost(id, sim.NewPEPool(g.PEs, g.MIPS), g.RAM, g.BW, g.Storage, vmScheduler))
		}
	}
	return hosts
}

func buildVMs(groups []VMGroup, cloudletScheduler string) []*sim.VM {
	var vms []*sim.VM
	for _, g := range groups {
		for i := 0; i < g.Count; i++ {
			id := len(vms)
			vms = append(vms, sim.NewVM(id, brokerID, g.MIPS, g.PEs, g.RAM, g.BW, g.Size, g.VMM, sim.NewCloudletScheduler(cloudletScheduler)))
		}
	}
	return vms
}

func countVMs(groups []VMGroup) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

// buildCloudlets draws each group's lengths from its own RNG stream, so the
// lengths in one group do not depend on the groups before it.
func buildCloudlets(groups []CloudletGroup, rng *sim.PartitionedRNG) []*sim.Cloudlet {
	var cloudlets []*sim.Cloudlet
	for gi, g := range groups {
		groupRNG := rng.ForSubsystem(sim.SubsystemCloudletGroup(gi))
		lo, hi := g.lengthBounds()
		for i := 0; i < g.Count; i++ {
			length := g.Length
			if g.LengthStdev > 0 {
				length = sim.GenerateLengthGauss(groupRNG, g.Length, g.LengthStdev, lo, hi)
			}
			c := sim.NewCloudlet(len(cloudlets), brokerID, length, g.PEs)
			c.FileSize = g.FileSize
			c.OutputSize = g.OutputSize
			if g.Utilization > 0 && g.Utilization < 1 {
				c.Utilization = sim.UtilizationFixed{Fraction: g.Utilization}
			}
			cloudlets = append(cloudlets, c)
		}
	}
	return cloudlets
}
