package scenario

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	"golang.org/x/sync/errgroup"

	"github.com/cloudlet-sim/cloudlet-sim/sim"
	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// VMPlacement records where a VM ended up.
type VMPlacement struct {
	ID      int
	HostID  int // sim.NoHost if creation failed
	Created bool
}

// Result bundles all outputs from one scenario run.
type Result struct {
	Name         string
	Config       Config
	Summary      sim.Summary
	Cloudlets    []sim.CloudletResult // broker receive order
	VMs          []VMPlacement        // submission order
	Trace        *trace.SimulationTrace
	TraceSummary *trace.TraceSummary // nil when tracing is off
}

// Run builds and executes one scenario. Metrics go to scope tagged with the
// scenario name; a nil scope disables reporting.
func Run(ctx context.Context, cfg Config, scope tally.Scope) (*Result, error) {
	name := cfg.DisplayName()
	if scope != nil {
		scope = scope.Tagged(map[string]string{"scenario": name})
	}
	s, err := Build(cfg, scope)
	if err != nil {
		return nil, err
	}
	logrus.Infof("running scenario %s (%s)", name, cfg.Policies.WithDefaults().Label())
	if err := s.Run(ctx); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	res := &Result{
		Name:      name,
		Config:    cfg,
		Summary:   s.Summary(name, cfg.Policies.WithDefaults()),
		Cloudlets: s.Results(),
		Trace:     s.Trace,
	}
	for _, vm := range s.Datacenter.VMs() {
		res.VMs = append(res.VMs, VMPlacement{ID: vm.ID, HostID: vm.HostID, Created: vm.Created()})
	}
	if s.Trace != nil {
		res.TraceSummary = trace.Summarize(s.Trace)
	}
	logrus.Infof("scenario %s: %d/%d cloudlets succeeded, makespan %.2f",
		name, res.Summary.Succeeded, res.Summary.Submitted, res.Summary.Makespan)
	return res, nil
}

// Compare runs every scenario concurrently, one goroutine each, and returns
// results in input order. The first failure cancels the rest.
func Compare(ctx context.Context, cfgs []Config, scope tally.Scope) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			res, err := Run(ctx, cfg, scope)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SharingComparison derives the time-shared and space-shared variants of base,
// in that order.
func SharingComparison(base Config) []Config {
	return []Config{
		base.WithPolicy(sim.VMSchedulerTimeShared),
		base.WithPolicy(sim.VMSchedulerSpaceShared),
	}
}
