package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlet-sim/cloudlet-sim/sim"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeTempYAML(t, `
name: small
seed: 7
policies:
  vm_scheduler: space-shared
  cloudlet_scheduler: time-shared
  allocation: most-free-pes
binding: dynamic
hosts:
  - {count: 3, pes: 2, mips: 2000, ram: 4096, bw: 10000, storage: 1000000}
vms:
  - {count: 2, mips: 1000, pes: 1, ram: 512, bw: 1000, size: 1000, vmm: Xen}
cloudlets:
  - {count: 5, length: 10000, length_stdev: 1000, pes: 1, file_size: 300, output_size: 300, utilization: 0.5}
pauses:
  - {cloudlet: 1, at: 2.5, duration: 4}
trace_level: decisions
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "small", cfg.DisplayName())
	assert.Equal(t, sim.VMSchedulerSpaceShared, cfg.Policies.VMScheduler)
	assert.Equal(t, sim.AllocationMostFreePEs, cfg.Policies.Allocation)
	assert.Equal(t, 3, cfg.Hosts[0].Count)
	assert.Equal(t, 0.5, cfg.Cloudlets[0].Utilization)
	assert.Equal(t, []sim.PauseWindow{{CloudletID: 1, At: 2.5, Duration: 4}}, cfg.Pauses)
	assert.Equal(t, 5, cfg.NumCloudlets())
}

func TestLoadConfig_UnknownFieldRejected(t *testing.T) {
	path := writeTempYAML(t, "hosts:\n  - {count: 1, pes: 1, mips: 1000, ram: 1, bw: 1, storge: 1}\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "storge")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading scenario")
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "TimeShared", cfg.DisplayName())
	assert.Equal(t, 10, cfg.NumCloudlets())
	assert.Equal(t, "x86", cfg.Characteristics.Arch)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	// GIVEN a scenario with several independent mistakes
	cfg := DefaultConfig()
	cfg.Policies.VMScheduler = "fair"
	cfg.Hosts[0].PEs = 0
	cfg.VMs[0].MIPS = -1
	cfg.Cloudlets[0].Utilization = 1.5
	cfg.Pauses = []sim.PauseWindow{{CloudletID: 99, At: 0, Duration: 0}}

	// WHEN validated
	err := cfg.Validate()

	// THEN all of them are reported under the invalid-config sentinel
	require.Error(t, err)
	assert.True(t, errors.Is(err, sim.ErrInvalidScenarioConfig))
	msg := err.Error()
	for _, want := range []string{"unknown VM scheduler", "hosts[0].pes", "vms[0].mips", "cloudlets[0].utilization", "pauses[0]: cloudlet 99", "pauses[0].duration"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %s", want, msg)
	}
}

func TestValidate_RejectsBadBindingAndTraceLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Binding = "sticky"
	cfg.TraceLevel = "verbose"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "unknown binding")
	assert.ErrorContains(t, err, "unknown trace_level")
}

func TestValidate_NoHosts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts = nil
	assert.ErrorIs(t, cfg.Validate(), sim.ErrInvalidScenarioConfig)
}

func TestValidate_NoVMs(t *testing.T) {
	// GIVEN the stock scenario with its VM list emptied
	cfg := DefaultConfig()
	cfg.VMs = nil

	// WHEN validated
	err := cfg.Validate()

	// THEN it is rejected before any run starts
	assert.ErrorIs(t, err, sim.ErrInvalidScenarioConfig)
	assert.ErrorContains(t, err, "at least one VM group required")
}

func TestValidate_VMResourceRequestsMustBePositive(t *testing.T) {
	// GIVEN a VM group requesting no RAM, bandwidth or storage
	cfg := DefaultConfig()
	cfg.VMs[0].RAM, cfg.VMs[0].BW, cfg.VMs[0].Size = 0, 0, 0

	// WHEN validated
	err := cfg.Validate()

	// THEN each zero request is reported
	require.ErrorIs(t, err, sim.ErrInvalidScenarioConfig)
	for _, want := range []string{"vms[0].ram", "vms[0].bw", "vms[0].size"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestWithPolicy_DoesNotAlias(t *testing.T) {
	base := DefaultConfig()
	base.Name = "named"
	ss := base.WithPolicy(sim.VMSchedulerSpaceShared)
	ss.Hosts[0].Count = 9

	assert.Equal(t, 2, base.Hosts[0].Count)
	assert.Equal(t, "SpaceShared", ss.DisplayName())
	assert.Equal(t, sim.CloudletSchedulerSpaceShared, ss.Policies.CloudletScheduler)
}
