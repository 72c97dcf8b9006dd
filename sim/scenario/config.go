package scenario

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/cloudlet-sim/cloudlet-sim/sim"
	"github.com/cloudlet-sim/cloudlet-sim/sim/trace"
)

// Config is one simulation scenario. Loaded from YAML via LoadConfig(path).
// Hosts, VMs and cloudlets are described as groups of identical entities;
// ids are assigned sequentially across groups in declaration order.
type Config struct {
	Name            string              `yaml:"name,omitempty"` // defaults to the policy label
	Seed            int64               `yaml:"seed"`
	Policies        sim.PolicyBundle    `yaml:"policies"`
	Binding         string              `yaml:"binding,omitempty"` // static (default) or dynamic
	Characteristics sim.Characteristics `yaml:"characteristics"`
	Hosts           []HostGroup         `yaml:"hosts"`
	VMs             []VMGroup           `yaml:"vms"`
	Cloudlets       []CloudletGroup     `yaml:"cloudlets"`
	Pauses          []sim.PauseWindow   `yaml:"pauses,omitempty"`
	TraceLevel      string              `yaml:"trace_level,omitempty"`
}

// HostGroup describes Count identical hosts.
type HostGroup struct {
	Count   int     `yaml:"count"`
	PEs     int     `yaml:"pes"`
	MIPS    float64 `yaml:"mips"` // per PE
	RAM     int64   `yaml:"ram"`
	BW      int64   `yaml:"bw"`
	Storage int64   `yaml:"storage"`
}

// VMGroup describes Count identical VMs.
type VMGroup struct {
	Count int     `yaml:"count"`
	MIPS  float64 `yaml:"mips"` // per PE
	PEs   int     `yaml:"pes"`
	RAM   int64   `yaml:"ram"`
	BW    int64   `yaml:"bw"`
	Size  int64   `yaml:"size"`
	VMM   string  `yaml:"vmm"`
}

// CloudletGroup describes Count cloudlets. With LengthStdev > 0 each length
// is drawn from a clamped normal distribution around Length.
type CloudletGroup struct {
	Count       int     `yaml:"count"`
	Length      float64 `yaml:"length"`
	LengthStdev float64 `yaml:"length_stdev,omitempty"`
	LengthMin   float64 `yaml:"length_min,omitempty"` // default 1
	LengthMax   float64 `yaml:"length_max,omitempty"` // default length + 3 stdev
	PEs         int     `yaml:"pes"`
	FileSize    int64   `yaml:"file_size"`
	OutputSize  int64   `yaml:"output_size"`
	Utilization float64 `yaml:"utilization,omitempty"` // fraction of granted capacity used; 0 = full
}

// lengthBounds returns the clamp range for jittered lengths.
func (g CloudletGroup) lengthBounds() (float64, float64) {
	lo, hi := g.LengthMin, g.LengthMax
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = g.Length + 3*g.LengthStdev
	}
	return lo, hi
}

// DefaultConfig is the stock comparison scenario: two single-PE hosts, four
// VMs and ten identical cloudlets, time-shared at both layers.
func DefaultConfig() Config {
	return Config{
		Policies: sim.UniformPolicy(sim.VMSchedulerTimeShared),
		Characteristics: sim.Characteristics{
			Arch: "x86", OS: "Linux", VMM: "Xen",
			TimeZone: 10.0, CostPerSec: 3.0, CostPerMem: 0.05, CostPerStorage: 0.1, CostPerBW: 0.1,
		},
		Hosts:     []HostGroup{{Count: 2, PEs: 1, MIPS: 1000, RAM: 2048, BW: 10000, Storage: 1000000}},
		VMs:       []VMGroup{{Count: 4, MIPS: 1000, PEs: 1, RAM: 512, BW: 1000, Size: 1000, VMM: "Xen"}},
		Cloudlets: []CloudletGroup{{Count: 10, Length: 40000, PEs: 1, FileSize: 300, OutputSize: 300}},
	}
}

// DisplayName is Name, or the policy label when Name is empty.
func (c Config) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Policies.Label()
}

// WithPolicy returns a copy of c using sharing at both scheduler layers,
// keeping the configured allocation policy.
func (c Config) WithPolicy(sharing string) Config {
	out := c
	out.Policies.VMScheduler = sharing
	out.Policies.CloudletScheduler = sharing
	out.Name = ""
	out.Hosts = append([]HostGroup(nil), c.Hosts...)
	out.VMs = append([]VMGroup(nil), c.VMs...)
	out.Cloudlets = append([]CloudletGroup(nil), c.Cloudlets...)
	out.Pauses = append([]sim.PauseWindow(nil), c.Pauses...)
	return out
}

// NumCloudlets returns the total cloudlet count across groups.
func (c Config) NumCloudlets() int {
	n := 0
	for _, g := range c.Cloudlets {
		n += g.Count
	}
	return n
}

// LoadConfig reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading scenario: %w", err)
	}
	return DecodeConfig(bytes.NewReader(data))
}

// DecodeConfig parses a YAML scenario strictly.
func DecodeConfig(r io.Reader) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing scenario: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem in the scenario at once. The returned
// error wraps sim.ErrInvalidScenarioConfig.
func (c Config) Validate() error {
	var errs error
	if err := c.Policies.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if !sim.ValidBindings[c.Binding] {
		errs = multierr.Append(errs, fmt.Errorf("unknown binding %q; valid: static, dynamic", c.Binding))
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		errs = multierr.Append(errs, fmt.Errorf("unknown trace_level %q; valid: none, decisions", c.TraceLevel))
	}
	if len(c.Hosts) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one host group required"))
	}
	if len(c.VMs) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one VM group required"))
	}
	for i, g := range c.Hosts {
		errs = multierr.Append(errs, g.validate(fmt.Sprintf("hosts[%d]", i)))
	}
	for i, g := range c.VMs {
		errs = multierr.Append(errs, g.validate(fmt.Sprintf("vms[%d]", i)))
	}
	for i, g := range c.Cloudlets {
		errs = multierr.Append(errs, g.validate(fmt.Sprintf("cloudlets[%d]", i)))
	}
	n := c.NumCloudlets()
	for i, p := range c.Pauses {
		prefix := fmt.Sprintf("pauses[%d]", i)
		if p.CloudletID < 0 || p.CloudletID >= n {
			errs = multierr.Append(errs, fmt.Errorf("%s: cloudlet %d out of range [0, %d)", prefix, p.CloudletID, n))
		}
		errs = multierr.Append(errs, nonNegative(prefix+".at", p.At))
		errs = multierr.Append(errs, positive(prefix+".duration", p.Duration))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", sim.ErrInvalidScenarioConfig, errs)
	}
	return nil
}

func (g HostGroup) validate(prefix string) error {
	return multierr.Combine(
		positiveInt(prefix+".count", g.Count),
		positiveInt(prefix+".pes", g.PEs),
		positive(prefix+".mips", g.MIPS),
		positiveInt64(prefix+".ram", g.RAM),
		positiveInt64(prefix+".bw", g.BW),
		positiveInt64(prefix+".storage", g.Storage),
	)
}

func (g VMGroup) validate(prefix string) error {
	return multierr.Combine(
		positiveInt(prefix+".count", g.Count),
		positiveInt(prefix+".pes", g.PEs),
		positive(prefix+".mips", g.MIPS),
		positiveInt64(prefix+".ram", g.RAM),
		positiveInt64(prefix+".bw", g.BW),
		positiveInt64(prefix+".size", g.Size),
	)
}

func (g CloudletGroup) validate(prefix string) error {
	errs := multierr.Combine(
		positiveInt(prefix+".count", g.Count),
		positiveInt(prefix+".pes", g.PEs),
		positive(prefix+".length", g.Length),
		nonNegative(prefix+".length_stdev", g.LengthStdev),
		nonNegativeInt64(prefix+".file_size", g.FileSize),
		nonNegativeInt64(prefix+".output_size", g.OutputSize),
	)
	if g.Utilization < 0 || g.Utilization > 1 || math.IsNaN(g.Utilization) {
		errs = multierr.Append(errs, fmt.Errorf("%s.utilization must be in [0, 1], got %v", prefix, g.Utilization))
	}
	if g.LengthStdev > 0 {
		lo, hi := g.lengthBounds()
		if lo <= 0 || lo > hi {
			errs = multierr.Append(errs, fmt.Errorf("%s: length bounds [%v, %v] invalid", prefix, lo, hi))
		}
	}
	return errs
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%s must be a positive finite number, got %v", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a non-negative finite number, got %v", name, v)
	}
	return nil
}

func positiveInt(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return nil
}

func positiveInt64(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return nil
}

func nonNegativeInt64(name string, v int64) error {
	if v < 0 {
		return fmt.Errorf("%s must be non-negative, got %d", name, v)
	}
	return nil
}
