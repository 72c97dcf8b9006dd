package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		a := rng1.ForSubsystem(SubsystemCloudletGroup(1)).Float64()
		b := rng2.ForSubsystem(SubsystemCloudletGroup(1)).Float64()
		if a != b {
			t.Errorf("Value %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from subsystem A doesn't affect subsystem B
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemCloudletGroup(1)).Float64()
	}
	aFirst := rngA.ForSubsystem(SubsystemCloudletGroup(0)).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	want := fresh.ForSubsystem(SubsystemCloudletGroup(0)).Float64()

	if aFirst != want {
		t.Errorf("group 0 first value = %v, want %v (isolation broken)", aFirst, want)
	}
}

func TestPartitionedRNG_DerivesFromHashedName(t *testing.T) {
	seed := int64(42)
	name := SubsystemCloudletGroup(0)
	rng := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(name)
	direct := rand.New(rand.NewSource(seed ^ fnv1a64(name)))
	for i := 0; i < 10; i++ {
		assert.Equal(t, direct.Float64(), rng.Float64(), "value %d", i)
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	assert.Same(t, rng.ForSubsystem(SubsystemCloudletGroup(0)), rng.ForSubsystem(SubsystemCloudletGroup(0)))
	assert.Equal(t, SimulationKey(42), rng.Key())
}

func TestPartitionedRNG_NegativeSeed(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(math.MinInt64))
	val := rng.ForSubsystem(SubsystemCloudletGroup(3)).Float64()
	assert.GreaterOrEqual(t, val, 0.0)
	assert.Less(t, val, 1.0)
}

func TestFnv1a64_NoCollisionAcrossGroups(t *testing.T) {
	hashes := make(map[int64]string)
	for _, name := range []string{SubsystemCloudletGroup(0), SubsystemCloudletGroup(1), SubsystemCloudletGroup(10), ""} {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemCloudletGroup(t *testing.T) {
	assert.Equal(t, "cloudlet_group_0", SubsystemCloudletGroup(0))
	assert.Equal(t, "cloudlet_group_12", SubsystemCloudletGroup(12))
}

// === GenerateLengthGauss Tests ===

func TestGenerateLengthGauss_ZeroStdReturnsMean(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 40000.0, GenerateLengthGauss(rng, 40000, 0, 1, 80000))
	// no randomness consumed
	assert.Equal(t, rand.New(rand.NewSource(1)).Int63(), rng.Int63())
}

func TestGenerateLengthGauss_Clamped(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := GenerateLengthGauss(rng, 1000, 500, 800, 1200)
		assert.GreaterOrEqual(t, v, 800.0)
		assert.LessOrEqual(t, v, 1200.0)
		assert.Equal(t, math.Round(v), v)
	}
}

func TestGenerateLengthGauss_Deterministic(t *testing.T) {
	a := NewPartitionedRNG(NewSimulationKey(9)).ForSubsystem(SubsystemCloudletGroup(0))
	b := NewPartitionedRNG(NewSimulationKey(9)).ForSubsystem(SubsystemCloudletGroup(0))
	for i := 0; i < 10; i++ {
		assert.Equal(t, GenerateLengthGauss(a, 1000, 100, 1, 5000), GenerateLengthGauss(b, 1000, 100, 1, 5000))
	}
}

func BenchmarkPartitionedRNG_ForSubsystem_CacheHit(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	rng.ForSubsystem(SubsystemCloudletGroup(0))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForSubsystem(SubsystemCloudletGroup(0))
	}
}
