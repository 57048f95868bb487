package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two networks with the same SimulationKey and identical Params
// MUST produce bit-for-bit identical connectivity and spike trains.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemConnectivity is the RNG subsystem for random connectivity generation.
	SubsystemConnectivity = "connectivity"
)

// SubsystemNeuron returns the subsystem name for the background noise of neuron i.
// Each neuron owns its stream so that spike trains do not depend on update order.
func SubsystemNeuron(i int) string {
	return fmt.Sprintf("neuron_%d", i)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: PCG seeded with (masterSeed XOR fnv1a64(name), fnv1a64(name)).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
// The sources it hands out are independent and may each be used by one goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(p.Source(name))
	p.subsystems[name] = rng
	return rng
}

// Source returns a fresh, uncached source for the named subsystem. Calling it
// twice with the same name yields two sources producing the same sequence.
func (p *PartitionedRNG) Source(name string) rand.Source {
	h := fnv1a64(name)
	return rand.NewPCG(uint64(int64(p.key)^h), uint64(h))
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
