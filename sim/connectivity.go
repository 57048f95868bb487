package sim

import (
	"math/rand/v2"
	"slices"
)

// ConnectionMap maps a presynaptic index to its postsynaptic targets, in
// insertion order. The same target may appear more than once: repeated edges
// are kept and each one delivers its own quantum.
type ConnectionMap [][]int

// GenerateConnections draws a fixed-in-degree random graph: every neuron i
// receives exactly Ce edges from [0, Ne) and Ci edges from [Ne, N), sampled
// uniformly with replacement and never from i itself. Out-degrees are only
// exact in expectation.
func GenerateConnections(p Params, rng *rand.Rand) ConnectionMap {
	n, ne := p.Neurons, p.NumExcitatory()
	ni := n - ne
	ce, ci := p.ExcitatoryInDegree(), p.InhibitoryInDegree()

	conn := make(ConnectionMap, n)
	for i := 0; i < n; i++ {
		for k := 0; k < ce; k++ {
			r := sampleExcluding(rng, 0, ne, i)
			conn[r] = append(conn[r], i)
		}
		for k := 0; k < ci; k++ {
			r := sampleExcluding(rng, ne, ni, i)
			conn[r] = append(conn[r], i)
		}
	}
	return conn
}

// sampleExcluding draws uniformly from [lo, lo+size), redrawing while the
// result equals self. Validate guarantees size >= 2 whenever this is called.
func sampleExcluding(rng *rand.Rand, lo, size, self int) int {
	for {
		r := lo + rng.IntN(size)
		if r != self {
			return r
		}
	}
}

// Clone returns a deep copy.
func (c ConnectionMap) Clone() ConnectionMap {
	out := make(ConnectionMap, len(c))
	for i, posts := range c {
		out[i] = slices.Clone(posts)
	}
	return out
}

// EdgeCount returns the total number of edges, duplicates included.
func (c ConnectionMap) EdgeCount() int {
	total := 0
	for _, posts := range c {
		total += len(posts)
	}
	return total
}

// InDegree counts, for every postsynaptic neuron, the incoming edges from
// excitatory (pre < ne) and inhibitory presynaptic neurons.
type InDegree struct {
	Excitatory int
	Inhibitory int
}

// Total returns the combined in-degree.
func (d InDegree) Total() int { return d.Excitatory + d.Inhibitory }

// InDegrees tallies incoming edges per neuron.
func (c ConnectionMap) InDegrees(ne int) []InDegree {
	deg := make([]InDegree, len(c))
	for pre, posts := range c {
		for _, post := range posts {
			if pre < ne {
				deg[post].Excitatory++
			} else {
				deg[post].Inhibitory++
			}
		}
	}
	return deg
}

// Duplicates returns the number of edges that repeat an earlier (pre, post) pair.
func (c ConnectionMap) Duplicates() int {
	dup := 0
	for _, posts := range c {
		seen := make(map[int]bool, len(posts))
		for _, post := range posts {
			if seen[post] {
				dup++
			}
			seen[post] = true
		}
	}
	return dup
}
