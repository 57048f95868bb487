package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/lifnet-sim/lifnet/sim"
)

// The display helpers are meant for small networks while debugging; their
// output grows with N and the number of edges.

// DisplayNeurons lists the population with its types.
func DisplayNeurons(w io.Writer, neurons []*sim.Neuron) {
	fmt.Fprintf(w, "---Neurons---\n\n")
	for i, n := range neurons {
		fmt.Fprintf(w, "N%d\t%s\n", i, n.Type())
	}
	fmt.Fprintln(w)
}

// DisplayConnectionMap prints each presynaptic neuron with its targets in
// insertion order.
func DisplayConnectionMap(w io.Writer, conn sim.ConnectionMap) {
	rule := strings.Repeat("=", 41)
	fmt.Fprintf(w, "---Connection Map---\n\n   %s\n", rule)
	for pre, posts := range conn {
		targets := make([]string, len(posts))
		for k, post := range posts {
			targets[k] = fmt.Sprint(post)
		}
		fmt.Fprintf(w, "N%d\t%s\n", pre, strings.Join(targets, " "))
	}
	fmt.Fprintf(w, "   %s\n\n", rule)
}

// DisplaySpikeTimes prints the spike times of every neuron that fired.
func DisplaySpikeTimes(w io.Writer, neurons []*sim.Neuron) {
	fmt.Fprintf(w, "---Spikes---\n\n")
	for i, n := range neurons {
		times := n.SpikeTimes()
		if len(times) == 0 {
			continue
		}
		fmt.Fprintf(w, "---N%d--- %d spikes at:\n", i, len(times))
		for _, step := range times {
			fmt.Fprintf(w, "t = %.1f ms\n", float64(step)*sim.StepDurationMs)
		}
		fmt.Fprintln(w)
	}
}

// DisplayInDegrees prints per-neuron in-degrees and flags any neuron whose
// counts differ from the configured Ce/Ci.
func DisplayInDegrees(w io.Writer, net *sim.Network) (mismatches int) {
	p := net.Params()
	ce, ci := p.ExcitatoryInDegree(), p.InhibitoryInDegree()
	fmt.Fprintf(w, "---In-degrees (want Ce=%d, Ci=%d)---\n\n", ce, ci)
	for i, d := range net.InDegrees() {
		mark := ""
		if d.Excitatory != ce || d.Inhibitory != ci {
			mark = "  MISMATCH"
			mismatches++
		}
		fmt.Fprintf(w, "N%d\tE=%d I=%d%s\n", i, d.Excitatory, d.Inhibitory, mark)
	}
	fmt.Fprintln(w)
	return mismatches
}

// DisplaySimulation prints neurons, connectivity and spikes.
func DisplaySimulation(w io.Writer, net *sim.Network) {
	neurons := net.Neurons()
	DisplayNeurons(w, neurons)
	DisplayConnectionMap(w, net.ConnectionMap())
	DisplaySpikeTimes(w, neurons)
}
