// Package report exports spike trains and renders human-readable views of a
// network. The export format is one line per spike, "time_ms<TAB>neuron",
// with time_ms = step * sim.StepDurationMs.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/lifnet-sim/lifnet/sim"
)

// SpikeRecord is one spike of one neuron.
type SpikeRecord struct {
	Step   int64
	Neuron int
}

// TimeMs returns the spike time in milliseconds.
func (r SpikeRecord) TimeMs() float64 {
	return float64(r.Step) * sim.StepDurationMs
}

// Records flattens the spike trains of neurons, neuron-major, each train in
// firing order.
func Records(neurons []*sim.Neuron) []SpikeRecord {
	var records []SpikeRecord
	for i, n := range neurons {
		for _, step := range n.SpikeTimes() {
			records = append(records, SpikeRecord{Step: step, Neuron: i})
		}
	}
	return records
}

// WriteSpikes writes every spike of neurons to w.
func WriteSpikes(w io.Writer, neurons []*sim.Neuron) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	for _, r := range Records(neurons) {
		row := []string{
			strconv.FormatFloat(r.TimeMs(), 'f', 1, 64),
			strconv.Itoa(r.Neuron),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing spike of neuron %d: %w", r.Neuron, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing spikes: %w", err)
	}
	return nil
}

// WriteSpikesFile creates path and writes the spikes into it. The neurons are
// not modified, so a failed export can be retried.
func WriteSpikesFile(path string, neurons []*sim.Neuron) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating spike file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing spike file: %w", cerr)
		}
	}()
	return WriteSpikes(file, neurons)
}

// ReadSpikes parses the format written by WriteSpikes.
func ReadSpikes(r io.Reader) ([]SpikeRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = 2

	var records []SpikeRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading spike row: %w", err)
		}
		ms, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing spike time %q: %w", row[0], err)
		}
		neuron, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("parsing neuron index %q: %w", row[1], err)
		}
		records = append(records, SpikeRecord{
			Step:   int64(math.Round(ms / sim.StepDurationMs)),
			Neuron: neuron,
		})
	}
	return records, nil
}

// ReadSpikesFile opens path and parses it with ReadSpikes.
func ReadSpikesFile(path string) ([]SpikeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spike file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadSpikes(file)
}
