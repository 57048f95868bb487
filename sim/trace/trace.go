package trace

// TraceLevel controls the verbosity of activity tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPopulation captures the population spike count of every step.
	TraceLevelPopulation TraceLevel = "population"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelPopulation: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelPopulation
}

// SimulationTrace collects population records during a run.
type SimulationTrace struct {
	Config TraceConfig
	Steps  []PopulationRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Steps:  make([]PopulationRecord, 0),
	}
}

// RecordStep appends a population record.
func (st *SimulationTrace) RecordStep(record PopulationRecord) {
	st.Steps = append(st.Steps, record)
}
