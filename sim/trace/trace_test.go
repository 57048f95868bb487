package trace

import (
	"testing"
)

func TestSimulationTrace_RecordStep_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for population activity
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelPopulation})

	// WHEN a step record is recorded
	st.RecordStep(PopulationRecord{Step: 12, Spikes: 5, Excitatory: 4, Inhibitory: 1})

	// THEN the trace contains one record with correct data
	if len(st.Steps) != 1 {
		t.Fatalf("expected 1 record, got %d", len(st.Steps))
	}
	if st.Steps[0].Step != 12 || st.Steps[0].Spikes != 5 {
		t.Errorf("unexpected record %+v", st.Steps[0])
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelPopulation})

	// WHEN multiple records are added
	for step := int64(0); step < 3; step++ {
		st.RecordStep(PopulationRecord{Step: step, Spikes: int(step)})
	}

	// THEN order is preserved
	for i, r := range st.Steps {
		if r.Step != int64(i) {
			t.Errorf("record %d has step %d", i, r.Step)
		}
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	tests := []struct {
		level   TraceLevel
		enabled bool
	}{
		{TraceLevelNone, false},
		{"", false},
		{TraceLevelPopulation, true},
	}
	for _, tt := range tests {
		if got := (TraceConfig{Level: tt.level}).Enabled(); got != tt.enabled {
			t.Errorf("Enabled() for %q = %v, want %v", tt.level, got, tt.enabled)
		}
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"population", true},
		{"", true}, // empty defaults to none
		{"detailed", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
