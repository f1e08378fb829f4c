package ir

// FeatureVector is the fixed six-field feature set extracted from IR text.
// It is the only input the predictor sees.
type FeatureVector struct {
	LoopCount  int  `json:"loop_count"`
	FuncCalls  int  `json:"func_calls"`
	InstrCount int  `json:"instr_count"`
	HasBranch  bool `json:"has_branch"`
	UsesMemory bool `json:"uses_memory"`
	UsesGlobal bool `json:"uses_global"`
}

// IsZero reports whether every field holds its zero value. Extraction
// returns the zero vector on failure, so callers must treat it as
// "features unknown", never as "trivial program".
func (f FeatureVector) IsZero() bool {
	return f == FeatureVector{}
}

// Floats returns the vector as ordered float64 values for model input.
// Booleans map to 0/1.
func (f FeatureVector) Floats() [NumFeatures]float64 {
	return [NumFeatures]float64{
		float64(f.LoopCount),
		float64(f.FuncCalls),
		float64(f.InstrCount),
		boolToFloat(f.HasBranch),
		boolToFloat(f.UsesMemory),
		boolToFloat(f.UsesGlobal),
	}
}

// NumFeatures is the fixed width of the feature vector.
const NumFeatures = 6

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Potentials holds advisory per-pass optimization potential scores.
// Telemetry only: these never feed the predictor.
type Potentials map[string]int

// Potential score keys.
const (
	PotentialLoopUnroll = "loop_unroll"
	PotentialInlining   = "inlining"
	PotentialMem2Reg    = "mem2reg"
	PotentialConstFold  = "const_folding"
	PotentialDeadCode   = "dead_code_elim"
)
