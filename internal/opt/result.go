package opt

import (
	"time"

	"github.com/haskel/optfox/internal/ir"
)

// Observation is one tier's measured outcome. Seconds equal to zero
// means "unmeasured" (no valid samples survived), never an actual
// near-zero runtime.
type Observation struct {
	Tier      Tier    `json:"tier"`
	Seconds   float64 `json:"seconds"`
	Samples   int     `json:"samples"`
	Succeeded bool    `json:"succeeded"`
}

// Result is the assembled answer for one evaluated program.
type Result struct {
	BaselineSeconds float64          `json:"baseline_seconds"`
	BestTier        Tier             `json:"best_tier"`
	PredictedTier   Tier             `json:"predicted_tier"`
	ImprovementPct  float64          `json:"improvement_percent"`
	Features        ir.FeatureVector `json:"features"`
	Potentials      ir.Potentials    `json:"potentials,omitempty"`
	Observations    []Observation    `json:"observations"`

	// UnknownFeatures is set when extraction failed and the feature
	// vector is the all-zero placeholder.
	UnknownFeatures bool `json:"unknown_features,omitempty"`

	FromCache bool      `json:"from_cache"`
	Timestamp time.Time `json:"timestamp"`
}
