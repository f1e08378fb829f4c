// Package predict maps feature vectors to advisory tier labels.
//
// The prediction is telemetry: the authoritative best tier always comes
// from exhaustive measurement, and both are reported side by side.
package predict

import (
	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/predict/model"
)

// Strategy maps a feature vector to an advisory tier label.
type Strategy interface {
	// Name returns the strategy name.
	Name() string

	// Predict returns the advisory label. Always a member of the fixed
	// label set; never fails.
	Predict(fv ir.FeatureVector) opt.Tier
}

// New resolves the strategy once at construction time: a trained
// classifier yields the learned strategy, anything else falls back to
// the rule table. Callers never re-check availability per prediction.
func New(m *model.Centroid) Strategy {
	if m != nil && m.Trained() {
		return &Learned{model: m}
	}
	return &RuleBased{}
}
