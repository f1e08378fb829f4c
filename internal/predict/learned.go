package predict

import (
	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/predict/model"
)

// Learned predicts with the trained classifier. The rule table backs it
// up so Predict can never fail to produce a label.
type Learned struct {
	model    *model.Centroid
	fallback RuleBased
}

// Name returns the strategy name.
func (s *Learned) Name() string {
	return "learned"
}

// Predict asks the classifier and falls back to the rule table if the
// model cannot answer.
func (s *Learned) Predict(fv ir.FeatureVector) opt.Tier {
	label, ok := s.model.Predict(fv.Floats())
	if !ok {
		return s.fallback.Predict(fv)
	}
	return label
}
