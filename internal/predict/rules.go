package predict

import (
	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
)

// Rule thresholds. The call-count threshold matches the recursion
// weighting applied during extraction, so one self-recursive function
// is enough to trip the first rule.
const (
	ruleHighCallCount = 8
	ruleManyLoops     = 2
	ruleManyCalls     = 5
	ruleLargeInstr    = 30
	ruleModerateInstr = 20
	ruleTinyInstr     = 15
)

// RuleBased is the deterministic fallback predictor: an ordered rule
// table, first match wins.
type RuleBased struct{}

// Name returns the strategy name.
func (s *RuleBased) Name() string {
	return "rules"
}

// Predict walks the rule table top to bottom.
func (s *RuleBased) Predict(fv ir.FeatureVector) opt.Tier {
	switch {
	case fv.FuncCalls >= ruleHighCallCount && fv.HasBranch:
		// Recursion proxy: heavy dynamic call volume with branching.
		return opt.TierO3

	case fv.LoopCount >= ruleManyLoops && fv.FuncCalls > ruleManyCalls:
		return opt.TierO3

	case fv.UsesMemory && fv.InstrCount > ruleLargeInstr:
		return opt.TierO2

	case fv.LoopCount > 0 && fv.InstrCount > ruleModerateInstr:
		return opt.TierO2

	case fv.HasBranch && fv.InstrCount < ruleLargeInstr:
		return opt.TierO1

	case fv.UsesGlobal || fv.InstrCount < ruleTinyInstr:
		return opt.TierOs

	default:
		return opt.TierO2
	}
}
