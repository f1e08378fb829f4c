package training

import (
	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/predict/model"
)

// seedExamples is the hand-curated fallback dataset. It spans every
// prediction label so the learned strategy is never untrained, even on
// a fresh install with no contributions and no bootstrap sources.
// Feature order: loops, calls, instructions, branch, memory, global.
func seedExamples() []model.Example {
	rows := []struct {
		f     [6]float64
		label opt.Tier
	}{
		// Simple programs.
		{[6]float64{0, 0, 8, 0, 0, 0}, opt.TierO1},
		{[6]float64{0, 1, 12, 0, 1, 0}, opt.TierO1},
		{[6]float64{1, 0, 15, 1, 1, 0}, opt.TierO1},

		// Moderate complexity.
		{[6]float64{1, 2, 25, 1, 1, 0}, opt.TierO2},
		{[6]float64{2, 1, 30, 1, 1, 0}, opt.TierO2},
		{[6]float64{0, 3, 20, 1, 1, 1}, opt.TierO2},
		{[6]float64{1, 1, 35, 1, 1, 0}, opt.TierO2},

		// Complex, loop- and call-heavy programs.
		{[6]float64{3, 5, 60, 1, 1, 0}, opt.TierO3},
		{[6]float64{2, 8, 55, 1, 1, 0}, opt.TierO3},
		{[6]float64{4, 3, 70, 1, 1, 0}, opt.TierO3},
		{[6]float64{1, 10, 45, 1, 1, 0}, opt.TierO3},
		{[6]float64{5, 4, 80, 1, 1, 0}, opt.TierO3},

		// Memory-heavy programs.
		{[6]float64{2, 2, 40, 1, 1, 1}, opt.TierO2},
		{[6]float64{1, 1, 25, 0, 1, 1}, opt.TierOs},
		{[6]float64{0, 2, 18, 0, 1, 1}, opt.TierOs},

		// Size-critical programs.
		{[6]float64{0, 1, 10, 0, 0, 1}, opt.TierOs},
		{[6]float64{1, 0, 12, 0, 1, 1}, opt.TierOs},
		{[6]float64{0, 0, 5, 0, 0, 0}, opt.TierOz},
		{[6]float64{0, 1, 7, 0, 0, 1}, opt.TierOz},
	}

	examples := make([]model.Example, 0, len(rows))
	for _, row := range rows {
		examples = append(examples, model.Example{Features: row.f, Label: row.label})
	}
	return examples
}
