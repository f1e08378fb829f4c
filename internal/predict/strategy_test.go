package predict

import (
	"testing"

	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/predict/model"
)

func trainedModel(t *testing.T) *model.Centroid {
	t.Helper()

	m := model.New()
	err := m.Train([]model.Example{
		{Features: [ir.NumFeatures]float64{0, 0, 5, 0, 0, 0}, Label: opt.TierO1},
		{Features: [ir.NumFeatures]float64{3, 5, 60, 1, 1, 0}, Label: opt.TierO3},
	})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return m
}

func TestNew_UntrainedFallsBackToRules(t *testing.T) {
	s := New(model.New())

	if s.Name() != "rules" {
		t.Errorf("expected rules strategy for untrained model, got %s", s.Name())
	}
}

func TestNew_NilModelFallsBackToRules(t *testing.T) {
	s := New(nil)

	if s.Name() != "rules" {
		t.Errorf("expected rules strategy for nil model, got %s", s.Name())
	}
}

func TestNew_TrainedUsesLearned(t *testing.T) {
	s := New(trainedModel(t))

	if s.Name() != "learned" {
		t.Errorf("expected learned strategy for trained model, got %s", s.Name())
	}
}

func TestLearned_PredictsNearestClass(t *testing.T) {
	s := New(trainedModel(t))

	simple := ir.FeatureVector{InstrCount: 6}
	if got := s.Predict(simple); got != opt.TierO1 {
		t.Errorf("expected O1 for simple program, got %s", got)
	}

	complex := ir.FeatureVector{LoopCount: 3, FuncCalls: 5, InstrCount: 55, HasBranch: true, UsesMemory: true}
	if got := s.Predict(complex); got != opt.TierO3 {
		t.Errorf("expected O3 for complex program, got %s", got)
	}
}
