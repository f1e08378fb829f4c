package model

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
)

func exampleSet() []Example {
	return []Example{
		{Features: [ir.NumFeatures]float64{0, 0, 5, 0, 0, 0}, Label: opt.TierO1},
		{Features: [ir.NumFeatures]float64{0, 1, 8, 0, 0, 0}, Label: opt.TierO1},
		{Features: [ir.NumFeatures]float64{1, 2, 30, 1, 1, 0}, Label: opt.TierO2},
		{Features: [ir.NumFeatures]float64{2, 1, 35, 1, 1, 0}, Label: opt.TierO2},
		{Features: [ir.NumFeatures]float64{4, 6, 70, 1, 1, 0}, Label: opt.TierO3},
		{Features: [ir.NumFeatures]float64{3, 8, 60, 1, 1, 0}, Label: opt.TierO3},
	}
}

func TestCentroid_TrainEmpty(t *testing.T) {
	m := New()

	if err := m.Train(nil); !errors.Is(err, ErrNoExamples) {
		t.Errorf("expected ErrNoExamples, got %v", err)
	}
	if m.Trained() {
		t.Error("failed training must leave the model untrained")
	}
}

func TestCentroid_TrainRejectsInvalidLabel(t *testing.T) {
	m := New()

	err := m.Train([]Example{
		{Features: [ir.NumFeatures]float64{1, 1, 1, 0, 0, 0}, Label: opt.TierO0},
	})
	if err == nil {
		t.Fatal("expected error for O0 label")
	}
}

func TestCentroid_PredictUntrained(t *testing.T) {
	m := New()

	if _, ok := m.Predict([ir.NumFeatures]float64{1, 2, 3, 0, 0, 0}); ok {
		t.Error("untrained model must not predict")
	}
}

func TestCentroid_PredictNearest(t *testing.T) {
	m := New()
	if err := m.Train(exampleSet()); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	tests := []struct {
		features [ir.NumFeatures]float64
		want     opt.Tier
	}{
		{[ir.NumFeatures]float64{0, 0, 6, 0, 0, 0}, opt.TierO1},
		{[ir.NumFeatures]float64{1, 1, 32, 1, 1, 0}, opt.TierO2},
		{[ir.NumFeatures]float64{4, 7, 65, 1, 1, 0}, opt.TierO3},
	}

	for _, tt := range tests {
		got, ok := m.Predict(tt.features)
		if !ok {
			t.Fatalf("Predict(%v) declined", tt.features)
		}
		if got != tt.want {
			t.Errorf("Predict(%v) = %s, want %s", tt.features, got, tt.want)
		}
	}
}

func TestCentroid_AccuracyOnTrainingSet(t *testing.T) {
	m := New()
	examples := exampleSet()
	if err := m.Train(examples); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	// Well-separated classes should classify their own training set.
	if acc := m.Accuracy(examples); acc < 0.99 {
		t.Errorf("expected training accuracy 1.0, got %f", acc)
	}
}

func TestCentroid_SaveLoad(t *testing.T) {
	m := New()
	if err := m.Train(exampleSet()); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	m2 := New()
	if err := m2.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !m2.Trained() {
		t.Fatal("loaded model must be trained")
	}

	features := [ir.NumFeatures]float64{4, 7, 65, 1, 1, 0}
	want, _ := m.Predict(features)
	got, ok := m2.Predict(features)
	if !ok || got != want {
		t.Errorf("loaded model predicts %s, original predicts %s", got, want)
	}

	info := m2.Info()
	if info.Examples != len(exampleSet()) {
		t.Errorf("expected %d examples in info, got %d", len(exampleSet()), info.Examples)
	}
	if info.Classes != 3 {
		t.Errorf("expected 3 classes, got %d", info.Classes)
	}
}

func TestCentroid_LoadCorrupt(t *testing.T) {
	m := New()

	if err := m.Load(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for corrupt state")
	}
}
