// Package model implements the learned tier classifier.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
)

// ErrNoExamples is returned when training is attempted on an empty set.
var ErrNoExamples = errors.New("no training examples")

// Example is one labeled training observation.
type Example struct {
	Features [ir.NumFeatures]float64
	Label    opt.Tier
}

// Centroid is a nearest-centroid classifier: features are standardized
// against the training distribution and a class centroid is kept per
// tier label. Prediction picks the closest centroid, ties resolved by
// the fixed label order.
type Centroid struct {
	mu    sync.RWMutex
	state centroidState
}

type centroidState struct {
	Trained   bool                               `json:"trained"`
	Examples  int                                `json:"examples"`
	Mean      [ir.NumFeatures]float64            `json:"mean"`
	Scale     [ir.NumFeatures]float64            `json:"scale"`
	Centroids map[string][ir.NumFeatures]float64 `json:"centroids"`
	Counts    map[string]int64                   `json:"counts"`
}

// Stats describes the trained state for telemetry.
type Stats struct {
	Trained  bool  `json:"trained"`
	Examples int   `json:"examples"`
	Classes  int   `json:"classes"`
}

// New creates an untrained classifier.
func New() *Centroid {
	return &Centroid{
		state: centroidState{
			Centroids: make(map[string][ir.NumFeatures]float64),
			Counts:    make(map[string]int64),
		},
	}
}

// Trained reports whether the classifier holds a trained state.
func (m *Centroid) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Trained
}

// Train fits the classifier to the given examples, replacing any
// previous state.
func (m *Centroid) Train(examples []Example) error {
	if len(examples) == 0 {
		return ErrNoExamples
	}
	for _, ex := range examples {
		if !ex.Label.IsLabel() {
			return fmt.Errorf("invalid training label: %s", ex.Label)
		}
	}

	state := centroidState{
		Trained:   true,
		Examples:  len(examples),
		Centroids: make(map[string][ir.NumFeatures]float64),
		Counts:    make(map[string]int64),
	}

	// Global standardization: mean and stddev per feature, with the
	// scale floored so constant features do not blow up the division.
	n := float64(len(examples))
	for _, ex := range examples {
		for i, v := range ex.Features {
			state.Mean[i] += v / n
		}
	}
	for _, ex := range examples {
		for i, v := range ex.Features {
			d := v - state.Mean[i]
			state.Scale[i] += d * d / n
		}
	}
	for i := range state.Scale {
		state.Scale[i] = math.Sqrt(state.Scale[i])
		if state.Scale[i] < 1e-9 {
			state.Scale[i] = 1
		}
	}

	for _, ex := range examples {
		label := ex.Label.String()
		centroid := state.Centroids[label]
		for i, v := range ex.Features {
			centroid[i] += (v - state.Mean[i]) / state.Scale[i]
		}
		state.Centroids[label] = centroid
		state.Counts[label]++
	}
	for label, centroid := range state.Centroids {
		count := float64(state.Counts[label])
		for i := range centroid {
			centroid[i] /= count
		}
		state.Centroids[label] = centroid
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	return nil
}

// Predict returns the label whose centroid lies closest to the
// standardized feature vector. The boolean is false when untrained.
func (m *Centroid) Predict(features [ir.NumFeatures]float64) (opt.Tier, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.state.Trained {
		return "", false
	}

	var std [ir.NumFeatures]float64
	for i, v := range features {
		std[i] = (v - m.state.Mean[i]) / m.state.Scale[i]
	}

	best := opt.Tier("")
	bestDist := math.Inf(1)
	for _, label := range opt.Labels() {
		centroid, ok := m.state.Centroids[label.String()]
		if !ok {
			continue
		}
		var dist float64
		for i := range std {
			d := std[i] - centroid[i]
			dist += d * d
		}
		if dist < bestDist {
			best = label
			bestDist = dist
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}

// Accuracy returns the fraction of examples the classifier labels
// correctly.
func (m *Centroid) Accuracy(examples []Example) float64 {
	if len(examples) == 0 {
		return 0
	}
	correct := 0
	for _, ex := range examples {
		label, ok := m.Predict(ex.Features)
		if ok && label == ex.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(examples))
}

// Info returns trained-state telemetry.
func (m *Centroid) Info() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Trained:  m.state.Trained,
		Examples: m.state.Examples,
		Classes:  len(m.state.Centroids),
	}
}

// Save serializes the classifier state to a writer.
func (m *Centroid) Save(w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return json.NewEncoder(w).Encode(m.state)
}

// Load deserializes the classifier state from a reader.
func (m *Centroid) Load(r io.Reader) error {
	var state centroidState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	if state.Centroids == nil {
		state.Centroids = make(map[string][ir.NumFeatures]float64)
	}
	if state.Counts == nil {
		state.Counts = make(map[string]int64)
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	return nil
}
