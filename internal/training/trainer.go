// Package training turns the dataset of benchmarked programs into a
// trained model. Each example is labeled by actually measuring the
// program across every optimization tier, so the model only ever learns
// from ground truth. When the dataset is too small the trainer falls
// back to a bootstrap directory of source files, and failing that to a
// built-in seed set.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haskel/optfox/internal/bench"
	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/predict/model"
	"github.com/haskel/optfox/internal/store"
	"github.com/haskel/optfox/internal/toolchain"
)

const (
	// minExamples is the smallest dataset the trainer will fit a model
	// on. Below it the built-in seed set is used instead.
	minExamples = 5

	// holdoutThreshold is the dataset size at which a validation split
	// becomes worthwhile; holdoutFraction of examples are held out for
	// an accuracy report.
	holdoutThreshold = 10
	holdoutFraction  = 0.2

	// splitSeed keeps the train/holdout split deterministic so repeated
	// retrains over the same dataset report comparable accuracy.
	splitSeed = 42
)

// Trainer builds models from the dataset and keeps the persisted copy
// in sync. It is safe for a single caller at a time; the advisor
// serializes retraining.
type Trainer struct {
	dataset *store.DatasetStore
	models  *store.ModelStore
	harness *bench.Harness
	tc      toolchain.Toolchain
	seedDir string
	logger  *slog.Logger
}

func New(dataset *store.DatasetStore, models *store.ModelStore, harness *bench.Harness, tc toolchain.Toolchain, seedDir string, logger *slog.Logger) *Trainer {
	return &Trainer{
		dataset: dataset,
		models:  models,
		harness: harness,
		tc:      tc,
		seedDir: seedDir,
		logger:  logger.With("component", "trainer"),
	}
}

// Update benchmarks source across all tiers, stores the resulting
// example under name, and retrains. The returned model reflects the
// new example. Benchmarking is synchronous and can take a while.
func (t *Trainer) Update(ctx context.Context, source, name string) (*model.Centroid, error) {
	if err := t.ingest(ctx, source, name); err != nil {
		return nil, err
	}
	return t.TrainFromDataset(ctx)
}

// TrainFromDataset fits a fresh model on the accumulated dataset. If
// the dataset is below minExamples it first tries to bootstrap from the
// seed directory, then falls back to the built-in seed set. The trained
// model is persisted; a persistence failure is logged but the in-memory
// model is still returned.
func (t *Trainer) TrainFromDataset(ctx context.Context) (*model.Centroid, error) {
	if t.dataset.Len() < minExamples && t.seedDir != "" {
		added := t.bootstrap(ctx)
		if added > 0 {
			t.logger.Info("bootstrapped dataset from seed sources", "added", added, "total", t.dataset.Len())
		}
	}

	examples := datasetExamples(t.dataset.Examples())

	var trainSet, holdout []model.Example
	if len(examples) < minExamples {
		// The curated set is small and label-balanced; holding rows out
		// could starve a label entirely, so it trains in full.
		t.logger.Warn("dataset too small, training on built-in seed set", "have", len(examples), "need", minExamples)
		trainSet = seedExamples()
	} else {
		trainSet, holdout = split(examples)
	}

	m := model.New()
	if err := m.Train(trainSet); err != nil {
		return nil, fmt.Errorf("training model: %w", err)
	}

	if len(holdout) > 0 {
		t.logger.Info("model trained",
			"examples", len(trainSet),
			"holdout", len(holdout),
			"accuracy", fmt.Sprintf("%.2f", m.Accuracy(holdout)))
	} else {
		t.logger.Info("model trained", "examples", len(trainSet))
	}

	if err := t.models.Save(m); err != nil {
		t.logger.Error("failed to persist model, continuing with in-memory copy", "error", err)
	}
	return m, nil
}

// ingest measures source across all tiers and records the winner as a
// training example. A compile or benchmark failure leaves the dataset
// untouched.
func (t *Trainer) ingest(ctx context.Context, source, name string) error {
	summary, err := t.harness.MeasureAll(ctx, source)
	if err != nil {
		return fmt.Errorf("benchmarking %s: %w", name, err)
	}

	irText, err := t.tc.CompileToIR(ctx, source)
	if err != nil {
		return fmt.Errorf("extracting features for %s: %w", name, err)
	}
	features, potentials := ir.Extract(irText)

	t.dataset.Add(store.TrainingExample{
		CodeName:   name,
		Features:   features,
		Potentials: potentials,
		BestTier:   summary.BestTier,
		Timings:    summary.Timings,
		Timestamp:  time.Now(),
	})
	return nil
}

// bootstrap benchmarks every source file in the seed directory that the
// dataset does not already know about. Individual failures are logged
// and skipped; bootstrap is best-effort.
func (t *Trainer) bootstrap(ctx context.Context) int {
	entries, err := os.ReadDir(t.seedDir)
	if err != nil {
		t.logger.Warn("seed directory unavailable", "dir", t.seedDir, "error", err)
		return 0
	}

	known := make(map[string]bool)
	for _, ex := range t.dataset.Examples() {
		known[ex.CodeName] = true
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".c" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".c")
		if known[name] {
			continue
		}

		source, err := os.ReadFile(filepath.Join(t.seedDir, entry.Name()))
		if err != nil {
			t.logger.Warn("skipping seed source", "name", entry.Name(), "error", err)
			continue
		}

		t.logger.Info("benchmarking seed source", "name", name)
		if err := t.ingest(ctx, string(source), name); err != nil {
			t.logger.Warn("seed source failed, skipping", "name", name, "error", err)
			continue
		}
		added++
	}
	return added
}

func datasetExamples(rows []store.TrainingExample) []model.Example {
	examples := make([]model.Example, 0, len(rows))
	for _, row := range rows {
		if !row.BestTier.IsLabel() {
			continue
		}
		examples = append(examples, model.Example{
			Features: row.Features.Floats(),
			Label:    row.BestTier,
		})
	}
	return examples
}

// split shuffles deterministically and holds out a validation slice
// once the dataset is large enough to afford one.
func split(examples []model.Example) (trainSet, holdout []model.Example) {
	if len(examples) < holdoutThreshold {
		return examples, nil
	}

	shuffled := make([]model.Example, len(examples))
	copy(shuffled, examples)
	rng := rand.New(rand.NewSource(splitSeed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := int(float64(len(shuffled)) * holdoutFraction)
	return shuffled[n:], shuffled[:n]
}
