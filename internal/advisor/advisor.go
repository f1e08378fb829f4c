// Package advisor orchestrates the evaluation pipeline: fingerprint and
// cache lookup, feature extraction, tier prediction, benchmarking, and
// result assembly. It also owns the predictor swap after retraining.
package advisor

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/haskel/optfox/internal/bench"
	"github.com/haskel/optfox/internal/fingerprint"
	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/predict"
	"github.com/haskel/optfox/internal/predict/model"
	"github.com/haskel/optfox/internal/store"
	"github.com/haskel/optfox/internal/toolchain"
	"github.com/haskel/optfox/internal/training"
)

var (
	// ErrEmptySource rejects requests whose source is empty or blank
	// before any toolchain work happens.
	ErrEmptySource = errors.New("source code is empty")

	// ErrInvalidName rejects contribution names that are unsafe to use
	// as dataset keys or file name stems.
	ErrInvalidName = errors.New("invalid code name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Advisor ties the pipeline together. All methods are safe for
// concurrent use; retraining serializes behind trainMu so concurrent
// contributions cannot interleave dataset writes with model fits.
type Advisor struct {
	tc      toolchain.Toolchain
	harness *bench.Harness
	cache   *store.CacheStore
	dataset *store.DatasetStore
	trainer *training.Trainer
	logger  *slog.Logger

	mu       sync.RWMutex
	strategy predict.Strategy

	trainMu sync.Mutex
}

// New wires an advisor together and installs the initial prediction
// strategy for the given model.
func New(tc toolchain.Toolchain, harness *bench.Harness, cache *store.CacheStore, dataset *store.DatasetStore, trainer *training.Trainer, strategy predict.Strategy, logger *slog.Logger) *Advisor {
	return &Advisor{
		tc:       tc,
		harness:  harness,
		cache:    cache,
		dataset:  dataset,
		trainer:  trainer,
		strategy: strategy,
		logger:   logger.With("component", "advisor"),
	}
}

// Strategy reports the name of the active prediction strategy.
func (a *Advisor) Strategy() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.strategy.Name()
}

// Evaluate runs the full pipeline for one program. Identical programs
// (up to comments and whitespace) hit the cache and skip both the
// toolchain and the benchmark entirely.
func (a *Advisor) Evaluate(ctx context.Context, source string) (opt.Result, error) {
	if isBlank(source) {
		return opt.Result{}, ErrEmptySource
	}

	fp := fingerprint.Of(source)
	if cached, ok := a.cache.Get(fp); ok {
		a.logger.Info("cache hit", "fingerprint", fp[:12], "best", cached.BestTier)
		cached.FromCache = true
		return cached, nil
	}

	features, potentials, unknown := a.extract(ctx, source)

	a.mu.RLock()
	predicted := a.strategy.Predict(features)
	a.mu.RUnlock()

	summary, err := a.harness.MeasureAll(ctx, source)
	if err != nil {
		return opt.Result{}, err
	}

	result := opt.Result{
		BaselineSeconds: summary.BaselineSeconds,
		BestTier:        summary.BestTier,
		PredictedTier:   predicted,
		ImprovementPct:  improvement(summary.BaselineSeconds, summary.BestSeconds),
		Features:        features,
		Potentials:      potentials,
		Observations:    summary.Observations,
		UnknownFeatures: unknown,
		Timestamp:       time.Now(),
	}

	a.cache.Put(fp, result)
	a.logger.Info("evaluated",
		"fingerprint", fp[:12],
		"predicted", predicted,
		"best", result.BestTier,
		"improvement", result.ImprovementPct)
	return result, nil
}

// Contribute benchmarks a named program for ground truth, adds it to
// the dataset, and retrains. The new model is installed before the
// call returns, so the next Evaluate already sees it.
func (a *Advisor) Contribute(ctx context.Context, source, name string) error {
	if isBlank(source) {
		return ErrEmptySource
	}
	if !validName.MatchString(name) {
		return ErrInvalidName
	}

	a.trainMu.Lock()
	defer a.trainMu.Unlock()

	m, err := a.trainer.Update(ctx, source, name)
	if err != nil {
		return err
	}
	a.install(predict.New(m))
	a.logger.Info("contribution accepted", "name", name, "dataset_size", a.dataset.Len())
	return nil
}

// Retrain refits the model on the current dataset and installs it.
func (a *Advisor) Retrain(ctx context.Context) error {
	a.trainMu.Lock()
	defer a.trainMu.Unlock()

	m, err := a.trainer.TrainFromDataset(ctx)
	if err != nil {
		return err
	}
	a.install(predict.New(m))
	return nil
}

// SetModel installs a strategy for m, switching between rules and the
// learned model as m's training state dictates. Used on startup and
// when an externally retrained model is reloaded from disk.
func (a *Advisor) SetModel(m *model.Centroid) {
	a.install(predict.New(m))
}

func (a *Advisor) install(s predict.Strategy) {
	a.mu.Lock()
	a.strategy = s
	a.mu.Unlock()
}

// extract compiles to IR and extracts features. A failed compile or
// empty vector yields the zero vector with the unknown flag set; the
// pipeline degrades to benchmarking with a rule-default prediction
// rather than failing outright.
func (a *Advisor) extract(ctx context.Context, source string) (ir.FeatureVector, ir.Potentials, bool) {
	irText, err := a.tc.CompileToIR(ctx, source)
	if err != nil {
		a.logger.Warn("IR compile failed, features unknown", "error", err)
		return ir.FeatureVector{}, nil, true
	}
	features, potentials := ir.Extract(irText)
	return features, potentials, features.IsZero()
}

func improvement(baseline, best float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (baseline - best) / baseline * 100
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
