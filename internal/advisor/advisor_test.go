package advisor

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haskel/optfox/internal/bench"
	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/predict"
	"github.com/haskel/optfox/internal/store"
	"github.com/haskel/optfox/internal/toolchain"
	"github.com/haskel/optfox/internal/training"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeToolchain counts compiler invocations so tests can assert the
// cache short-circuits the pipeline. With failIR set the IR lowering
// fails while tiered builds still succeed.
type fakeToolchain struct {
	irCalls      atomic.Int64
	compileCalls atomic.Int64
	failIR       bool
}

func (f *fakeToolchain) CompileToIR(ctx context.Context, source string) (string, error) {
	f.irCalls.Add(1)
	if f.failIR {
		return "", toolchain.ErrCompileFailed
	}
	return `define i32 @main() {
entry:
  %i = alloca i32
  store i32 0, i32* %i
  %cmp = icmp slt i32 0, 10
  br i1 %cmp, label %a, label %b

a:
  br label %b

b:
  ret i32 0
}
`, nil
}

func (f *fakeToolchain) Compile(ctx context.Context, source string, tier opt.Tier) (*toolchain.Executable, error) {
	f.compileCalls.Add(1)
	return &toolchain.Executable{Path: "/fake/" + tier.String()}, nil
}

type fakeRunner struct{}

func (f *fakeRunner) Run(ctx context.Context, exe *toolchain.Executable, timeout time.Duration) (toolchain.RunResult, error) {
	switch exe.Path {
	case "/fake/O2":
		return toolchain.RunResult{WallClock: 100 * time.Millisecond}, nil
	default:
		return toolchain.RunResult{WallClock: 400 * time.Millisecond}, nil
	}
}

func newTestAdvisor(t *testing.T) (*Advisor, *fakeToolchain, *store.DatasetStore) {
	t.Helper()

	dir := t.TempDir()
	log := testLogger()

	tc := &fakeToolchain{}
	harness := bench.New(tc, &fakeRunner{}, bench.Config{
		Runs:       3,
		RunTimeout: time.Second,
	}, log)

	cache := store.NewCacheStore(dir, log)
	dataset := store.NewDatasetStore(dir, log)
	models := store.NewModelStore(dir, log)
	trainer := training.New(dataset, models, harness, tc, "", log)

	adv := New(tc, harness, cache, dataset, trainer, predict.New(nil), log)
	return adv, tc, dataset
}

func TestEvaluate_EmptySource(t *testing.T) {
	adv, tc, _ := newTestAdvisor(t)

	for _, source := range []string{"", "   \n\t  "} {
		if _, err := adv.Evaluate(context.Background(), source); !errors.Is(err, ErrEmptySource) {
			t.Errorf("expected ErrEmptySource for %q, got %v", source, err)
		}
	}
	if tc.compileCalls.Load() != 0 {
		t.Error("validation must reject before any compile")
	}
}

func TestEvaluate_FullPipeline(t *testing.T) {
	adv, _, _ := newTestAdvisor(t)

	result, err := adv.Evaluate(context.Background(), "int main() { return 0; }")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if result.BestTier != opt.TierO2 {
		t.Errorf("expected measured best O2, got %s", result.BestTier)
	}
	if !result.PredictedTier.IsLabel() {
		t.Errorf("expected a label prediction, got %q", result.PredictedTier)
	}
	if result.FromCache {
		t.Error("fresh evaluation must not be marked cached")
	}
	if result.UnknownFeatures {
		t.Error("features were extractable, unknown flag must be clear")
	}

	// Baseline 0.4s, best 0.1s.
	if math.Abs(result.ImprovementPct-75.0) > 0.001 {
		t.Errorf("expected 75%% improvement, got %f", result.ImprovementPct)
	}
}

func TestEvaluate_UnknownFeaturesStillBenchmarked(t *testing.T) {
	adv, tc, _ := newTestAdvisor(t)
	tc.failIR = true

	result, err := adv.Evaluate(context.Background(), "int main() { return 0; }")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !result.UnknownFeatures {
		t.Error("failed IR lowering must flag the result as unknown features")
	}
	if !result.Features.IsZero() {
		t.Errorf("expected the zero feature vector, got %+v", result.Features)
	}
	if !result.PredictedTier.IsLabel() {
		t.Errorf("expected a rule-default prediction, got %q", result.PredictedTier)
	}
	if result.BestTier != opt.TierO2 {
		t.Errorf("expected measured best O2, got %s", result.BestTier)
	}

	// The flag survives the round trip through the cache.
	cached, err := adv.Evaluate(context.Background(), "int main() { return 0; }")
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}
	if !cached.FromCache {
		t.Error("expected cache hit on identical source")
	}
	if !cached.UnknownFeatures {
		t.Error("cached result must keep the unknown features flag")
	}
}

func TestEvaluate_CacheHit(t *testing.T) {
	adv, tc, _ := newTestAdvisor(t)

	source := "int main() { return 0; }"
	first, err := adv.Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("first Evaluate failed: %v", err)
	}
	compilesAfterFirst := tc.compileCalls.Load()

	second, err := adv.Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}

	if !second.FromCache {
		t.Error("expected cache hit on identical source")
	}
	if second.BestTier != first.BestTier {
		t.Error("cached result must match the original")
	}
	if tc.compileCalls.Load() != compilesAfterFirst {
		t.Error("cache hit must not invoke the compiler")
	}
}

func TestEvaluate_CacheIgnoresComments(t *testing.T) {
	adv, tc, _ := newTestAdvisor(t)

	if _, err := adv.Evaluate(context.Background(), "int main() { return 0; }"); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	compiles := tc.compileCalls.Load()

	variant := "// my program\nint main() { return 0; }   \n"
	result, err := adv.Evaluate(context.Background(), variant)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !result.FromCache {
		t.Error("comment-only variant must hit the cache")
	}
	if tc.compileCalls.Load() != compiles {
		t.Error("cache hit must not invoke the compiler")
	}
}

func TestContribute_InvalidName(t *testing.T) {
	adv, tc, _ := newTestAdvisor(t)

	bad := []string{"", "has space", "path/../escape", "semi;colon"}
	for _, name := range bad {
		err := adv.Contribute(context.Background(), "int main() {}", name)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}
	if tc.compileCalls.Load() != 0 {
		t.Error("invalid names must be rejected before any compile")
	}
}

func TestContribute_EmptySource(t *testing.T) {
	adv, _, _ := newTestAdvisor(t)

	if err := adv.Contribute(context.Background(), "  ", "valid_name"); !errors.Is(err, ErrEmptySource) {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}

func TestContribute_GrowsDatasetAndRetrains(t *testing.T) {
	adv, _, dataset := newTestAdvisor(t)

	if adv.Strategy() != "rules" {
		t.Fatalf("expected rules strategy before training, got %s", adv.Strategy())
	}

	if err := adv.Contribute(context.Background(), "int main() { return 0; }", "prog-1"); err != nil {
		t.Fatalf("Contribute failed: %v", err)
	}

	if dataset.Len() != 1 {
		t.Errorf("expected 1 dataset example, got %d", dataset.Len())
	}
	if dataset.Examples()[0].BestTier != opt.TierO2 {
		t.Errorf("expected ground-truth best O2, got %s", dataset.Examples()[0].BestTier)
	}

	// Retraining installs the learned strategy for the next evaluation.
	if adv.Strategy() != "learned" {
		t.Errorf("expected learned strategy after contribution, got %s", adv.Strategy())
	}
}

func TestRetrain_InstallsLearnedStrategy(t *testing.T) {
	adv, _, _ := newTestAdvisor(t)

	if err := adv.Retrain(context.Background()); err != nil {
		t.Fatalf("Retrain failed: %v", err)
	}
	if adv.Strategy() != "learned" {
		t.Errorf("expected learned strategy after retrain, got %s", adv.Strategy())
	}
}
