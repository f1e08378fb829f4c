package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleResult(best opt.Tier) opt.Result {
	return opt.Result{
		BaselineSeconds: 1.2,
		BestTier:        best,
		PredictedTier:   opt.TierO2,
		ImprovementPct:  40.0,
		Features:        ir.FeatureVector{LoopCount: 1, InstrCount: 25, HasBranch: true},
		Timestamp:       time.Now(),
	}
}

func TestCacheStore_PutGet(t *testing.T) {
	s := NewCacheStore(t.TempDir(), testLogger())

	if _, ok := s.Get("abc"); ok {
		t.Error("empty cache must miss")
	}

	s.Put("abc", sampleResult(opt.TierO2))

	got, ok := s.Get("abc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.BestTier != opt.TierO2 {
		t.Errorf("expected best tier O2, got %s", got.BestTier)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}
}

func TestCacheStore_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	s := NewCacheStore(dir, testLogger())
	s.Put("fp1", sampleResult(opt.TierO3))

	s2 := NewCacheStore(dir, testLogger())
	if err := s2.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, ok := s2.Get("fp1")
	if !ok {
		t.Fatal("expected entry after reload")
	}
	if got.BestTier != opt.TierO3 {
		t.Errorf("expected best tier O3, got %s", got.BestTier)
	}
}

func TestCacheStore_LoadMissingFile(t *testing.T) {
	s := NewCacheStore(t.TempDir(), testLogger())

	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file must not fail: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", s.Len())
	}
}

func TestCacheStore_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewCacheStore(dir, testLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load of corrupt file must degrade, not fail: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty cache after corrupt load, got %d", s.Len())
	}
}

func TestCacheStore_LoadNewerVersion(t *testing.T) {
	dir := t.TempDir()
	content := `{"version": 99, "entries": {"x": {"fingerprint": "x"}}}`
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewCacheStore(dir, testLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 0 {
		t.Error("newer-versioned file must be ignored")
	}
}

func sampleExample(name string, best opt.Tier) TrainingExample {
	return TrainingExample{
		CodeName:  name,
		Features:  ir.FeatureVector{LoopCount: 2, FuncCalls: 1, InstrCount: 30, HasBranch: true, UsesMemory: true},
		BestTier:  best,
		Timings:   map[string]float64{"O0": 1.0, best.String(): 0.5},
		Timestamp: time.Now(),
	}
}

func TestDatasetStore_AddReplacesByName(t *testing.T) {
	s := NewDatasetStore(t.TempDir(), testLogger())

	s.Add(sampleExample("prog", opt.TierO2))
	s.Add(sampleExample("other", opt.TierO1))
	s.Add(sampleExample("prog", opt.TierO3))

	if s.Len() != 2 {
		t.Fatalf("expected 2 examples after replace, got %d", s.Len())
	}

	for _, ex := range s.Examples() {
		if ex.CodeName == "prog" && ex.BestTier != opt.TierO3 {
			t.Errorf("expected replaced example to carry O3, got %s", ex.BestTier)
		}
	}
}

func TestDatasetStore_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	s := NewDatasetStore(dir, testLogger())
	s.Add(sampleExample("a", opt.TierO2))
	s.Add(sampleExample("b", opt.TierO3))

	s2 := NewDatasetStore(dir, testLogger())
	if err := s2.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s2.Len() != 2 {
		t.Errorf("expected 2 examples after reload, got %d", s2.Len())
	}

	examples := s2.Examples()
	if examples[0].CodeName != "a" || examples[1].CodeName != "b" {
		t.Error("expected insertion order preserved across reload")
	}
}

func TestDatasetStore_LoadNewerVersion(t *testing.T) {
	dir := t.TempDir()
	content := `{"version": 99, "examples": [{"code_name": "x", "best_tier": "O2"}]}`
	if err := os.WriteFile(filepath.Join(dir, datasetFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewDatasetStore(dir, testLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 0 {
		t.Error("newer-versioned file must be ignored")
	}
}

func TestDatasetStore_Stats(t *testing.T) {
	s := NewDatasetStore(t.TempDir(), testLogger())

	s.Add(TrainingExample{
		CodeName: "x",
		Features: ir.FeatureVector{LoopCount: 2, FuncCalls: 4, InstrCount: 40, HasBranch: true},
		BestTier: opt.TierO2,
	})
	s.Add(TrainingExample{
		CodeName: "y",
		Features: ir.FeatureVector{LoopCount: 0, FuncCalls: 0, InstrCount: 10, UsesGlobal: true},
		BestTier: opt.TierOs,
	})

	stats := s.Stats()

	if stats.TotalCodes != 2 {
		t.Errorf("expected 2 codes, got %d", stats.TotalCodes)
	}
	if stats.Distribution["O2"] != 1 || stats.Distribution["Os"] != 1 {
		t.Errorf("unexpected distribution: %v", stats.Distribution)
	}
	if stats.AvgLoopCount != 1.0 {
		t.Errorf("expected avg loop count 1.0, got %f", stats.AvgLoopCount)
	}
	if stats.AvgInstrCount != 25.0 {
		t.Errorf("expected avg instr count 25.0, got %f", stats.AvgInstrCount)
	}
	if stats.WithBranches != 1 || stats.WithGlobals != 1 {
		t.Errorf("unexpected flag counts: %+v", stats)
	}
}

func TestDatasetStore_StatsEmpty(t *testing.T) {
	s := NewDatasetStore(t.TempDir(), testLogger())

	stats := s.Stats()
	if stats.TotalCodes != 0 {
		t.Errorf("expected 0 codes, got %d", stats.TotalCodes)
	}
}

type fakeArtifact struct {
	payload string
}

func (f *fakeArtifact) Save(w io.Writer) error {
	_, err := io.WriteString(w, f.payload)
	return err
}

func (f *fakeArtifact) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.payload = string(data)
	return nil
}

func TestModelStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewModelStore(dir, testLogger())

	if s.Exists() {
		t.Error("expected no artifact before save")
	}

	if err := s.Save(&fakeArtifact{payload: "state"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !s.Exists() {
		t.Error("expected artifact after save")
	}

	loaded := &fakeArtifact{}
	if err := s.Load(loaded); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.payload != "state" {
		t.Errorf("expected payload %q, got %q", "state", loaded.payload)
	}

	info := s.Info()
	if !info.Exists {
		t.Error("expected Info to report existing artifact")
	}
	if info.Size != int64(len("state")) {
		t.Errorf("expected size %d, got %d", len("state"), info.Size)
	}
}

func TestModelStore_LoadMissingLeavesModelUntouched(t *testing.T) {
	s := NewModelStore(t.TempDir(), testLogger())

	loaded := &fakeArtifact{payload: "original"}
	if err := s.Load(loaded); err != nil {
		t.Fatalf("Load of missing artifact must not fail: %v", err)
	}
	if loaded.payload != "original" {
		t.Error("missing artifact must leave the model untouched")
	}
}

func TestWriteFileAtomic_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()

	err := writeFileAtomic(dir, "out.json", func(w io.Writer) error {
		_, err := io.WriteString(w, "{}")
		return err
	})
	if err != nil {
		t.Fatalf("writeFileAtomic failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.json" {
		t.Errorf("expected only out.json in dir, got %v", entries)
	}
}
