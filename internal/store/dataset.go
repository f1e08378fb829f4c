package store

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/haskel/optfox/internal/ir"
	"github.com/haskel/optfox/internal/opt"
)

const datasetFileName = "optfox_dataset.json"

// TrainingExample is one ground-truth labeled program. BestTier always
// comes from exhaustive measurement, never from the predictor.
type TrainingExample struct {
	CodeName   string             `json:"code_name"`
	Features   ir.FeatureVector   `json:"features"`
	Potentials ir.Potentials      `json:"potentials,omitempty"`
	BestTier   opt.Tier           `json:"best_tier"`
	Timings    map[string]float64 `json:"timings,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

type datasetData struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Examples  []TrainingExample `json:"examples"`
}

// DatasetStats summarizes the dataset for telemetry.
type DatasetStats struct {
	TotalCodes   int            `json:"total_codes"`
	Distribution map[string]int `json:"tier_distribution"`

	AvgLoopCount  float64 `json:"avg_loop_count"`
	AvgFuncCalls  float64 `json:"avg_func_calls"`
	AvgInstrCount float64 `json:"avg_instr_count"`
	WithBranches  int     `json:"codes_with_branches"`
	WithMemory    int     `json:"codes_with_memory"`
	WithGlobals   int     `json:"codes_with_globals"`
}

// DatasetStore is the persisted, ordered training example collection.
// Examples are keyed by code name with add-or-replace semantics.
type DatasetStore struct {
	dataDir string
	logger  *slog.Logger

	mu   sync.RWMutex
	data *datasetData
}

// NewDatasetStore creates a dataset store rooted at dataDir.
func NewDatasetStore(dataDir string, logger *slog.Logger) *DatasetStore {
	return &DatasetStore{
		dataDir: dataDir,
		logger:  logger,
		data:    &datasetData{Version: currentVersion},
	}
}

// Load reads the dataset file, degrading to empty on a missing or
// corrupt file.
func (s *DatasetStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := filepath.Join(s.dataDir, datasetFileName)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing dataset file, starting fresh", "path", filePath)
			s.data = &datasetData{Version: currentVersion}
			return nil
		}
		return err
	}
	defer file.Close()

	var data datasetData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		s.logger.Warn("failed to decode dataset file, starting fresh", "error", err)
		s.data = &datasetData{Version: currentVersion}
		return nil
	}

	if data.Version > currentVersion {
		s.logger.Warn("dataset file version is newer than supported, starting fresh",
			"file_version", data.Version,
			"supported_version", currentVersion,
		)
		s.data = &datasetData{Version: currentVersion}
		return nil
	}

	s.data = &data
	s.logger.Info("loaded dataset from disk",
		"path", filePath,
		"examples", len(data.Examples),
	)

	return nil
}

// Add inserts an example, replacing any existing one with the same code
// name, and rewrites the dataset file. Save failure is logged
// non-fatal.
func (s *DatasetStore) Add(ex TrainingExample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Examples = slices.DeleteFunc(s.data.Examples, func(e TrainingExample) bool {
		return e.CodeName == ex.CodeName
	})
	s.data.Examples = append(s.data.Examples, ex)
	s.data.UpdatedAt = time.Now()

	if err := s.saveLocked(); err != nil {
		s.logger.Error("failed to save dataset", "error", err)
	}
}

func (s *DatasetStore) saveLocked() error {
	return writeFileAtomic(s.dataDir, datasetFileName, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.data)
	})
}

// Examples returns a copy of the example list in insertion order.
func (s *DatasetStore) Examples() []TrainingExample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Examples)
}

// Len returns the number of stored examples.
func (s *DatasetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Examples)
}

// Stats computes dataset telemetry.
func (s *DatasetStore) Stats() DatasetStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := DatasetStats{
		TotalCodes:   len(s.data.Examples),
		Distribution: make(map[string]int),
	}
	if stats.TotalCodes == 0 {
		return stats
	}

	n := float64(stats.TotalCodes)
	for _, ex := range s.data.Examples {
		stats.Distribution[ex.BestTier.String()]++
		stats.AvgLoopCount += float64(ex.Features.LoopCount) / n
		stats.AvgFuncCalls += float64(ex.Features.FuncCalls) / n
		stats.AvgInstrCount += float64(ex.Features.InstrCount) / n
		if ex.Features.HasBranch {
			stats.WithBranches++
		}
		if ex.Features.UsesMemory {
			stats.WithMemory++
		}
		if ex.Features.UsesGlobal {
			stats.WithGlobals++
		}
	}

	return stats
}
