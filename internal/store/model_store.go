package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const modelFileName = "optfox_model.json"

// Saveable is an object that can serialize itself to a writer.
type Saveable interface {
	Save(w io.Writer) error
}

// Loadable is an object that can deserialize itself from a reader.
type Loadable interface {
	Load(r io.Reader) error
}

// ModelStore persists the trained classifier artifact.
type ModelStore struct {
	dataDir string
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewModelStore creates a model store rooted at dataDir.
func NewModelStore(dataDir string, logger *slog.Logger) *ModelStore {
	return &ModelStore{dataDir: dataDir, logger: logger}
}

// Save writes the model artifact atomically.
func (s *ModelStore) Save(model Saveable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := writeFileAtomic(s.dataDir, modelFileName, model.Save)
	if err != nil {
		return err
	}
	s.logger.Debug("saved model to disk", "path", filepath.Join(s.dataDir, modelFileName))
	return nil
}

// Load reads the model artifact into the given model. A missing or
// unreadable artifact leaves the model untouched and is not an error:
// the caller simply starts with a fresh model.
func (s *ModelStore) Load(model Loadable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := filepath.Join(s.dataDir, modelFileName)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing model file, using fresh model", "path", filePath)
			return nil
		}
		return err
	}
	defer file.Close()

	if err := model.Load(file); err != nil {
		s.logger.Warn("failed to load model, using fresh model", "error", err)
		return nil
	}

	s.logger.Info("loaded model from disk", "path", filePath)
	return nil
}

// Exists reports whether a saved model artifact is present.
func (s *ModelStore) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dataDir, modelFileName))
	return err == nil
}

// ModelInfo describes the saved model artifact.
type ModelInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Info returns information about the saved model artifact.
func (s *ModelStore) Info() ModelInfo {
	filePath := filepath.Join(s.dataDir, modelFileName)
	info := ModelInfo{Path: filePath}

	stat, err := os.Stat(filePath)
	if err != nil {
		return info
	}

	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info
}
