package store

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haskel/optfox/internal/opt"
)

const cacheFileName = "optfox_cache.json"

// CacheEntry pairs a fingerprint with its computed result. Entries are
// immutable once written: the same fingerprint always recomputes to the
// same content, so rewrites are idempotent no-ops.
type CacheEntry struct {
	Fingerprint string     `json:"fingerprint"`
	Result      opt.Result `json:"result"`
	CachedAt    time.Time  `json:"cached_at"`
}

type cacheData struct {
	Version   int                   `json:"version"`
	UpdatedAt time.Time             `json:"updated_at"`
	Entries   map[string]CacheEntry `json:"entries"`
}

func newEmptyCacheData() *cacheData {
	return &cacheData{
		Version: currentVersion,
		Entries: make(map[string]CacheEntry),
	}
}

// CacheStore is the persisted fingerprint → result cache.
type CacheStore struct {
	dataDir string
	logger  *slog.Logger

	mu   sync.RWMutex
	data *cacheData
}

// NewCacheStore creates a cache store rooted at dataDir.
func NewCacheStore(dataDir string, logger *slog.Logger) *CacheStore {
	return &CacheStore{
		dataDir: dataDir,
		logger:  logger,
		data:    newEmptyCacheData(),
	}
}

// Load reads the cache file. A missing or unreadable file degrades to
// an empty cache; it is never fatal.
func (s *CacheStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := filepath.Join(s.dataDir, cacheFileName)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing cache file, starting fresh", "path", filePath)
			s.data = newEmptyCacheData()
			return nil
		}
		return err
	}
	defer file.Close()

	var data cacheData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		s.logger.Warn("failed to decode cache file, starting fresh", "error", err)
		s.data = newEmptyCacheData()
		return nil
	}

	if data.Version > currentVersion {
		s.logger.Warn("cache file version is newer than supported, starting fresh",
			"file_version", data.Version,
			"supported_version", currentVersion,
		)
		s.data = newEmptyCacheData()
		return nil
	}

	if data.Entries == nil {
		data.Entries = make(map[string]CacheEntry)
	}

	s.data = &data
	s.logger.Info("loaded cache from disk",
		"path", filePath,
		"entries", len(data.Entries),
	)

	return nil
}

// Get returns the cached result for a fingerprint.
func (s *CacheStore) Get(fp string) (opt.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data.Entries[fp]
	if !ok {
		return opt.Result{}, false
	}
	return entry.Result, true
}

// Put stores a result and rewrites the cache file. A save failure is
// logged and swallowed: the in-flight response must still reach the
// caller.
func (s *CacheStore) Put(fp string, result opt.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Entries[fp] = CacheEntry{
		Fingerprint: fp,
		Result:      result,
		CachedAt:    time.Now(),
	}
	s.data.UpdatedAt = time.Now()

	if err := s.saveLocked(); err != nil {
		s.logger.Error("failed to save cache", "error", err)
	}
}

func (s *CacheStore) saveLocked() error {
	return writeFileAtomic(s.dataDir, cacheFileName, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.data)
	})
}

// Len returns the number of cached results.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Entries)
}
