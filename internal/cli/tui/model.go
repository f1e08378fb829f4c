package tui

import (
	"time"
)

// Config holds TUI configuration
type Config struct {
	ServerURL       string
	RefreshInterval time.Duration
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from API
	status *StatusData
	stats  *StatsData

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time
}

// StatusData represents server state from the /status endpoint
type StatusData struct {
	Strategy   string    `json:"strategy"`
	CPUPercent float64   `json:"cpu_percent"`
	MemPercent float64   `json:"mem_percent"`
	NumCPU     int       `json:"num_cpu"`
	Model      ModelInfo `json:"model"`
}

type ModelInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// StatsData represents dataset statistics from the /stats endpoint
type StatsData struct {
	Dataset  DatasetStats `json:"dataset"`
	Cached   int          `json:"cached_results"`
	Model    ModelInfo    `json:"model"`
	Strategy string       `json:"strategy"`
}

type DatasetStats struct {
	TotalCodes    int            `json:"total_codes"`
	Distribution  map[string]int `json:"tier_distribution"`
	AvgLoopCount  float64        `json:"avg_loop_count"`
	AvgFuncCalls  float64        `json:"avg_func_calls"`
	AvgInstrCount float64        `json:"avg_instr_count"`
	WithBranches  int            `json:"codes_with_branches"`
	WithMemory    int            `json:"codes_with_memory"`
	WithGlobals   int            `json:"codes_with_globals"`
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		loading: true,
	}
}
