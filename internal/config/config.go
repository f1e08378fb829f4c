package config

import "time"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Toolchain   ToolchainConfig   `yaml:"toolchain"`
	Benchmark   BenchmarkConfig   `yaml:"benchmark"`
	Training    TrainingConfig    `yaml:"training"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	PIDFile      string          `yaml:"pid_file"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles the HTTP API. Evaluation requests hold the
// benchmark pipeline for seconds at a time, so the defaults are low.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type ToolchainConfig struct {
	// Clang is the compiler binary name or path.
	Clang string `yaml:"clang"`

	CompileTimeoutSec int `yaml:"compile_timeout_sec"`
}

type BenchmarkConfig struct {
	Runs            int     `yaml:"runs"`
	WarmupRuns      int     `yaml:"warmup_runs"`
	InterRunDelayMS int     `yaml:"inter_run_delay_ms"`
	RunTimeoutSec   int     `yaml:"run_timeout_sec"`
	MaxCPUPercent   float64 `yaml:"max_cpu_percent"`
	QuiesceAttempts int     `yaml:"quiesce_attempts"`
	QuiesceDelayMS  int     `yaml:"quiesce_delay_ms"`
}

type TrainingConfig struct {
	// SeedDir holds source files benchmarked to bootstrap an otherwise
	// empty dataset. Empty disables bootstrapping.
	SeedDir string `yaml:"seed_dir"`
}

type PersistenceConfig struct {
	DataDir string `yaml:"data_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (t *ToolchainConfig) CompileTimeout() time.Duration {
	return time.Duration(t.CompileTimeoutSec) * time.Second
}

func (b *BenchmarkConfig) InterRunDelay() time.Duration {
	return time.Duration(b.InterRunDelayMS) * time.Millisecond
}

func (b *BenchmarkConfig) RunTimeout() time.Duration {
	return time.Duration(b.RunTimeoutSec) * time.Second
}

func (b *BenchmarkConfig) QuiesceDelay() time.Duration {
	return time.Duration(b.QuiesceDelayMS) * time.Millisecond
}
