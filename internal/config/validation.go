package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Toolchain.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("toolchain: %w", err))
	}

	if err := c.Benchmark.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("benchmark: %w", err))
	}

	if err := c.Persistence.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("persistence: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}
	if s.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive"))
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive when enabled"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1 when enabled"))
		}
	}

	return errors.Join(errs...)
}

func (t *ToolchainConfig) Validate() error {
	if t.Clang == "" {
		return fmt.Errorf("clang binary cannot be empty")
	}
	if t.CompileTimeoutSec < 1 {
		return fmt.Errorf("compile_timeout_sec must be at least 1")
	}
	return nil
}

func (b *BenchmarkConfig) Validate() error {
	var errs []error

	if b.Runs < 1 {
		errs = append(errs, fmt.Errorf("runs must be at least 1"))
	}
	if b.WarmupRuns < 0 {
		errs = append(errs, fmt.Errorf("warmup_runs must be non-negative"))
	}
	if b.RunTimeoutSec < 1 {
		errs = append(errs, fmt.Errorf("run_timeout_sec must be at least 1"))
	}
	if b.MaxCPUPercent < 0 || b.MaxCPUPercent > 100 {
		errs = append(errs, fmt.Errorf("max_cpu_percent must be between 0 and 100"))
	}
	if b.QuiesceAttempts < 0 {
		errs = append(errs, fmt.Errorf("quiesce_attempts must be non-negative"))
	}

	return errors.Join(errs...)
}

func (p *PersistenceConfig) Validate() error {
	if p.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}
