package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Toolchain.Clang != "clang" {
		t.Errorf("expected default clang binary, got %s", cfg.Toolchain.Clang)
	}
	if cfg.Benchmark.Runs != 7 {
		t.Errorf("expected 7 benchmark runs, got %d", cfg.Benchmark.Runs)
	}
	if cfg.Benchmark.RunTimeout() != 10*time.Second {
		t.Errorf("expected 10s run timeout, got %v", cfg.Benchmark.RunTimeout())
	}
}

func TestLoad(t *testing.T) {
	content := `
server:
  port: 9090
toolchain:
  clang: clang-18
  compile_timeout_sec: 60
benchmark:
  runs: 5
  max_cpu_percent: 70
persistence:
  data_dir: /tmp/optfox-test
`
	path := writeConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Toolchain.Clang != "clang-18" {
		t.Errorf("expected clang-18, got %s", cfg.Toolchain.Clang)
	}
	if cfg.Benchmark.Runs != 5 {
		t.Errorf("expected 5 runs, got %d", cfg.Benchmark.Runs)
	}

	// Unset fields keep their defaults.
	if cfg.Benchmark.WarmupRuns != 1 {
		t.Errorf("expected default warmup runs, got %d", cfg.Benchmark.WarmupRuns)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 99999\n")

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/optfox.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault("")
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default config, got port %d", cfg.Server.Port)
	}

	cfg = LoadOrDefault("/nonexistent/optfox.yaml")
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default fallback, got port %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, false},
		{"empty clang", func(c *Config) { c.Toolchain.Clang = "" }, false},
		{"zero runs", func(c *Config) { c.Benchmark.Runs = 0 }, false},
		{"cpu percent too high", func(c *Config) { c.Benchmark.MaxCPUPercent = 150 }, false},
		{"empty data dir", func(c *Config) { c.Persistence.DataDir = "" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, false},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, false},
		{"rate limit enabled without rps", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.RequestsPerSecond = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optfox.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
