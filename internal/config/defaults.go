package config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			PIDFile:      "/var/run/optfox.pid",
			MaxBodyBytes: 1 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 5,
				Burst:             10,
			},
		},
		Toolchain: ToolchainConfig{
			Clang:             "clang",
			CompileTimeoutSec: 30,
		},
		Benchmark: BenchmarkConfig{
			Runs:            7,
			WarmupRuns:      1,
			InterRunDelayMS: 100,
			RunTimeoutSec:   10,
			MaxCPUPercent:   85.0,
			QuiesceAttempts: 5,
			QuiesceDelayMS:  200,
		},
		Training: TrainingConfig{
			SeedDir: "dataset/training_codes",
		},
		Persistence: PersistenceConfig{
			DataDir: "/var/lib/optfox",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
