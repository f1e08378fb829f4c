// Package bench measures real execution time under each optimization
// tier and denoises the timings.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/haskel/optfox/internal/opt"
	"github.com/haskel/optfox/internal/toolchain"
)

// ErrBaselineUnusable is returned when the unoptimized baseline
// compiled but could not be measured. Every improvement percentage is
// relative to the baseline, so the whole request fails without it.
var ErrBaselineUnusable = errors.New("baseline could not be measured")

// ErrNoUsableTier is returned when no candidate tier produced a valid
// measurement.
var ErrNoUsableTier = errors.New("no candidate tier could be measured")

// Config holds benchmarking parameters.
type Config struct {
	// Runs is the number of timed executions per tier.
	Runs int

	// WarmupRuns is the number of untimed executions before timing.
	WarmupRuns int

	// InterRunDelay separates timed runs to reduce scheduler
	// correlation between samples.
	InterRunDelay time.Duration

	// RunTimeout bounds one execution. A run that hits it is recorded
	// at the ceiling value rather than aborting the tier.
	RunTimeout time.Duration

	// MaxCPUPercent gates timed runs on host load. Zero disables the
	// gate.
	MaxCPUPercent float64

	// QuiesceAttempts bounds how long the gate waits for the host to
	// calm down before measuring anyway.
	QuiesceAttempts int

	// QuiesceDelay is the pause between gate attempts.
	QuiesceDelay time.Duration
}

// DefaultConfig returns the default benchmarking parameters.
func DefaultConfig() Config {
	return Config{
		Runs:            7,
		WarmupRuns:      1,
		InterRunDelay:   100 * time.Millisecond,
		RunTimeout:      10 * time.Second,
		MaxCPUPercent:   85.0,
		QuiesceAttempts: 5,
		QuiesceDelay:    200 * time.Millisecond,
	}
}

// Summary is the outcome of benchmarking one program over all tiers.
type Summary struct {
	// Observations holds one entry per surviving tier, baseline first,
	// then candidates in their fixed order.
	Observations []opt.Observation

	BaselineSeconds float64

	// BestTier is the fastest measured candidate tier. The baseline is
	// never "best": it only anchors the improvement percentage.
	BestTier    opt.Tier
	BestSeconds float64

	// Timings maps each measured tier label to its denoised seconds.
	Timings map[string]float64
}

// Harness benchmarks a program under every candidate tier sequentially.
// Timed runs never overlap, not even across concurrent requests:
// parallel measurement would let tiers steal CPU from each other and
// inflate noise.
type Harness struct {
	tc     toolchain.Toolchain
	runner toolchain.Runner
	cfg    Config
	logger *slog.Logger

	// measureMu serializes all timed runs through this harness.
	measureMu sync.Mutex
}

// New creates a benchmark harness.
func New(tc toolchain.Toolchain, runner toolchain.Runner, cfg Config, logger *slog.Logger) *Harness {
	return &Harness{
		tc:     tc,
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// MeasureAll benchmarks the baseline and every candidate tier. A tier
// whose compile fails is excluded from the candidate set; only an
// unusable baseline fails the whole call.
func (h *Harness) MeasureAll(ctx context.Context, source string) (*Summary, error) {
	h.measureMu.Lock()
	defer h.measureMu.Unlock()

	tiers := append([]opt.Tier{opt.TierO0}, opt.Candidates()...)

	summary := &Summary{
		Timings: make(map[string]float64),
	}

	for _, tier := range tiers {
		obs, err := h.measureTier(ctx, source, tier)
		if err != nil {
			// A program whose baseline will not compile cannot be
			// measured at all, and the compile error says why.
			if tier == opt.TierO0 {
				return nil, fmt.Errorf("baseline compile: %w", err)
			}
			h.logger.Warn("tier excluded: compile failed", "tier", tier, "error", err)
			continue
		}

		summary.Observations = append(summary.Observations, obs)
		if obs.Succeeded {
			summary.Timings[tier.String()] = obs.Seconds
		}

		h.logger.Debug("tier measured",
			"tier", tier,
			"seconds", obs.Seconds,
			"samples", obs.Samples,
		)
	}

	baseline, ok := summary.Timings[opt.TierO0.String()]
	if !ok || baseline <= 0 {
		return nil, ErrBaselineUnusable
	}
	summary.BaselineSeconds = baseline

	if err := h.pickBest(summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// pickBest selects the fastest measured candidate, ties resolved by the
// fixed tier order.
func (h *Harness) pickBest(summary *Summary) error {
	found := false
	for _, tier := range opt.Candidates() {
		seconds, ok := summary.Timings[tier.String()]
		if !ok {
			continue
		}
		if !found || seconds < summary.BestSeconds {
			summary.BestTier = tier
			summary.BestSeconds = seconds
			found = true
		}
	}
	if !found {
		return ErrNoUsableTier
	}
	return nil
}

// measureTier compiles and times one tier. A non-nil error means the
// compile failed and the tier must be excluded entirely.
func (h *Harness) measureTier(ctx context.Context, source string, tier opt.Tier) (opt.Observation, error) {
	exe, err := h.tc.Compile(ctx, source, tier)
	if err != nil {
		return opt.Observation{}, err
	}
	defer exe.Cleanup()

	h.waitForQuiesce(ctx)

	for i := 0; i < h.cfg.WarmupRuns; i++ {
		if _, err := h.runner.Run(ctx, exe, h.cfg.RunTimeout); err != nil {
			h.logger.Debug("warmup run failed", "tier", tier, "error", err)
		}
	}

	var samples []float64
	for i := 0; i < h.cfg.Runs; i++ {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			time.Sleep(h.cfg.InterRunDelay)
		}

		res, err := h.runner.Run(ctx, exe, h.cfg.RunTimeout)
		if err != nil {
			h.logger.Debug("timed run failed", "tier", tier, "error", err)
			continue
		}

		if res.TimedOut {
			// Penalty value, not an error: the tier is slow, not broken.
			samples = append(samples, h.cfg.RunTimeout.Seconds())
			continue
		}

		if res.ExitCode != 0 {
			h.logger.Debug("timed run discarded",
				"tier", tier,
				"exit_code", res.ExitCode,
			)
			continue
		}

		samples = append(samples, res.WallClock.Seconds())
	}

	return opt.Observation{
		Tier:      tier,
		Seconds:   TrimmedMedian(samples),
		Samples:   len(samples),
		Succeeded: len(samples) > 0,
	}, nil
}
