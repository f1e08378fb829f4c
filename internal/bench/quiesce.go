package bench

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// quiesceSampleWindow is the sampling window for one CPU load reading.
const quiesceSampleWindow = 100 * time.Millisecond

// waitForQuiesce delays timed runs while host CPU load sits above the
// configured ceiling. The wait is bounded: after the last attempt the
// measurement proceeds anyway and the noise risk is logged.
func (h *Harness) waitForQuiesce(ctx context.Context) {
	if h.cfg.MaxCPUPercent <= 0 {
		return
	}

	var load float64
	for attempt := 0; attempt < h.cfg.QuiesceAttempts; attempt++ {
		if ctx.Err() != nil {
			return
		}

		percentages, err := cpu.PercentWithContext(ctx, quiesceSampleWindow, false)
		if err != nil || len(percentages) == 0 {
			return
		}

		load = percentages[0]
		if load <= h.cfg.MaxCPUPercent {
			return
		}

		h.logger.Debug("host busy, delaying timed runs",
			"cpu_percent", load,
			"max_percent", h.cfg.MaxCPUPercent,
		)
		time.Sleep(h.cfg.QuiesceDelay)
	}

	h.logger.Warn("measuring on busy host, timings may be noisy",
		"cpu_percent", load,
	)
}
