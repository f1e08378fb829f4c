// Package toolchain wraps the external compiler and program execution.
package toolchain

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/haskel/optfox/internal/opt"
)

// ErrCompileFailed marks a failed compiler invocation. A single tier's
// compile failure only removes that tier from the candidate set.
var ErrCompileFailed = errors.New("compilation failed")

// Toolchain compiles submitted source text.
type Toolchain interface {
	// CompileToIR lowers source to textual IR without optimization.
	CompileToIR(ctx context.Context, source string) (string, error)

	// Compile builds an executable at the given optimization tier.
	// The caller owns the returned handle and must call Cleanup.
	Compile(ctx context.Context, source string, tier opt.Tier) (*Executable, error)
}

// Runner executes a compiled program and measures wall-clock time.
type Runner interface {
	Run(ctx context.Context, exe *Executable, timeout time.Duration) (RunResult, error)
}

// Executable is a handle to a compiled program on disk.
type Executable struct {
	Path string

	// dir is the scratch directory holding the binary.
	dir string
}

// Cleanup removes the executable's scratch directory.
func (e *Executable) Cleanup() {
	if e != nil && e.dir != "" {
		os.RemoveAll(e.dir)
	}
}

// RunResult is the outcome of one program execution.
type RunResult struct {
	ExitCode  int
	WallClock time.Duration

	// TimedOut is set when the run was killed at the timeout. Callers
	// record the timeout ceiling as the timing, not an error.
	TimedOut bool
}
