package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/haskel/optfox/internal/opt"
)

const sourceFileName = "prog.c"

// Clang drives the clang binary for IR lowering and tiered builds.
type Clang struct {
	binary         string
	compileTimeout time.Duration
	logger         *slog.Logger
}

// NewClang creates a Clang toolchain driver.
func NewClang(binary string, compileTimeout time.Duration, logger *slog.Logger) *Clang {
	if binary == "" {
		binary = "clang"
	}
	return &Clang{
		binary:         binary,
		compileTimeout: compileTimeout,
		logger:         logger,
	}
}

// CompileToIR lowers source to LLVM IR text at -O0.
func (c *Clang) CompileToIR(ctx context.Context, source string) (string, error) {
	dir, err := os.MkdirTemp("", "optfox-ir-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, sourceFileName)
	if err := os.WriteFile(srcPath, []byte(source), 0644); err != nil {
		return "", fmt.Errorf("failed to write source: %w", err)
	}

	irPath := filepath.Join(dir, "prog.ll")
	args := []string{"-S", "-emit-llvm", "-O0", srcPath, "-o", irPath}

	if err := c.run(ctx, args); err != nil {
		return "", err
	}

	data, err := os.ReadFile(irPath)
	if err != nil {
		return "", fmt.Errorf("%w: IR file missing after compile", ErrCompileFailed)
	}

	return string(data), nil
}

// Compile builds an executable at the given tier. The scratch directory
// lives until the caller invokes Cleanup on the handle.
func (c *Clang) Compile(ctx context.Context, source string, tier opt.Tier) (*Executable, error) {
	dir, err := os.MkdirTemp("", "optfox-build-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	srcPath := filepath.Join(dir, sourceFileName)
	if err := os.WriteFile(srcPath, []byte(source), 0644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write source: %w", err)
	}

	exePath := filepath.Join(dir, "prog_"+tier.String())
	args := []string{tier.Flag(), srcPath, "-o", exePath}

	if err := c.run(ctx, args); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	if err := os.Chmod(exePath, 0755); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to mark executable: %w", err)
	}

	return &Executable{Path: exePath, dir: dir}, nil
}

func (c *Clang) run(ctx context.Context, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, c.compileTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		c.logger.Debug("compiler invocation failed",
			"args", args,
			"error", err,
			"output", string(out),
		)
		return fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}
	return nil
}

// ProcessRunner executes compiled programs as child processes.
type ProcessRunner struct {
	logger *slog.Logger
}

// NewProcessRunner creates a ProcessRunner.
func NewProcessRunner(logger *slog.Logger) *ProcessRunner {
	return &ProcessRunner{logger: logger}
}

// Run executes the program and measures its wall-clock time. A run
// killed at the timeout is reported with TimedOut set, not as an error.
func (r *ProcessRunner) Run(ctx context.Context, exe *Executable, timeout time.Duration) (RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, exe.Path)
	cmd.Stdout = nil
	cmd.Stderr = nil

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		r.logger.Debug("execution timed out", "path", exe.Path, "timeout", timeout)
		return RunResult{TimedOut: true, WallClock: elapsed}, nil
	}

	result := RunResult{WallClock: elapsed}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return RunResult{}, fmt.Errorf("failed to execute program: %w", err)
	}

	return result, nil
}
