// Package runner executes the external Cooja simulator headlessly over
// generated scenario files and collects each run's logs into a data-trace
// directory. A run passes when the simulation script log contains the
// "TEST OK" marker.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// coojaLog is the log file Cooja writes into the working directory.
const coojaLog = "COOJA.log"

// PassMarker is the script-log marker a successful simulation emits. It is
// the second tab-separated field of the marker line.
const PassMarker = "TEST OK"

// Config locates the simulator and controls where run artifacts go.
type Config struct {
	// CoojaPath is the Cooja checkout (the gradle project directory).
	CoojaPath string
	// ContikiPath is the Contiki-NG checkout.
	ContikiPath string
	// OutputDir receives the per-run data-trace directories. Empty means
	// the current directory.
	OutputDir string
	// WorkDir is where Cooja drops COOJA.log. Empty means the current
	// directory.
	WorkDir string
	// Timeout bounds a single simulation run. Zero disables the bound.
	Timeout time.Duration
}

// Result describes one completed simulation run.
type Result struct {
	Scenario string
	TraceDir string
	Duration time.Duration
	ExitCode int
	Passed   bool
}

// Runner drives Cooja runs. It is single-threaded; one run at a time.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// New creates a runner after verifying both simulator checkouts exist.
func New(cfg Config, log *slog.Logger) (*Runner, error) {
	if _, err := os.Stat(filepath.Join(cfg.CoojaPath, "build.gradle")); err != nil {
		return nil, fmt.Errorf("cooja not found in %q: %w", cfg.CoojaPath, err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ContikiPath, "Makefile.include")); err != nil {
		return nil, fmt.Errorf("contiki-ng not found in %q: %w", cfg.ContikiPath, err)
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	return &Runner{cfg: cfg, log: log}, nil
}

// Run executes one scenario and returns the run result. A non-passing run is
// not an error: the trace directory is renamed with a -fail suffix and
// Result.Passed is false. Errors are reserved for the orchestration itself
// (unreadable scenario, rename failures, context cancellation).
func (r *Runner) Run(ctx context.Context, scenario string) (Result, error) {
	abs, err := filepath.Abs(scenario)
	if err != nil {
		return Result{}, fmt.Errorf("resolving scenario path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return Result{}, fmt.Errorf("cannot read simulation scenario: %w", err)
	}

	// Remove any old simulation log before starting.
	logPath := filepath.Join(r.cfg.WorkDir, coojaLog)
	if err := os.Remove(logPath); err != nil && !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("removing stale %s: %w", coojaLog, err)
	}

	traceDir := r.traceDir(abs)
	r.log.Info("running simulation", "scenario", abs, "trace", traceDir)

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := r.command(ctx, abs, traceDir)
	r.log.Debug("cooja command", "args", cmd.Args)

	start := time.Now()
	output, runErr := cmd.CombinedOutput()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		exitCode = -1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("simulation %s: %w", abs, ctx.Err())
	}

	// Record the execution time in the Cooja log before archiving it.
	appendExecutionTime(logPath, duration)

	if err := os.MkdirAll(traceDir, 0755); err != nil {
		return Result{}, fmt.Errorf("creating trace dir: %w", err)
	}
	if err := moveFile(logPath, filepath.Join(traceDir, "cooja.log")); err != nil {
		r.log.Debug("no cooja log to archive", "err", err)
	}

	res := Result{
		Scenario: abs,
		TraceDir: traceDir,
		Duration: duration,
		ExitCode: exitCode,
	}

	scriptLog := filepath.Join(traceDir, "script.log")
	hasScript := fileExists(scriptLog)
	if exitCode != 0 || !hasScript {
		r.log.Error("simulation failed", "exit", exitCode, "output", string(output))
		if !hasScript {
			r.log.Error("no simulation script output", "scenario", abs)
		}
		return r.fail(res)
	}

	passed, err := scriptLogPassed(scriptLog)
	if err != nil {
		return Result{}, fmt.Errorf("checking script output: %w", err)
	}
	if !passed {
		r.log.Info("test failed", "scenario", abs)
		return r.fail(res)
	}

	res.Passed = true
	r.log.Info("test done", "scenario", abs, "duration", duration)
	return res, nil
}

// traceDir derives the data-trace directory name: the scenario base name
// without extension, a -dt- marker, and a millisecond timestamp.
func (r *Runner) traceDir(scenario string) string {
	base := filepath.Base(scenario)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".csc")
	id := fmt.Sprintf("%d", time.Now().UnixMilli())
	return filepath.Join(r.cfg.OutputDir, base+"-dt-"+id)
}

// command builds the headless gradle invocation.
func (r *Runner) command(ctx context.Context, scenario, traceDir string) *exec.Cmd {
	args := fmt.Sprintf("-nogui=%s -contiki=%s -datatrace=%s -logdir=%s",
		scenario, r.cfg.ContikiPath, traceDir, r.cfg.WorkDir)
	return exec.CommandContext(ctx,
		filepath.Join(r.cfg.CoojaPath, "gradlew"),
		"-p", r.cfg.CoojaPath,
		"--console=plain",
		"run",
		"--args="+args,
	)
}

// fail renames the trace directory with a -fail suffix and returns the
// result with Passed false.
func (r *Runner) fail(res Result) (Result, error) {
	failDir := res.TraceDir + "-fail"
	if err := os.Rename(res.TraceDir, failDir); err != nil {
		return Result{}, fmt.Errorf("marking trace dir failed: %w", err)
	}
	res.TraceDir = failDir
	return res, nil
}

// scriptLogPassed scans the simulation script log for the pass marker.
// Marker lines are tab-separated with the marker in the second field.
func scriptLogPassed(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return ScanForMarker(f), nil
}

// ScanForMarker reports whether any line of r is a pass-marker line.
func ScanForMarker(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		if len(parts) == 2 && parts[1] == PassMarker {
			return true
		}
	}
	return false
}

// appendExecutionTime mirrors the timing line the original tooling appends
// to the Cooja log. Missing logs are ignored; the run result carries the
// duration regardless.
func appendExecutionTime(logPath string, d time.Duration) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "\nSimulation execution time: %d ns.\n", d.Nanoseconds())
}

func moveFile(src, dst string) error {
	return os.Rename(src, dst)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
