package tool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultProbeTimeout bounds version probes so a wedged tool cannot hang preflight.
const DefaultProbeTimeout = 10 * time.Second

// Runner abstracts external tool invocations so services can inject fakes
// and tool paths never have to be discovered ambiently.
type Runner interface {
	// Probe checks that the tool responds and returns its version banner.
	Probe(ctx context.Context, tool string, args ...string) (string, error)
	// Run invokes the tool synchronously and returns its combined output.
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// ExecRunner invokes tools via os/exec. Each Probe gets its own timeout;
// Run blocks until the tool finishes or the context is canceled.
type ExecRunner struct {
	// ProbeTimeout overrides DefaultProbeTimeout when positive.
	ProbeTimeout time.Duration
}

// NewExecRunner returns a runner with the default probe timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// Probe executes the tool with the provided arguments (defaulting to --version)
// and returns the first line of its output.
func (r *ExecRunner) Probe(ctx context.Context, tool string, args ...string) (string, error) {
	if len(args) == 0 {
		args = []string{"--version"}
	}

	timeout := r.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, tool, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", tool, err)
	}

	banner, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")

	return banner, nil
}

// Run executes the tool and returns its combined stdout/stderr.
// The output is returned even when the tool fails so callers can attach
// diagnostics to their errors.
func (r *ExecRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, tool, args...).CombinedOutput()
}

// ExitCode extracts the exit status from an error returned by Run.
// It returns -1 when the tool never ran (e.g. executable not found).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
