package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/staging"
	"github.com/clipabit/plugin-packager/internal/tool"
)

var errNoEntryPoint = errors.New("spec declares no entry point to bundle")

// PyInstaller produces a standalone Windows executable from the payload's
// first entry point via the pyinstaller bundler.
type PyInstaller struct {
	runner   tool.Runner
	toolPath string
}

// NewPyInstaller returns a pyinstaller-backed packager. An empty toolPath
// falls back to the bare tool name resolved by the runner.
func NewPyInstaller(runner tool.Runner, toolPath string) *PyInstaller {
	if toolPath == "" {
		toolPath = KindPyInstaller
	}

	return &PyInstaller{
		runner:   runner,
		toolPath: toolPath,
	}
}

// Name implements Packager.
func (p *PyInstaller) Name() string {
	return KindPyInstaller
}

// RequiredTools implements Packager.
func (p *PyInstaller) RequiredTools() []Tool {
	return []Tool{
		{
			Path:        p.toolPath,
			Remediation: "run: python3 -m pip install pyinstaller",
		},
	}
}

// ArtifactPath implements Packager.
func (p *PyInstaller) ArtifactPath(spec *build.PackageSpec) string {
	return spec.ArtifactBase() + ".exe"
}

// Package bundles the entry point into a one-file executable under the
// spec's output directory.
func (p *PyInstaller) Package(ctx context.Context, payloadDir string, spec *build.PackageSpec) error {
	if len(spec.EntryPoints) == 0 {
		return fmt.Errorf("%s: %w", spec.Name, errNoEntryPoint)
	}

	if err := os.MkdirAll(spec.OutputDir, staging.DirMode); err != nil {
		return &build.StagingError{Path: spec.OutputDir, Err: err}
	}

	entryScript := filepath.Join(payloadDir, filepath.FromSlash(spec.EntryPoints[0]))
	args := []string{
		"--onefile",
		"--noconfirm",
		"--name", spec.Name,
		"--distpath", spec.OutputDir,
		entryScript,
	}

	output, err := p.runner.Run(ctx, p.toolPath, args...)
	if err != nil {
		return &build.PackagerError{
			Tool:     p.Name(),
			ExitCode: tool.ExitCode(err),
			Output:   strings.TrimSpace(string(output)),
			Err:      err,
		}
	}

	return nil
}
