package packager

import (
	"context"
	"os"
	"strings"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/staging"
	"github.com/clipabit/plugin-packager/internal/tool"
)

// defaultPkgBuildPath is where macOS ships the installer builder.
const defaultPkgBuildPath = "/usr/bin/pkgbuild"

// PkgBuild produces a macOS .pkg from the payload via the pkgbuild tool.
// Identifier, version and install location are passed explicitly so the
// resulting package installs to the stated location without privileges
// beyond what the location itself requires.
type PkgBuild struct {
	runner     tool.Runner
	toolPath   string
	scriptsDir string
}

// NewPkgBuild returns a pkgbuild-backed packager. An empty toolPath falls
// back to the standard /usr/bin/pkgbuild location.
func NewPkgBuild(runner tool.Runner, toolPath, scriptsDir string) *PkgBuild {
	if toolPath == "" {
		toolPath = defaultPkgBuildPath
	}

	return &PkgBuild{
		runner:     runner,
		toolPath:   toolPath,
		scriptsDir: scriptsDir,
	}
}

// Name implements Packager.
func (p *PkgBuild) Name() string {
	return KindPkgBuild
}

// RequiredTools implements Packager.
func (p *PkgBuild) RequiredTools() []Tool {
	return []Tool{
		{
			Path:        p.toolPath,
			Remediation: "install the Xcode command line tools (xcode-select --install)",
		},
	}
}

// ArtifactPath implements Packager.
func (p *PkgBuild) ArtifactPath(spec *build.PackageSpec) string {
	return spec.ArtifactBase() + ".pkg"
}

// Package invokes pkgbuild once, synchronously, and surfaces a non-zero exit
// as a PackagerError carrying the tool's diagnostics.
func (p *PkgBuild) Package(ctx context.Context, payloadDir string, spec *build.PackageSpec) error {
	if err := os.MkdirAll(spec.OutputDir, staging.DirMode); err != nil {
		return &build.StagingError{Path: spec.OutputDir, Err: err}
	}

	args := []string{
		"--root", payloadDir,
		"--identifier", spec.Identifier,
		"--version", spec.Version,
		"--install-location", spec.InstallLocation,
	}

	if p.scriptsDir != "" {
		args = append(args, "--scripts", p.scriptsDir)
	}

	args = append(args, p.ArtifactPath(spec))

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
