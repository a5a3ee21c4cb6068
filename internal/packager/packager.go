package packager

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/tool"
)

// Tool pairs an executable with the install guidance shown when it is absent.
type Tool struct {
	// Path is the injected executable path or name.
	Path string
	// ProbeArgs override the runner's default version probe arguments.
	ProbeArgs []string
	// Remediation is printed when the tool cannot be probed.
	Remediation string
}

// Packager converts a staged payload plus spec metadata into exactly one
// artifact at a deterministic path.
type Packager interface {
	// Name identifies the packager in logs and errors.
	Name() string
	// RequiredTools lists the executables preflight must probe.
	RequiredTools() []Tool
	// ArtifactPath returns the deterministic output path for a spec.
	ArtifactPath(spec *build.PackageSpec) string
	// Package produces the artifact from the payload. A failing external
	// tool surfaces as a PackagerError; there are no retries.
	Package(ctx context.Context, payloadDir string, spec *build.PackageSpec) error
}

// Names accepted by ByName. "auto" picks per platform.
const (
	KindAuto        = "auto"
	KindPkgBuild    = "pkgbuild"
	KindPyInstaller = "pyinstaller"
	KindArchive     = "archive"
)

var errUnknownPackager = errors.New("unknown packager")

// ByName constructs the packager for the requested kind, with "auto"
// resolving per the current platform: .pkg on macOS, a standalone executable
// on Windows, a portable tar.gz everywhere else.
func ByName(kind, goos string, runner tool.Runner, paths ToolPaths) (Packager, error) {
	if kind == "" || kind == KindAuto {
		switch goos {
		case "darwin":
			kind = KindPkgBuild
		case "windows":
			kind = KindPyInstaller
		default:
			kind = KindArchive
		}
	}

	switch kind {
	case KindPkgBuild:
		return NewPkgBuild(runner, paths.PkgBuild, paths.ScriptsDir), nil
	case KindPyInstaller:
		return NewPyInstaller(runner, paths.PyInstaller), nil
	case KindArchive:
		return NewArchive(), nil
	default:
		return nil, fmt.Errorf("%s: %w", kind, errUnknownPackager)
	}
}

// ToolPaths carries the injected executable locations for packagers that
// shell out. Empty values fall back to the bare tool names.
type ToolPaths struct {
	// PkgBuild is the path of the macOS installer builder.
	PkgBuild string
	// PyInstaller is the path of the Python bundler.
	PyInstaller string
	// ScriptsDir optionally points at pre/post-install hook scripts for pkgbuild.
	ScriptsDir string
}
