package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/clipabit/plugin-packager/internal/config"
	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/logger"
	"github.com/clipabit/plugin-packager/internal/manifest"
	"github.com/clipabit/plugin-packager/internal/repository/receipt"
	"github.com/clipabit/plugin-packager/internal/staging"
	"github.com/clipabit/plugin-packager/internal/tool"
)

// regularFileMode is applied to installed files that are not entry points.
const regularFileMode os.FileMode = 0o644

// Options contains inputs for the installer entry point.
type Options struct {
	// PayloadDir is the staged payload or unpacked artifact directory.
	PayloadDir string
	// SystemScope installs for all users instead of the current one.
	SystemScope bool
	// PythonPath overrides the interpreter used for dependency handling.
	PythonPath string
	// SkipDependencies disables pip installation and the dependency check.
	SkipDependencies bool
	// TargetDir overrides the detected Resolve scripts directory. When set,
	// host detection is skipped and the caller owns the location.
	TargetDir string
}

// installer holds the state for a single installation run.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type installer struct {
	payloadDir       string
	targetDir        string
	python           string
	runner           tool.Runner
	desc             *manifest.Manifest
	deps             []string
	skipDeps         bool
	targetOverridden bool
}

// Run executes the installation workflow and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "clipabit-installer")

	inst, err := newInstaller(opts, tool.NewExecRunner())
	if err != nil {
		return fmt.Errorf("initialize installer: %w", err)
	}

	if err = inst.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return err
	}

	logger.Info(ctx, "Installation completed successfully")

	return nil
}

// newInstaller validates the payload and resolves the target directory.
func newInstaller(opts *Options, runner tool.Runner) (*installer, error) {
	if _, err := os.Stat(opts.PayloadDir); err != nil {
		return nil, &build.StagingError{Path: opts.PayloadDir, Err: err}
	}

	desc, err := manifest.Load(opts.PayloadDir)
	if err != nil {
		return nil, err
	}

	target := opts.TargetDir
	if target == "" {
		if target, err = scriptsDir(runtime.GOOS, opts.SystemScope); err != nil {
			return nil, err
		}
	}

	python := opts.PythonPath
	if python == "" {
		python = config.DefaultPython
	}

	inst := &installer{
		payloadDir:       opts.PayloadDir,
		targetDir:        target,
		python:           python,
		runner:           runner,
		desc:             desc,
		skipDeps:         opts.SkipDependencies,
		targetOverridden: opts.TargetDir != "",
	}
	inst.deps = inst.payloadDependencies()

	return inst, nil
}

// Run executes the installation stages in order. Like the build pipeline,
// any failure aborts the whole run; there is no partial-success mode.
func (i *installer) Run(ctx context.Context) error {
	if err := i.preflightHost(ctx); err != nil {
		return err
	}

	if err := i.preflightPython(ctx); err != nil {
		return err
	}

	if !i.skipDeps {
		if err := i.installDependencies(ctx); err != nil {
			return err
		}
	}

	if err := i.placeFiles(ctx); err != nil {
		return err
	}

	if err := i.verify(ctx); err != nil {
		return err
	}

	return i.writeReceipt(ctx)
}

// preflightHost confirms the platform is supported and DaVinci Resolve is
// installed. A running Resolve only warns: the new files take effect after a
// restart.
func (i *installer) preflightHost(ctx context.Context) error {
	if i.targetOverridden {
		logger.Debug(ctx, "Target directory overridden, skipping host detection")
		return nil
	}

	candidates := resolveAppCandidates(runtime.GOOS)
	if len(candidates) == 0 {
		return fmt.Errorf("%s: %w", runtime.GOOS, errUnsupportedPlatform)
	}

	var found string

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			found = candidate
			break
		}
	}

	if found == "" {
		return &build.ToolNotFoundError{
			Tool:        "DaVinci Resolve",
			Remediation: "install DaVinci Resolve from https://www.blackmagicdesign.com/products/davinciresolve/",
		}
	}

	logger.InfoKV(ctx, "Found DaVinci Resolve", "path", found)

	running, err := isResolveRunning()
	if err != nil {
		logger.Warnf(ctx, "Could not inspect running processes: %v", err)
		return nil
	}

	if running {
		logger.Warn(ctx, "DaVinci Resolve is running, restart it to pick up the new plugin")
	}

	return nil
}

// preflightPython probes the interpreter, checks the minimum version and
// verifies pip is usable.
func (i *installer) preflightPython(ctx context.Context) error {
	banner, err := i.runner.Probe(ctx, i.python, "--version")
	if err != nil {
		return &build.ToolNotFoundError{
			Tool:        i.python,
			Remediation: "install Python 3.8+ from https://www.python.org/downloads/",
			Err:         err,
		}
	}

	logger.InfoKV(ctx, "Found Python", "version", banner)

	versionGate := "import sys; sys.exit(0 if sys.version_info >= (3, 8) else 1)"
	if _, err = i.runner.Run(ctx, i.python, "-c", versionGate); err != nil {
		return &build.ToolNotFoundError{
			Tool:        i.python,
			Remediation: "Python 3.8 or higher is required",
			Err:         err,
		}
	}

	if output, runErr := i.runner.Run(ctx, i.python, "-m", "pip", "--version"); runErr != nil {
		return &build.ToolNotFoundError{
			Tool:        "pip",
			Remediation: "run: " + i.python + " -m ensurepip --default-pip",
			Err:         fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), runErr),
		}
	}

	return nil
}

// installDependencies installs each Python dependency the plugin declares.
func (i *installer) installDependencies(ctx context.Context) error {
	for _, dep := range i.deps {
		logger.InfoKV(ctx, "Installing dependency", "package", dep)

		output, err := i.runner.Run(ctx, i.python, "-m", "pip", "install", "--upgrade", dep)
		if err != nil {
			return &build.PackagerError{
				Tool:     "pip",
				ExitCode: tool.ExitCode(err),
				Output:   strings.TrimSpace(string(output)),
				Err:      err,
			}
		}
	}

	return nil
}

// placeFiles removes any previous installation and applies every payload file
// with checksum validation against the manifest.
func (i *installer) placeFiles(ctx context.Context) error {
	target := i.installDir()

	logger.InfoKV(ctx, "Installing plugin files", "source", i.payloadDir, "target", target)

	if err := os.MkdirAll(i.targetDir, staging.DirMode); err != nil {
		return &build.StagingError{Path: i.targetDir, Err: err}
	}

	if previous, err := receipt.NewFileRepository(filepath.Join(target, receipt.Filename)).Load(ctx); err == nil {
		logger.InfoKV(ctx, "Replacing existing installation", "previous_version", previous.Version)
	}

	if _, err := os.Stat(target); err == nil {
		if err = os.RemoveAll(target); err != nil {
			return &build.StagingError{Path: target, Err: err}
		}
	}

	entryPoints := sliceToSet(i.desc.EntryPoints)

	for relative := range i.desc.Files {
		if err := i.placeFile(relative, target, entryPoints); err != nil {
			return err
		}

		logger.DebugKV(ctx, "Placed file", "file", relative)
	}

	return nil
}

// placeFile applies one payload file to its destination, validating its
// checksum so a corrupted payload never half-installs.
func (i *installer) placeFile(relative, target string, entryPoints map[string]struct{}) error {
	checksum, err := i.desc.Checksum(relative)
	if err != nil {
		return err
	}

	source := filepath.Join(i.payloadDir, filepath.FromSlash(relative))

	data, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return &build.StagingError{Path: source, Err: err}
	}

	destination := filepath.Join(target, filepath.FromSlash(relative))
	if err = os.MkdirAll(filepath.Dir(destination), staging.DirMode); err != nil {
		return &build.StagingError{Path: destination, Err: err}
	}

	mode := regularFileMode
	if _, ok := entryPoints[relative]; ok {
		mode = staging.ExecutableMode
	}

	if _, err = os.Stat(destination); errors.Is(err, os.ErrNotExist) {
		var created *os.File

		if created, err = os.Create(filepath.Clean(destination)); err != nil {
			return &build.StagingError{Path: destination, Err: err}
		}

		_ = created.Close()
	}

	options := goupdate.Options{
		TargetPath: destination,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       manifest.DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return &build.IntegrityError{
			ArtifactPath: destination,
			Reason:       fmt.Sprintf("checksum validation failed: %v", err),
		}
	}

	oldFile := destination + ".old"
	if _, err = os.Stat(oldFile); err == nil {
		_ = os.Remove(oldFile)
	}

	return nil
}

// verify confirms entry points survived installation and, best effort, that
// the Python dependencies are visible to the interpreter.
func (i *installer) verify(ctx context.Context) error {
	target := i.installDir()

	for _, entry := range i.desc.EntryPoints {
		installed := filepath.Join(target, filepath.FromSlash(entry))
		if _, err := os.Stat(installed); err != nil {
			return &build.IntegrityError{
				ArtifactPath: installed,
				Reason:       "entry point missing after installation",
			}
		}
	}

	if i.skipDeps {
		return nil
	}

	// A missing dependency degrades to a warning: the plugin may still load
	// if the user installs it later.
	for _, dep := range i.deps {
		name := distributionName(dep)
		if _, err := i.runner.Run(ctx, i.python, "-m", "pip", "show", name); err != nil {
			logger.Warnf(ctx, "Dependency %s is not visible to %s: %v", name, i.python, err)
		}
	}

	return nil
}

// writeReceipt records what was installed, where, when and by whom.
func (i *installer) writeReceipt(ctx context.Context) error {
	actor, err := receipt.DetectActor()
	if err != nil {
		logger.Warnf(ctx, "Could not detect installing user: %v", err)
	}

	target := i.installDir()
	repo := receipt.NewFileRepository(filepath.Join(target, receipt.Filename))

	rec := &receipt.Receipt{
		Name:        i.desc.Name,
		Version:     i.desc.VersionNumber,
		Identifier:  i.desc.Identifier,
		InstallPath: target,
		InstalledAt: time.Now().UTC(),
		InstalledBy: actor,
	}

	if err = repo.Save(ctx, rec); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Recorded installation receipt", "version", rec.Version)

	return nil
}

// installDir is the directory the plugin lives in under the scripts dir.
func (i *installer) installDir() string {
	return filepath.Join(i.targetDir, i.desc.Name)
}

// payloadDependencies finds the plugin's pyproject.toml in the manifest and
// reads its dependency list.
func (i *installer) payloadDependencies() []string {
	for file := range i.desc.Files {
		if path.Base(file) == "pyproject.toml" {
			return readDependencies(filepath.Join(i.payloadDir, filepath.FromSlash(file)))
		}
	}

	return fallbackDependencies
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
