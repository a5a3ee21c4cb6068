package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/manifest"
	"github.com/clipabit/plugin-packager/internal/repository/receipt"
)

// fakeRunner records invocations and fails on demand.
type fakeRunner struct {
	probeErr error
	failOn   string
	calls    [][]string
}

func (f *fakeRunner) Probe(_ context.Context, _ string, _ ...string) (string, error) {
	if f.probeErr != nil {
		return "", f.probeErr
	}

	return "Python 3.12.0", nil
}

func (f *fakeRunner) Run(_ context.Context, tool string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{tool}, args...))

	if f.failOn != "" && slices.Contains(args, f.failOn) {
		return []byte("pip failed hard"), errors.New("exit status 1")
	}

	return nil, nil
}

// called reports whether any recorded invocation contains every given argument.
func (f *fakeRunner) called(args ...string) bool {
	for _, call := range f.calls {
		matched := true

		for _, arg := range args {
			if !slices.Contains(call, arg) {
				matched = false
				break
			}
		}

		if matched {
			return true
		}
	}

	return false
}

const testPyproject = `[project]
name = "clipabit"
dependencies = ["requests>=2.31.0"]
`

// newPayload stages a manifest-carrying payload tree for installation tests.
func newPayload(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "ClipABit")
	pluginDir := filepath.Join(dir, "plugin")

	require.NoError(t, os.MkdirAll(pluginDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "clipabit.py"), []byte("print('hi')\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "pyproject.toml"), []byte(testPyproject), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "installer-script"), []byte("#!/bin/sh\n"), 0o755))

	spec := &build.PackageSpec{
		Name:        "ClipABit",
		Version:     "1.0.0",
		Identifier:  "com.clipabit.plugin.installer",
		EntryPoints: []string{"plugin/clipabit.py"},
	}

	m, err := manifest.Generate(dir, spec)
	require.NoError(t, err)
	require.NoError(t, m.Write(dir))

	return dir
}

// TestRun_InstallsPayload covers the whole installation flow with an overridden target.
func TestRun_InstallsPayload(t *testing.T) {
	t.Parallel()

	payload := newPayload(t)
	target := t.TempDir()
	runner := &fakeRunner{}

	inst, err := newInstaller(&Options{
		PayloadDir: payload,
		TargetDir:  target,
	}, runner)
	require.NoError(t, err)
	require.NoError(t, inst.Run(context.Background()))

	installed := filepath.Join(target, "ClipABit", "plugin", "clipabit.py")

	contents, err := os.ReadFile(installed)
	require.NoError(t, err)
	require.Contains(t, string(contents), "print")

	if runtime.GOOS != "windows" {
		info, statErr := os.Stat(installed)
		require.NoError(t, statErr)
		require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	// Dependencies from the payload's pyproject.toml were installed and checked.
	require.True(t, runner.called("pip", "install", "requests>=2.31.0"))
	require.True(t, runner.called("pip", "show", "requests"))

	// A receipt records the installed release.
	repo := receipt.NewFileRepository(filepath.Join(target, "ClipABit", receipt.Filename))

	rec, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.0.0", rec.Version)
	require.Equal(t, "com.clipabit.plugin.installer", rec.Identifier)
}

// TestRun_ReplacesExistingInstallation verifies stale files do not survive reinstallation.
func TestRun_ReplacesExistingInstallation(t *testing.T) {
	t.Parallel()

	payload := newPayload(t)
	target := t.TempDir()

	inst, err := newInstaller(&Options{
		PayloadDir:       payload,
		TargetDir:        target,
		SkipDependencies: true,
	}, &fakeRunner{})
	require.NoError(t, err)
	require.NoError(t, inst.Run(context.Background()))

	stale := filepath.Join(target, "ClipABit", "stale.py")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	require.NoError(t, inst.Run(context.Background()))

	_, err = os.Stat(stale)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestNewInstaller_MissingPayload rejects a payload directory that does not exist.
func TestNewInstaller_MissingPayload(t *testing.T) {
	t.Parallel()

	_, err := newInstaller(&Options{
		PayloadDir: filepath.Join(t.TempDir(), "nope"),
		TargetDir:  t.TempDir(),
	}, &fakeRunner{})

	var stagingErr *build.StagingError

	require.ErrorAs(t, err, &stagingErr)
}

// TestNewInstaller_PayloadWithoutManifest rejects payloads missing the manifest.
func TestNewInstaller_PayloadWithoutManifest(t *testing.T) {
	t.Parallel()

	payload := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(payload, "clipabit.py"), []byte("print('hi')\n"), 0o644))

	_, err := newInstaller(&Options{
		PayloadDir: payload,
		TargetDir:  t.TempDir(),
	}, &fakeRunner{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "manifest")
}

// TestRun_CorruptedPayloadFailsIntegrity tampering after manifest generation must abort.
func TestRun_CorruptedPayloadFailsIntegrity(t *testing.T) {
	t.Parallel()

	payload := newPayload(t)
	require.NoError(t, os.WriteFile(filepath.Join(payload, "installer-script"), []byte("tampered\n"), 0o755))

	inst, err := newInstaller(&Options{
		PayloadDir:       payload,
		TargetDir:        t.TempDir(),
		SkipDependencies: true,
	}, &fakeRunner{})
	require.NoError(t, err)

	err = inst.Run(context.Background())

	var integrityErr *build.IntegrityError

	require.ErrorAs(t, err, &integrityErr)
	require.Contains(t, integrityErr.Reason, "checksum")
}

// TestPreflightPython_MissingInterpreter surfaces install guidance.
func TestPreflightPython_MissingInterpreter(t *testing.T) {
	t.Parallel()

	inst, err := newInstaller(&Options{
		PayloadDir: newPayload(t),
		TargetDir:  t.TempDir(),
	}, &fakeRunner{probeErr: errors.New("executable file not found")})
	require.NoError(t, err)

	err = inst.Run(context.Background())

	var toolErr *build.ToolNotFoundError

	require.ErrorAs(t, err, &toolErr)
	require.Contains(t, toolErr.Remediation, "python.org")
}

// TestInstallDependencies_PipFailure attaches pip diagnostics to the error.
func TestInstallDependencies_PipFailure(t *testing.T) {
	t.Parallel()

	inst, err := newInstaller(&Options{
		PayloadDir: newPayload(t),
		TargetDir:  t.TempDir(),
	}, &fakeRunner{failOn: "install"})
	require.NoError(t, err)

	err = inst.Run(context.Background())

	var pkgErr *build.PackagerError

	require.ErrorAs(t, err, &pkgErr)
	require.Equal(t, "pip", pkgErr.Tool)
	require.Contains(t, pkgErr.Output, "pip failed hard")
}
