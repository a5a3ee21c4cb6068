package packager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clipabit/plugin-packager/internal/domain/build"
)

// fakeRunner records tool invocations and returns canned results.
type fakeRunner struct {
	banner    string
	probeErr  error
	runOutput []byte
	runErr    error
	lastTool  string
	lastArgs  []string
}

func (f *fakeRunner) Probe(_ context.Context, _ string, _ ...string) (string, error) {
	return f.banner, f.probeErr
}

func (f *fakeRunner) Run(_ context.Context, tool string, args ...string) ([]byte, error) {
	f.lastTool = tool
	f.lastArgs = args

	return f.runOutput, f.runErr
}

func testSpec(t *testing.T) *build.PackageSpec {
	t.Helper()

	return &build.PackageSpec{
		Name:            "ClipABit",
		Version:         "1.0.0",
		Identifier:      "com.clipabit.plugin.installer",
		InstallLocation: "/Library/Application Support/ClipABit",
		EntryPoints:     []string{"plugin/clipabit.py"},
		OutputDir:       t.TempDir(),
	}
}

// TestPkgBuild_PassesSpecMetadata checks identifier, version and install location reach the tool.
func TestPkgBuild_PassesSpecMetadata(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	p := NewPkgBuild(runner, "/opt/bin/pkgbuild", "scripts")
	spec := testSpec(t)

	require.NoError(t, p.Package(context.Background(), "build/ClipABit", spec))
	require.Equal(t, "/opt/bin/pkgbuild", runner.lastTool)
	require.Contains(t, runner.lastArgs, "com.clipabit.plugin.installer")
	require.Contains(t, runner.lastArgs, "1.0.0")
	require.Contains(t, runner.lastArgs, "/Library/Application Support/ClipABit")
	require.Contains(t, runner.lastArgs, "scripts")
	require.Equal(t, p.ArtifactPath(spec), runner.lastArgs[len(runner.lastArgs)-1])
}

// TestPkgBuild_NonZeroExit surfaces a PackagerError with captured diagnostics.
func TestPkgBuild_NonZeroExit(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		runOutput: []byte("pkgbuild: error: no such identifier\n"),
		runErr:    errors.New("exit status 1"),
	}
	p := NewPkgBuild(runner, "", "")

	err := p.Package(context.Background(), "build/ClipABit", testSpec(t))

	var pkgErr *build.PackagerError

	require.ErrorAs(t, err, &pkgErr)
	require.Equal(t, KindPkgBuild, pkgErr.Tool)
	require.Contains(t, pkgErr.Output, "no such identifier")
}

// TestPyInstaller_BundlesEntryPoint checks the one-file invocation shape.
func TestPyInstaller_BundlesEntryPoint(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	p := NewPyInstaller(runner, "")
	spec := testSpec(t)

	require.NoError(t, p.Package(context.Background(), "build/ClipABit", spec))
	require.Equal(t, KindPyInstaller, runner.lastTool)
	require.Contains(t, runner.lastArgs, "--onefile")
	require.Contains(t, runner.lastArgs, "ClipABit")
	require.Contains(t, runner.lastArgs, spec.OutputDir)
}

// TestPyInstaller_RequiresEntryPoint rejects specs without a script to bundle.
func TestPyInstaller_RequiresEntryPoint(t *testing.T) {
	t.Parallel()

	spec := testSpec(t)
	spec.EntryPoints = nil

	err := NewPyInstaller(&fakeRunner{}, "").Package(context.Background(), "build/ClipABit", spec)
	require.ErrorIs(t, err, errNoEntryPoint)
}

// TestByName covers platform auto-selection and unknown kinds.
func TestByName(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}

	p, err := ByName(KindAuto, "darwin", runner, ToolPaths{})
	require.NoError(t, err)
	require.Equal(t, KindPkgBuild, p.Name())

	p, err = ByName("", "windows", runner, ToolPaths{})
	require.NoError(t, err)
	require.Equal(t, KindPyInstaller, p.Name())

	p, err = ByName(KindAuto, "linux", runner, ToolPaths{})
	require.NoError(t, err)
	require.Equal(t, KindArchive, p.Name())

	p, err = ByName(KindArchive, "darwin", runner, ToolPaths{})
	require.NoError(t, err)
	require.Equal(t, KindArchive, p.Name())

	_, err = ByName("msi", "windows", runner, ToolPaths{})
	require.ErrorIs(t, err, errUnknownPackager)
}
