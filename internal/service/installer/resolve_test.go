package installer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveAppCandidates covers the per-platform application paths.
func TestResolveAppCandidates(t *testing.T) {
	t.Parallel()

	darwin := resolveAppCandidates("darwin")
	require.Len(t, darwin, 2)
	require.Contains(t, darwin[0], "DaVinci Resolve.app")

	windows := resolveAppCandidates("windows")
	require.Len(t, windows, 2)
	require.Contains(t, windows[0], "Resolve.exe")

	require.Empty(t, resolveAppCandidates("linux"))
}

// TestScriptsDir_Darwin resolves both scopes of the Fusion scripts directory.
func TestScriptsDir_Darwin(t *testing.T) {
	t.Parallel()

	system, err := scriptsDir("darwin", true)
	require.NoError(t, err)
	require.Equal(t, "/Library/Application Support/Blackmagic Design/DaVinci Resolve/Fusion/Scripts/Utility", system)

	userDir, err := scriptsDir("darwin", false)
	require.NoError(t, err)
	require.Contains(t, userDir, "Scripts")
	require.NotEqual(t, system, userDir)
}

// TestScriptsDir_Windows requires the profile environment variables.
func TestScriptsDir_Windows(t *testing.T) {
	t.Setenv("APPDATA", `C:\Users\editor\AppData\Roaming`)
	t.Setenv("PROGRAMDATA", `C:\ProgramData`)

	userDir, err := scriptsDir("windows", false)
	require.NoError(t, err)
	require.Contains(t, userDir, "Blackmagic Design")

	system, err := scriptsDir("windows", true)
	require.NoError(t, err)
	require.Contains(t, system, "Blackmagic Design")

	t.Setenv("APPDATA", "")

	_, err = scriptsDir("windows", false)
	require.ErrorIs(t, err, errNoProfileDirectory)
}

// TestScriptsDir_Unsupported rejects platforms without a Resolve install.
func TestScriptsDir_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := scriptsDir("plan9", false)
	require.ErrorIs(t, err, errUnsupportedPlatform)
}
