package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clipabit/plugin-packager/internal/domain/build"
)

// newPayload writes a tiny payload tree and returns its root.
func newPayload(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plugin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin", "clipabit.py"), []byte("print('hi')\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "installer-script"), []byte("#!/bin/sh\n"), 0o755))

	return dir
}

// TestGenerateWriteLoad_Roundtrip covers the full manifest lifecycle.
func TestGenerateWriteLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	payload := newPayload(t)
	spec := &build.PackageSpec{
		Name:        "ClipABit",
		Version:     "1.0.0",
		Identifier:  "com.clipabit.plugin.installer",
		EntryPoints: []string{"plugin/clipabit.py"},
	}

	m, err := Generate(payload, spec)
	require.NoError(t, err)
	require.Len(t, m.Files, 2)
	require.Contains(t, m.Files, "plugin/clipabit.py")
	require.Contains(t, m.Files, "installer-script")

	require.NoError(t, m.Write(payload))

	loaded, err := Load(payload)
	require.NoError(t, err)
	require.Equal(t, m.Name, loaded.Name)
	require.Equal(t, m.VersionNumber, loaded.VersionNumber)
	require.Equal(t, m.Identifier, loaded.Identifier)
	require.Equal(t, m.Files, loaded.Files)
	require.Equal(t, m.EntryPoints, loaded.EntryPoints)
}

// TestGenerate_ExcludesItself ensures regenerating after Write stays stable.
func TestGenerate_ExcludesItself(t *testing.T) {
	t.Parallel()

	payload := newPayload(t)
	spec := &build.PackageSpec{Name: "ClipABit", Version: "1.0.0"}

	m, err := Generate(payload, spec)
	require.NoError(t, err)
	require.NoError(t, m.Write(payload))

	again, err := Generate(payload, spec)
	require.NoError(t, err)
	require.Equal(t, m.Files, again.Files)
	require.NotContains(t, again.Files, Filename)
}

// TestChecksum_MatchesFileContents verifies decoded checksums line up with FileChecksum.
func TestChecksum_MatchesFileContents(t *testing.T) {
	t.Parallel()

	payload := newPayload(t)
	spec := &build.PackageSpec{Name: "ClipABit", Version: "1.0.0"}

	m, err := Generate(payload, spec)
	require.NoError(t, err)

	want, err := FileChecksum(filepath.Join(payload, "installer-script"))
	require.NoError(t, err)

	got, err := m.Checksum("installer-script")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = m.Checksum("not-shipped.txt")
	require.ErrorIs(t, err, ErrNoChecksum)
}
