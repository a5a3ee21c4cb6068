package receipt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), Filename))

	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal data.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), Filename)
	repo := NewFileRepository(file)

	ts := time.Now().UTC().Truncate(time.Second)
	want := &Receipt{
		Name:        "ClipABit",
		Version:     "1.0.0",
		Identifier:  "com.clipabit.plugin.installer",
		InstallPath: "/Library/Application Support/ClipABit",
		InstalledAt: ts,
		InstalledBy: &Actor{
			Hostname: "editbay-03",
			Username: "colorist",
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.InstalledAt.Unix(), got.InstalledAt.Unix())
	require.Equal(t, want.InstalledBy, got.InstalledBy)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestDetectActor returns the current host and user.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	actor, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, actor.Hostname)
	require.NotEmpty(t, actor.Username)
}
