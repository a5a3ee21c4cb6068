package packager

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/staging"
)

// Archive produces a portable tar.gz of the payload. It needs no external
// tools, works on every platform, and keeps Unix mode bits intact so entry
// points stay executable after extraction.
type Archive struct{}

// NewArchive returns the tar.gz packager.
func NewArchive() *Archive {
	return &Archive{}
}

// Name implements Packager.
func (a *Archive) Name() string {
	return KindArchive
}

// RequiredTools implements Packager. The archive packager is self-contained.
func (a *Archive) RequiredTools() []Tool {
	return nil
}

// ArtifactPath implements Packager.
func (a *Archive) ArtifactPath(spec *build.PackageSpec) string {
	return spec.ArtifactBase() + ".tar.gz"
}

// Package writes the payload tree into a gzip-compressed tarball whose
// entries are rooted at the payload name.
func (a *Archive) Package(ctx context.Context, payloadDir string, spec *build.PackageSpec) error {
	if err := os.MkdirAll(spec.OutputDir, staging.DirMode); err != nil {
		return &build.StagingError{Path: spec.OutputDir, Err: err}
	}

	artifact, err := os.Create(a.ArtifactPath(spec))
	if err != nil {
		return &build.StagingError{Path: a.ArtifactPath(spec), Err: err}
	}

	defer func() {
		_ = artifact.Close()
	}()

	compressor := gzip.NewWriter(artifact)
	archiver := tar.NewWriter(compressor)

	if err = a.writeTree(ctx, archiver, payloadDir, spec.PayloadName()); err != nil {
		_ = archiver.Close()
		_ = compressor.Close()

		return fmt.Errorf("archive payload: %w", err)
	}

	if err = archiver.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	if err = compressor.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	return artifact.Close()
}

// writeTree walks the payload and appends every entry under the root name.
func (a *Archive) writeTree(ctx context.Context, archiver *tar.Writer, payloadDir, rootName string) error {
	return filepath.WalkDir(payloadDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		relative, err := filepath.Rel(payloadDir, path)
		if err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(filepath.Join(rootName, relative))
		if entry.IsDir() {
			header.Name += "/"
		}

		if err = archiver.WriteHeader(header); err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		file, err := os.Open(filepath.Clean(path))
		if err != nil {
			return err
		}

		defer func() {
			_ = file.Close()
		}()

		_, err = io.Copy(archiver, file)

		return err
	})
}
