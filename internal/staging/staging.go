package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/logger"
)

const (
	// DirMode is applied to directories created while staging.
	DirMode os.FileMode = 0o755

	// ExecutableMode is applied to entry points so the installed scripts can run.
	ExecutableMode os.FileMode = 0o755
)

// Stager assembles payload directories under a fixed root.
// A payload is owned by exactly one pipeline run; concurrent runs sharing the
// same root are not supported and would race on the payload tree.
type Stager struct {
	// root is the directory staged payloads are created under.
	root string
}

// New returns a stager writing payloads under the provided root.
func New(root string) *Stager {
	return &Stager{
		root: filepath.Clean(root),
	}
}

// PayloadDir returns the directory the payload for the spec is staged into.
func (s *Stager) PayloadDir(spec *build.PackageSpec) string {
	return filepath.Join(s.root, spec.PayloadName())
}

// Stage deletes any previous payload tree and assembles a fresh one:
// each source path is copied in preserving relative structure, then entry
// points get executable permissions. Returns the payload directory.
//
// Any failure yields a StagingError and leaves no usable payload behind.
func (s *Stager) Stage(ctx context.Context, spec *build.PackageSpec) (string, error) {
	payloadDir := s.PayloadDir(spec)

	logger.InfoKV(ctx, "Assembling payload", "path", payloadDir)

	// Idempotent cleanup of a previous run.
	if err := os.RemoveAll(payloadDir); err != nil {
		return "", &build.StagingError{Path: payloadDir, Err: err}
	}

	if err := os.MkdirAll(payloadDir, DirMode); err != nil {
		return "", &build.StagingError{Path: payloadDir, Err: err}
	}

	for _, source := range spec.SourcePaths {
		source = filepath.Clean(source)

		info, err := os.Stat(source)
		if errors.Is(err, os.ErrNotExist) {
			return "", &build.StagingError{Path: source, Err: os.ErrNotExist}
		} else if err != nil {
			return "", &build.StagingError{Path: source, Err: err}
		}

		target := filepath.Join(payloadDir, filepath.Base(source))

		if info.IsDir() {
			err = copyTree(source, target)
		} else {
			err = copyFile(source, target, info.Mode().Perm())
		}

		if err != nil {
			return "", &build.StagingError{Path: source, Err: err}
		}

		logger.DebugKV(ctx, "Staged source", "source", source, "target", target)
	}

	for _, entry := range spec.EntryPoints {
		target := filepath.Join(payloadDir, filepath.FromSlash(entry))
		if err := os.Chmod(target, ExecutableMode); err != nil {
			return "", &build.StagingError{Path: entry, Err: err}
		}
	}

	return payloadDir, nil
}

// copyTree copies a directory recursively, preserving relative structure.
func copyTree(source, target string) error {
	return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relative, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}

		destination := filepath.Join(target, relative)

		if entry.IsDir() {
			return os.MkdirAll(destination, DirMode)
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		return copyFile(path, destination, info.Mode().Perm())
	})
}

// copyFile copies a single file, carrying over its permission bits.
func copyFile(source, target string, mode os.FileMode) error {
	in, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %s: %w", source, err)
	}

	return out.Close()
}
