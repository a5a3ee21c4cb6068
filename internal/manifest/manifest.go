package manifest

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/clipabit/plugin-packager/internal/domain/build"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// Filename is the manifest written into the payload root.
	Filename = "clipabit-manifest.yaml"

	// DefaultChecksumFunction is used to calculate payload file hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// fileMode is used when writing the manifest file.
	fileMode os.FileMode = 0o644

	// defaultMapCapacity is the default initial capacity for the files map.
	defaultMapCapacity = 16
)

var (
	errHashUnavailable = errors.New("hash function unavailable")

	// ErrNoChecksum is returned when a file has no manifest entry.
	ErrNoChecksum = errors.New("checksum missing for file")
)

// Manifest describes the payload of one release: identity metadata plus a
// checksum per shipped file. The installer validates every file it places
// against these checksums.
type Manifest struct {
	// Name is the plugin name.
	Name string `yaml:"name"`
	// VersionNumber is the semantic version of this release.
	VersionNumber string `yaml:"version"`
	// Identifier is the reverse-domain package identifier.
	Identifier string `yaml:"identifier"`
	// Files maps payload-relative paths to their base64-encoded checksums.
	Files map[string]string `yaml:"files"`
	// EntryPoints lists payload-relative paths that must stay executable.
	EntryPoints []string `yaml:"entry_points"`
}

// Generate walks the payload tree and produces a manifest with a checksum for
// every file. The manifest file itself is excluded.
func Generate(payloadDir string, spec *build.PackageSpec) (*Manifest, error) {
	m := &Manifest{
		Name:          spec.Name,
		VersionNumber: spec.Version,
		Identifier:    spec.Identifier,
		Files:         make(map[string]string, defaultMapCapacity),
		EntryPoints:   append([]string(nil), spec.EntryPoints...),
	}

	err := filepath.WalkDir(payloadDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		relative, err := filepath.Rel(payloadDir, path)
		if err != nil {
			return err
		}

		relative = filepath.ToSlash(relative)
		if relative == Filename {
			return nil
		}

		checksum, err := FileChecksum(path)
		if err != nil {
			return err
		}

		m.Files[relative] = base64.StdEncoding.EncodeToString(checksum)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate manifest: %w", err)
	}

	return m, nil
}

// Write persists the manifest into the payload root.
func (m *Manifest) Write(payloadDir string) error {
	contents, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(payloadDir, Filename)
	if err = os.WriteFile(path, contents, fileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Load reads the manifest from the payload root.
func Load(payloadDir string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(filepath.Join(payloadDir, Filename)))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Checksum returns the decoded checksum recorded for a payload-relative path.
func (m *Manifest) Checksum(relative string) ([]byte, error) {
	encoded, ok := m.Files[filepath.ToSlash(relative)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", relative, ErrNoChecksum)
	}

	checksum, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode checksum for %s: %w", relative, err)
	}

	return checksum, nil
}

// FileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
