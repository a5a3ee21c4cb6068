package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clipabit/plugin-packager/internal/domain/build"
)

// Config is the build configuration for one plugin release. It is the only
// source of packaging inputs: tool paths are injected here instead of being
// discovered from the environment.
type Config struct {
	// Name is the plugin name; the artifact filename derives from it.
	Name string `yaml:"name"`
	// Version is the semantic version of the release.
	Version string `yaml:"version"`
	// Identifier is the reverse-domain package identifier.
	Identifier string `yaml:"identifier"`
	// InstallLocation is the absolute target path for installed files.
	InstallLocation string `yaml:"install_location"`
	// SourcePaths lists files and directories shipped in the payload.
	SourcePaths []string `yaml:"source_paths"`
	// EntryPoints lists payload-relative scripts that must stay executable.
	EntryPoints []string `yaml:"entry_points"`
	// OutputDir is where artifacts are written. Defaults to dist.
	OutputDir string `yaml:"output_dir"`
	// StagingDir is where payloads are assembled. Defaults to build.
	StagingDir string `yaml:"staging_dir"`
	// Packager picks the artifact format: auto, pkgbuild, pyinstaller or archive.
	Packager string `yaml:"packager"`
	// Tools holds injected external tool locations.
	Tools ToolsConfig `yaml:"tools"`
}

// ToolsConfig carries explicit executable paths for external collaborators.
// Empty values fall back to well-known defaults.
type ToolsConfig struct {
	// PkgBuild is the macOS installer builder path.
	PkgBuild string `yaml:"pkgbuild"`
	// PyInstaller is the Python bundler path.
	PyInstaller string `yaml:"pyinstaller"`
	// Python is the interpreter used by the installer. Defaults to python3.
	Python string `yaml:"python"`
	// ScriptsDir optionally points at pkgbuild pre/post-install hooks.
	ScriptsDir string `yaml:"scripts_dir"`
}

const (
	// DefaultConfigFilename is the default build configuration file.
	DefaultConfigFilename = "clipabit-packager.yaml"

	// DefaultOutputDir is where artifacts land when not configured.
	DefaultOutputDir = "dist"

	// DefaultStagingDir is where payloads are assembled when not configured.
	DefaultStagingDir = "build"

	// DefaultPython is the interpreter probed and used by the installer.
	DefaultPython = "python3"

	// DefaultFilePermissions is the permission for written configuration files.
	DefaultFilePermissions = 0o600

	// minIdentifierLabels is the minimum dot-separated label count of a
	// reverse-domain identifier.
	minIdentifierLabels = 2
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNameRequired is returned when the plugin name is missing.
	errNameRequired = errors.New("package name must be provided")
	// errVersionRequired is returned when the release version is missing.
	errVersionRequired = errors.New("package version must be provided")
	// errIdentifierInvalid is returned for malformed reverse-domain identifiers.
	errIdentifierInvalid = errors.New("identifier must be a reverse-domain string")
	// errInstallLocationInvalid is returned when install location is missing or relative.
	errInstallLocationInvalid = errors.New("install location must be an absolute path")
	// errNoSourcePaths is returned when nothing would be shipped.
	errNoSourcePaths = errors.New("at least one source path must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read build configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal build configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal build configuration: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write build configuration: %w", err)
	}

	return nil
}

// Validate checks required fields and applies defaults for optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.Name) == "" {
		return errNameRequired
	}

	if strings.TrimSpace(cfg.Version) == "" {
		return errVersionRequired
	}

	if !isReverseDomain(cfg.Identifier) {
		return fmt.Errorf("%q: %w", cfg.Identifier, errIdentifierInvalid)
	}

	if cfg.InstallLocation == "" || !filepath.IsAbs(cfg.InstallLocation) {
		return fmt.Errorf("%q: %w", cfg.InstallLocation, errInstallLocationInvalid)
	}

	if len(cfg.SourcePaths) == 0 {
		return errNoSourcePaths
	}

	// Apply defaults for unset optional fields.
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}

	if cfg.Tools.Python == "" {
		cfg.Tools.Python = DefaultPython
	}

	return nil
}

// Spec constructs the immutable PackageSpec handed to the pipeline.
func (c *Config) Spec() *build.PackageSpec {
	return &build.PackageSpec{
		Name:            c.Name,
		Version:         c.Version,
		Identifier:      c.Identifier,
		InstallLocation: c.InstallLocation,
		SourcePaths:     append([]string(nil), c.SourcePaths...),
		EntryPoints:     append([]string(nil), c.EntryPoints...),
		OutputDir:       c.OutputDir,
	}
}

// isReverseDomain accepts identifiers with at least two non-empty
// dot-separated labels, e.g. com.clipabit.plugin.installer.
func isReverseDomain(identifier string) bool {
	labels := strings.Split(identifier, ".")
	if len(labels) < minIdentifierLabels {
		return false
	}

	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return false
		}
	}

	return true
}
