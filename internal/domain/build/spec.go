package build

import "path/filepath"

// PackageSpec describes one plugin release to be turned into an installer artifact.
// It is constructed once from build configuration and never mutated afterwards.
type PackageSpec struct {
	// Name is the plugin name; the artifact filename is derived from it.
	Name string
	// Version is the semantic version embedded into the artifact metadata.
	Version string
	// Identifier is the reverse-domain package identifier (e.g. com.clipabit.plugin.installer).
	Identifier string
	// InstallLocation is the absolute path the installer places the payload under.
	InstallLocation string
	// SourcePaths lists the files and directories shipped in the payload, in order.
	SourcePaths []string
	// EntryPoints lists payload-relative paths that must carry executable permissions.
	EntryPoints []string
	// OutputDir is where the final artifact is written. Defaults to "dist".
	OutputDir string
}

// Clone returns a deep copy of the spec to avoid leaking internal slices.
func (s *PackageSpec) Clone() *PackageSpec {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.SourcePaths = append([]string(nil), s.SourcePaths...)
	cloned.EntryPoints = append([]string(nil), s.EntryPoints...)

	return &cloned
}

// PayloadName is the directory name of the staged payload tree.
func (s *PackageSpec) PayloadName() string {
	return s.Name
}

// ArtifactBase returns the artifact path without extension, inside OutputDir.
func (s *PackageSpec) ArtifactBase() string {
	return filepath.Join(s.OutputDir, s.Name)
}

// BuildResult is the outcome of a single pipeline run. It is produced once
// and never mutated after creation.
type BuildResult struct {
	// Success reports whether the pipeline produced a verified artifact.
	Success bool
	// ArtifactPath points at the produced artifact. Empty unless Success is true.
	ArtifactPath string
	// SizeBytes is the artifact size. Zero unless Success is true.
	SizeBytes int64
	// ErrorMessage holds the first fatal cause. Empty when Success is true.
	ErrorMessage string
	// FailedStage names the pipeline stage the run failed in, if any.
	FailedStage Stage
}

// Succeeded constructs the successful result for a verified artifact.
func Succeeded(artifactPath string, sizeBytes int64) *BuildResult {
	return &BuildResult{
		Success:      true,
		ArtifactPath: artifactPath,
		SizeBytes:    sizeBytes,
	}
}

// Failed constructs the failed result for the given stage and cause.
// ArtifactPath stays empty: a failed run never reports a partial artifact.
func Failed(stage Stage, err error) *BuildResult {
	return &BuildResult{
		ErrorMessage: err.Error(),
		FailedStage:  stage,
	}
}
