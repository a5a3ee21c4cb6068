package builder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/clipabit/plugin-packager/internal/domain/build"
	"github.com/clipabit/plugin-packager/internal/logger"
	"github.com/clipabit/plugin-packager/internal/manifest"
	"github.com/clipabit/plugin-packager/internal/packager"
	"github.com/clipabit/plugin-packager/internal/staging"
	"github.com/clipabit/plugin-packager/internal/tool"
)

// Builder executes the packaging pipeline for one spec:
//
//	PREFLIGHT → STAGE → INVOKE → VERIFY
//
// Execution is strictly sequential and fail-fast: the first error moves the
// run to FAILED and nothing is rolled back. On failure the staged payload is
// deliberately left behind for inspection.
type Builder struct {
	spec   *build.PackageSpec
	stager *staging.Stager
	pkg    packager.Packager
	runner tool.Runner
}

// New wires a builder from its collaborators. The spec is cloned so later
// mutations by the caller cannot leak into a running pipeline.
func New(spec *build.PackageSpec, stager *staging.Stager, pkg packager.Packager, runner tool.Runner) *Builder {
	return &Builder{
		spec:   spec.Clone(),
		stager: stager,
		pkg:    pkg,
		runner: runner,
	}
}

// Build runs the pipeline once and always returns a terminal BuildResult.
func (b *Builder) Build(ctx context.Context) *build.BuildResult {
	stage := build.StageStart

	stage = stage.Next()

	logger.InfoKV(ctx, "Running preflight", "packager", b.pkg.Name())

	if err := b.preflight(ctx); err != nil {
		return b.fail(ctx, stage, err)
	}

	stage = stage.Next()

	payloadDir, err := b.stager.Stage(ctx, b.spec)
	if err != nil {
		return b.fail(ctx, stage, err)
	}

	if err = b.writeManifest(ctx, payloadDir); err != nil {
		return b.fail(ctx, stage, err)
	}

	stage = stage.Next()

	if err = b.invoke(ctx, payloadDir); err != nil {
		return b.fail(ctx, stage, err)
	}

	stage = stage.Next()

	result, err := b.verify()
	if err != nil {
		return b.fail(ctx, stage, err)
	}

	logger.InfoKV(ctx, "Artifact verified",
		"path", result.ArtifactPath, "size_bytes", result.SizeBytes)

	return result
}

// preflight probes every tool the packager needs. Absence of a build tool is
// not transient, so there are no retries.
func (b *Builder) preflight(ctx context.Context) error {
	for _, required := range b.pkg.RequiredTools() {
		banner, err := b.runner.Probe(ctx, required.Path, required.ProbeArgs...)
		if err != nil {
			return &build.ToolNotFoundError{
				Tool:        required.Path,
				Remediation: required.Remediation,
				Err:         err,
			}
		}

		logger.InfoKV(ctx, "Found required tool", "tool", required.Path, "version", banner)
	}

	return nil
}

// writeManifest records per-file checksums into the payload before packaging.
func (b *Builder) writeManifest(ctx context.Context, payloadDir string) error {
	m, err := manifest.Generate(payloadDir, b.spec)
	if err != nil {
		return err
	}

	if err = m.Write(payloadDir); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Wrote payload manifest", "files", len(m.Files))

	return nil
}

// invoke deletes any previous artifact and calls the packager exactly once.
func (b *Builder) invoke(ctx context.Context, payloadDir string) error {
	artifact := b.pkg.ArtifactPath(b.spec)

	if err := os.Remove(artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous artifact: %w", err)
	}

	logger.InfoKV(ctx, "Invoking packager", "packager", b.pkg.Name(), "artifact", artifact)

	return b.pkg.Package(ctx, payloadDir, b.spec)
}

// verify confirms the artifact exists and is non-empty. A zero exit from the
// packager with no artifact produced is an integrity failure, never silently
// accepted.
func (b *Builder) verify() (*build.BuildResult, error) {
	artifact := b.pkg.ArtifactPath(b.spec)

	info, err := os.Stat(artifact)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &build.IntegrityError{
			ArtifactPath: artifact,
			Reason:       "packager reported success but no artifact was produced",
		}
	} else if err != nil {
		return nil, &build.IntegrityError{
			ArtifactPath: artifact,
			Reason:       fmt.Sprintf("artifact not readable: %v", err),
		}
	}

	if info.Size() == 0 {
		return nil, &build.IntegrityError{
			ArtifactPath: artifact,
			Reason:       "produced artifact is empty",
		}
	}

	return build.Succeeded(artifact, info.Size()), nil
}

// fail logs the first fatal cause and produces the FAILED result.
func (b *Builder) fail(ctx context.Context, stage build.Stage, err error) *build.BuildResult {
	logger.ErrorKV(ctx, "Pipeline failed", "stage", string(stage), "error", err)

	return build.Failed(stage, err)
}
