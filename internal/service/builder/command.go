package builder

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/clipabit/plugin-packager/internal/config"
	"github.com/clipabit/plugin-packager/internal/logger"
	"github.com/clipabit/plugin-packager/internal/packager"
	"github.com/clipabit/plugin-packager/internal/staging"
	"github.com/clipabit/plugin-packager/internal/tool"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is the path to the build configuration YAML (defaults to clipabit-packager.yaml).
	ConfigPath string
	// PackagerKind overrides the configured packager (auto, pkgbuild, pyinstaller, archive).
	PackagerKind string
}

var errBuildFailed = errors.New("build failed")

// Run executes the packaging pipeline from configuration and is the public
// entry point for the CLI. It returns a non-nil error for any failed run so
// the process exits non-zero.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "clipabit-packager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	kind := opts.PackagerKind
	if kind == "" {
		kind = cfg.Packager
	}

	runner := tool.NewExecRunner()

	pkg, err := packager.ByName(kind, runtime.GOOS, runner, packager.ToolPaths{
		PkgBuild:    cfg.Tools.PkgBuild,
		PyInstaller: cfg.Tools.PyInstaller,
		ScriptsDir:  cfg.Tools.ScriptsDir,
	})
	if err != nil {
		return err
	}

	b := New(cfg.Spec(), staging.New(cfg.StagingDir), pkg, runner)

	result := b.Build(ctx)
	if !result.Success {
		return fmt.Errorf("%w in stage %s: %s", errBuildFailed, result.FailedStage, result.ErrorMessage)
	}

	logger.InfoKV(ctx, "Packaging completed",
		"artifact", result.ArtifactPath, "size_bytes", result.SizeBytes)

	return nil
}
