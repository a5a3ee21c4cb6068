package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipabit/plugin-packager/internal/service/installer"
	"github.com/clipabit/plugin-packager/internal/version"
)

var (
	// systemScope installs for all users instead of the current one.
	systemScope bool

	// pythonPath overrides the interpreter used for dependency handling.
	pythonPath string

	// skipDependencies disables pip installation and the dependency check.
	skipDependencies bool

	// targetDir overrides the detected DaVinci Resolve scripts directory.
	targetDir string

	// rootCmd represents the base command for installing a built payload.
	rootCmd = &cobra.Command{
		Use:   "clipabit-installer [payload-dir]",
		Short: "Install the ClipABit plugin payload into DaVinci Resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				PayloadDir:       args[0],
				SystemScope:      systemScope,
				PythonPath:       pythonPath,
				SkipDependencies: skipDependencies,
				TargetDir:        targetDir,
			}

			return installer.Run(ctx, options)
		},
	}
)

// Execute runs the clipabit-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().BoolVar(&systemScope, "system", false, "install for all users")
	rootCmd.Flags().StringVar(&pythonPath, "python", "", "path to the Python interpreter")
	rootCmd.Flags().BoolVar(&skipDependencies, "skip-deps", false, "skip Python dependency installation")
	rootCmd.Flags().StringVar(&targetDir, "target", "", "override the DaVinci Resolve scripts directory")
}
