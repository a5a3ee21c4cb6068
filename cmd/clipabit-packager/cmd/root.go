package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipabit/plugin-packager/internal/config"
	"github.com/clipabit/plugin-packager/internal/service/builder"
	"github.com/clipabit/plugin-packager/internal/version"
)

var (
	// configPath to the build configuration YAML file.
	configPath string

	// packagerKind overrides the configured artifact format.
	packagerKind string

	// rootCmd represents the base command for building installer artifacts.
	rootCmd = &cobra.Command{
		Use:   "clipabit-packager",
		Short: "Package the ClipABit plugin into an installer artifact",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &builder.Options{
				ConfigPath:   configPath,
				PackagerKind: packagerKind,
			}

			return builder.Run(ctx, options)
		},
	}
)

// Execute runs the clipabit-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to build configuration file")
	rootCmd.Flags().StringVarP(&packagerKind, "packager", "p", "", "artifact format: auto, pkgbuild, pyinstaller or archive")
}
