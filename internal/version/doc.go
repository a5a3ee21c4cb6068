// Package version exposes build metadata injected at link time and a helper
// to attach a `version` subcommand to Cobra roots.
package version
