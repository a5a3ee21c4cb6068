// Package packager turns a staged payload plus spec metadata into a single
// distributable artifact.
//
// Implementations wrap exactly one external tool invocation each (pkgbuild
// on macOS, pyinstaller on Windows) or none at all (the portable tar.gz
// archive). Tool paths are injected, never discovered from the environment.
package packager
