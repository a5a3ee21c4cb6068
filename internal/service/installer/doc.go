// Package installer places a built payload into the DaVinci Resolve scripts
// directory.
//
// It checks the host and Python prerequisites, installs the plugin's pip
// dependencies, applies every file with checksum validation against the
// payload manifest, verifies entry points and records a receipt. Installation
// to the stated location works without elevated privileges beyond what the
// location itself requires.
package installer
