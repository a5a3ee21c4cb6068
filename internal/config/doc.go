// Package config defines the build configuration consumed by the packaging
// pipeline and provides helpers to load, validate and save it in YAML format.
//
// The Config type holds the package identity, the payload source paths and
// the injected external tool locations.
package config
