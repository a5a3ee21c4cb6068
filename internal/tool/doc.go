// Package tool wraps synchronous invocations of external executables.
//
// The Runner interface is the only way services talk to packaging and
// interpreter binaries: paths are injected by configuration, probes are
// bounded by timeouts, and tests substitute fakes.
package tool
