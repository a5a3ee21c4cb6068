// Package builder runs the packaging pipeline that turns plugin sources into
// a platform installer artifact.
//
// The pipeline is a single linear procedure with four stages: preflight the
// external tools, stage the payload, invoke the packager, verify the output.
// Each run owns its staging path exclusively; concurrent runs sharing one
// staging directory are not supported.
package builder
