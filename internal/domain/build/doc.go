// Package build contains core domain types for the packaging pipeline.
//
// It defines PackageSpec (what to ship), BuildResult (the outcome of one
// run), the forward-only Stage machine, and the typed error taxonomy shared
// by the builder and installer services.
package build
