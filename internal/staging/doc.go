// Package staging assembles the payload directory consumed by packagers.
//
// Staging is destructive and idempotent: any previous payload for the same
// spec is removed before a fresh tree is built from the spec's source paths.
package staging
