// Package manifest produces and reads the payload manifest shipped inside
// every artifact.
//
// The manifest records release identity and a SHA-512 checksum per file so
// the installer can refuse to place corrupted payloads.
package manifest
