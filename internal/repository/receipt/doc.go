// Package receipt persists a JSON record of the last completed installation
// inside the installed plugin directory.
package receipt
