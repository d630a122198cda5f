// Package builder runs the downstream native build that turns the packed
// archive into the portable launcher.
//
// The build tool is started directly with an argument vector; no shell is
// involved. The target and the folder are validated again here, so the
// package is safe to call without going through the packer.
package builder
