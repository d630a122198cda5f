// Package version exposes build metadata of the packer binary.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." by the
// release build and keep placeholder values in local builds.
package version
