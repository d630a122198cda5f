package validate

import (
	"fmt"
	"slices"
	"strings"
)

// allowedTargets is the closed set of cross-compilation triples accepted by the build step.
//
//nolint:gochecknoglobals // Read-only table.
var allowedTargets = []string{
	// Linux, glibc and musl.
	"x86_64-unknown-linux-gnu",
	"x86_64-unknown-linux-musl",
	"aarch64-unknown-linux-gnu",
	"aarch64-unknown-linux-musl",
	"armv7-unknown-linux-gnueabihf",
	"armv7-unknown-linux-musleabihf",
	"i686-unknown-linux-gnu",
	"i686-unknown-linux-musl",
	// Windows.
	"x86_64-pc-windows-msvc",
	"x86_64-pc-windows-gnu",
	"i686-pc-windows-msvc",
	"i686-pc-windows-gnu",
	"aarch64-pc-windows-msvc",
	// macOS.
	"x86_64-apple-darwin",
	"aarch64-apple-darwin",
	// Android.
	"aarch64-linux-android",
	"armv7-linux-androideabi",
	"i686-linux-android",
	"x86_64-linux-android",
	// iOS.
	"aarch64-apple-ios",
	"x86_64-apple-ios",
}

// AllowedTargets returns a copy of the target allow-list.
func AllowedTargets() []string {
	return slices.Clone(allowedTargets)
}

// Target returns target unchanged if it is on the allow-list and "" if it is empty,
// which means the host default. Anything else fails with ErrInvalidTarget.
// No trimming or case folding happens: the value must match exactly.
func Target(target string) (string, error) {
	if target == "" {
		return "", nil
	}

	if !slices.Contains(allowedTargets, target) {
		return "", fmt.Errorf("%w %q, allowed targets: %s",
			ErrInvalidTarget, target, strings.Join(allowedTargets, ", "))
	}

	return target, nil
}
