// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Build identity, injected with -ldflags. A binary built without them
// reports the zero values below.
var (
	// GitCommit is the short SHA the binary was built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the working tree had local edits.
	GitDirty = "false"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// Version is the release version, bumped by hand.
	Version = "0.1.0-dev"
)

// Info formats the one-line identity shown by --version.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full extends [Info] with the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns the bare version number.
func Short() string {
	return Version
}

// Print writes "<binary> <version info>" to stdout.
func Print(binary string) {
	fmt.Printf("%s %s\n", binary, Info())
}
