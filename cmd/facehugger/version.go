package main

import (
	"runtime/debug"
	"strings"
)

// Version is set at build time via ldflags.
var Version = ""

const fallbackVersion = "0.0.0"

func resolveVersion() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := strings.TrimPrefix(info.Main.Version, "v"); v != "" && v != "(devel)" {
			return v
		}
	}
	return fallbackVersion
}
