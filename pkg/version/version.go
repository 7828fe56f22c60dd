// Package version reports which telechat build is running. Release builds
// stamp it through the linker:
//
//	go build -ldflags "-X github.com/NicolasHaas/telechat/pkg/version.tag=v1.0.0
//	  -X github.com/NicolasHaas/telechat/pkg/version.commit=abc1234
//	  -X github.com/NicolasHaas/telechat/pkg/version.date=2026-01-01"
//
// Unstamped builds fall back to the VCS revision recorded by the Go
// toolchain, and to "dev" when there is none.
package version

import "runtime/debug"

// Name is the program name shown in greetings and --version output.
const Name = "telechat"

const unknown = "unknown"

// Set by -ldflags "-X ...".
var (
	tag    = ""
	commit = unknown
	date   = unknown
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// revision returns the linker-stamped commit, else the first 7 characters
// of the toolchain's vcs.revision, else "".
func revision() string {
	if commit != unknown {
		return commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 7 {
				return s.Value[:7]
			}
			return s.Value
		}
	}
	return ""
}

// String is the short version: the tag, else the commit, else "dev".
func String() string {
	if tag != "" {
		return tag
	}
	if rev := revision(); rev != "" {
		return rev
	}
	return "dev"
}

// Full adds commit and build date to String when they are known.
func Full() string {
	rev := revision()
	switch {
	case tag != "" && rev != "":
		return tag + " (" + rev + ") built " + date
	case tag != "":
		return tag + " built " + date
	case rev != "":
		return rev + " built " + date
	default:
		return "dev"
	}
}

// Banner is the form shown to connected users, e.g. "telechat v0.2.0".
func Banner() string {
	return Name + " " + String()
}
