// Package buildinfo reports the version of the threadsafety binary.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the release this source tree is tagged as. Module builds from a
// tagged release report the module version instead.
const Version = "v0.2.0"

// Info describes the running binary.
type Info struct {
	// Version is the canonical semantic version, e.g. "v0.2.0".
	Version string

	// GoVersion is the toolchain the binary was built with.
	GoVersion string

	// Witness names the race detection algorithm of the race witness.
	Witness string
}

// Get returns information about the running binary.
//
// Example:
//
//	info := buildinfo.Get()
//	fmt.Printf("threadsafety %s (%s)\n", info.Version, info.GoVersion)
func Get() Info {
	v := Version
	if bi, ok := debug.ReadBuildInfo(); ok {
		v = resolve(bi.Main.Version, Version)
	}
	return Info{
		Version:   v,
		GoVersion: runtime.Version(),
		Witness:   "FastTrack (PLDI 2009)",
	}
}

// resolve picks the module version when it is a valid semantic version and
// falls back otherwise. "(devel)" and empty versions fall back.
func resolve(module, fallback string) string {
	if !strings.HasPrefix(module, "v") {
		module = "v" + module
	}
	if semver.IsValid(module) {
		return semver.Canonical(module)
	}
	return semver.Canonical(fallback)
}

// String formats the info for the version command.
func (i Info) String() string {
	return "threadsafety version " + i.Version + " " + i.GoVersion + " (race witness: " + i.Witness + ")"
}
