// Package version retrieves the module version embedded by the Go toolchain.
package version

import "runtime/debug"

// Default is returned when the build information records no version for this
// module, notably in tests run from the module's own source tree.
const Default = "dev"

const modulePath = "github.com/tessellabs/cheney"

// Get returns the version of this module as recorded in the caller's build
// info, or Default.
func Get() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return version(info)
	}
	return Default
}

func version(info *debug.BuildInfo) string {
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Default
}
