package version

import "runtime"

// Version information set at build time via ldflags
var (
	GitHash = "dev"
	Version = "v0.0.0"
)

// GetVersion returns the release version, with the commit for dev builds
func GetVersion() string {
	if GitHash == "" || GitHash == "dev" {
		return Version + "-dev"
	}
	return Version + "+" + GitHash
}

// GetUserAgent returns the user agent string for HTTP requests. reddit asks
// for <platform>:<app id>:<version> (by /u/<user>).
func GetUserAgent() string {
	return runtime.GOOS + ":snoogoat:" + GetVersion() + " (+https://github.com/jarv/snoogoat)"
}
