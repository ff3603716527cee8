package domain

import "runtime"

// Platform identifies an operating system / architecture pair using the
// conda-style naming the lock file uses.
type Platform string

// Supported platforms.
const (
	PlatformLinux64  Platform = "linux-64"
	PlatformLinuxA64 Platform = "linux-aarch64"
	PlatformOsx64    Platform = "osx-64"
	PlatformOsxArm64 Platform = "osx-arm64"
	PlatformWin64    Platform = "win-64"
)

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return PlatformOsxArm64
		}
		return PlatformOsx64
	case "windows":
		return PlatformWin64
	default:
		if runtime.GOARCH == "arm64" {
			return PlatformLinuxA64
		}
		return PlatformLinux64
	}
}
