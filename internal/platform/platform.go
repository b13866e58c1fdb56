// Package platform identifies the operating system family the agent runs on.
package platform

import (
	"errors"
	"runtime"
)

// Platform is an OS family with its own set of diagnostic tools.
type Platform string

const (
	Windows     Platform = "windows"
	Linux       Platform = "linux"
	MacOS       Platform = "macos"
	Unsupported Platform = "unsupported"
)

// ErrUnsupported is returned when the running OS has no collection strategy.
var ErrUnsupported = errors.New("unsupported platform")

// Detect returns the platform of the running process.
func Detect() Platform {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a GOOS value to a Platform.
func FromGOOS(goos string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	default:
		return Unsupported
	}
}

// Supported reports whether p has a collection strategy.
func (p Platform) Supported() bool {
	return p == Windows || p == Linux || p == MacOS
}

func (p Platform) String() string {
	return string(p)
}

// Arch returns the machine architecture in the form the OS tools report it.
func Arch() string {
	return NormalizeArch(runtime.GOARCH)
}

// NormalizeArch converts a GOARCH value to the uname-style name.
func NormalizeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return goarch
	}
}
