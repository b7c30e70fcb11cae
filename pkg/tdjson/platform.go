package tdjson

import (
	"fmt"
	"runtime"
)

// Platform is a normalized OS family used to pick the default library file.
type Platform int

const (
	PlatformUnsupported Platform = iota
	PlatformDarwin
	PlatformWindows
	PlatformLinux
)

var platformNames = [...]string{
	PlatformUnsupported: "unsupported",
	PlatformDarwin:      "darwin",
	PlatformWindows:     "windows",
	PlatformLinux:       "linux",
}

func (p Platform) String() string {
	if int(p) >= 0 && int(p) < len(platformNames) {
		return platformNames[p]
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

var defaultLibraryNames = map[Platform]string{
	PlatformDarwin:  "libtdjson.dylib",
	PlatformWindows: "tdjson.dll",
	PlatformLinux:   "libtdjson.so",
}

// PlatformFromGOOS maps a GOOS value onto its OS family.
func PlatformFromGOOS(goos string) Platform {
	switch goos {
	case "darwin", "ios":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	case "linux", "android":
		return PlatformLinux
	}
	return PlatformUnsupported
}

// CurrentPlatform returns the OS family of the running binary.
func CurrentPlatform() Platform {
	return PlatformFromGOOS(runtime.GOOS)
}

// DefaultLibraryName returns the file name tdjson is usually shipped under on
// p. The name is resolved by the system loader's search path.
func DefaultLibraryName(p Platform) (string, error) {
	name, ok := defaultLibraryNames[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
	return name, nil
}
