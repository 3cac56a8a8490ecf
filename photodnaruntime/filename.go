package photodnaruntime

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// LibraryFilename returns the file name of the native library for an operating system and
// CPU architecture, using Go's GOOS/GOARCH spelling.
func LibraryFilename(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		switch goarch {
		case "amd64":
			return "libEdgeHashGenerator." + LibraryVersion + ".dll", nil
		case "arm64":
			return "libEdgeHashGenerator-arm64." + LibraryVersion + ".dll", nil
		case "386":
			return "libEdgeHashGenerator-x86." + LibraryVersion + ".dll", nil
		}
	case "linux":
		switch goarch {
		case "amd64":
			return "libEdgeHashGenerator.so." + LibraryVersion, nil
		case "arm64":
			return "libEdgeHashGenerator-arm64.so." + LibraryVersion, nil
		case "386":
			return "libEdgeHashGenerator-x86.so." + LibraryVersion, nil
		}
	case "darwin":
		if goarch == "arm64" {
			return "libEdgeHashGenerator-arm64-macos.so." + LibraryVersion, nil
		}
		return "libEdgeHashGenerator-macos.so." + LibraryVersion, nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
}

// DefaultLibraryFilename returns the library file name for the running platform.
func DefaultLibraryFilename() (string, error) {
	return LibraryFilename(runtime.GOOS, runtime.GOARCH)
}

// LibraryPath joins dir with the library file name for the running platform.
func LibraryPath(dir string) (string, error) {
	name, err := DefaultLibraryFilename()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
