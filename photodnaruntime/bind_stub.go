//go:build nonative || !(darwin || (linux && (amd64 || arm64 || (386 && cgo))) || windows)

// Stub loader for builds without native support.
// Build with: go build -tags nonative

package photodnaruntime

// NativeSupport reports whether this build can load the native library.
const NativeSupport = false

func openLibrary(path string) (uintptr, error) {
	return 0, ErrNativeUnavailable
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	return 0, ErrNativeUnavailable
}

func closeLibrary(handle uintptr) error {
	return nil
}

func bindSymbol(fn any, addr uintptr) error {
	return ErrNativeUnavailable
}
