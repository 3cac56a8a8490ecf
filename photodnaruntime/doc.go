// Package photodnaruntime loads the PhotoDNA Edge Hash Generator shared library and exposes
// its exported entry points as typed Go calls.
//
// The package is the unsafe half of the hashing stack. It knows the native ABI (export
// names, option bits, status codes, the packed result record) but performs no geometry
// validation; callers are expected to go through package photodna, which validates every
// buffer before it reaches this layer.
//
// # Public API
//
//   - Open(path string) (*Library, error)
//   - (*Library) Init(libraryDir string, maxThreads int) (Instance, error)
//   - (*Library) Release(Instance)
//   - (*Library) EdgeHash / EdgeHashSub / EdgeHashBorder / EdgeHashBorderSub
//   - (*Library) Close() error
//
// # Quick Start
//
//	path, err := photodnaruntime.LibraryPath("/opt/photodna/lib")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lib, err := photodnaruntime.Open(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Close()
//
//	inst, err := lib.Init("/opt/photodna/lib", 4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Release(inst)
//
// # Library Naming
//
// The library file name is fixed per operating system and CPU architecture; see
// LibraryFilename. The directory is supplied by configuration (PHOTODNA_LIBRARY_DIR).
//
// # Build Tags
//
//   - Default on darwin, windows and linux/amd64, linux/arm64: symbols are bound at
//     runtime with purego (no cgo toolchain required). Windows loads through
//     golang.org/x/sys/windows.
//   - linux/386 needs cgo (CGO_ENABLED=1), since purego has no cgo-free runtime there.
//     Without cgo the stub below is selected.
//   - nonative (or any other platform): Open always fails with ErrNativeUnavailable.
//     Everything else in the package (constants, record codec, filename table) still works.
//
// # Error Handling
//
// Loader failures are reported as *LoadError wrapping one of the sentinel errors
// (ErrLibraryOpen, ErrSymbolMissing, ErrInitFailed, ErrNativeUnavailable). Native hash calls
// return the raw int32 status; mapping to a structured error happens in package photodna.
//
// # Thread Safety
//
// A Library is immutable after Open apart from its closed flag. Native calls on a closed
// Library return ErrorLibraryFailure without touching unloaded memory.
package photodnaruntime
