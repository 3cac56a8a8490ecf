package photodnaruntime

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Instance is the opaque handle returned by EdgeHashGeneratorInit. Zero is the null handle.
type Instance uintptr

// Bindings is the set of native entry points a generator drives. *Library implements it
// against the real shared library; runtimetest.Fake implements it in memory.
//
// Buffers are passed as slices. Implementations hand the address of the first element to
// native code, so callers must have validated lengths and geometry beforehand.
type Bindings interface {
	Init(libraryDir string, maxThreads int) (Instance, error)
	Release(inst Instance)
	ErrorNumber(inst Instance) int32
	ErrorString(inst Instance, code int32) (string, bool)
	Version(inst Instance) int32
	VersionMajor(inst Instance) int32
	VersionMinor(inst Instance) int32
	VersionPatch(inst Instance) int32
	VersionText(inst Instance) (string, bool)
	EdgeHash(inst Instance, image, hash []byte, width, height, stride int32, options uint32) int32
	EdgeHashSub(inst Instance, image, hash []byte, width, height, stride, x, y, w, h int32, options uint32) int32
	EdgeHashBorder(inst Instance, image, results []byte, maxResults, width, height, stride int32, options uint32) int32
	EdgeHashBorderSub(inst Instance, image, results []byte, maxResults, width, height, stride, x, y, w, h int32, options uint32) int32
	Close() error
}

// functionTable holds the resolved native entry points. It is filled once by Open and is
// only valid while the owning Library is loaded.
type functionTable struct {
	init              func(libraryDir string, maxThreads int32) uintptr
	release           func(inst uintptr)
	errorNumber       func(inst uintptr) int32
	errorString       func(inst uintptr, code int32) unsafe.Pointer
	version           func(inst uintptr) int32
	versionMajor      func(inst uintptr) int32
	versionMinor      func(inst uintptr) int32
	versionPatch      func(inst uintptr) int32
	versionText       func(inst uintptr) unsafe.Pointer
	edgeHash          func(inst uintptr, image, hash unsafe.Pointer, width, height, stride int32, options uint32) int32
	edgeHashBorder    func(inst uintptr, image, results unsafe.Pointer, maxResults, width, height, stride int32, options uint32) int32
	edgeHashBorderSub func(inst uintptr, image, results unsafe.Pointer, maxResults, width, height, stride, x, y, w, h int32, options uint32) int32
	edgeHashSub       func(inst uintptr, image, hash unsafe.Pointer, width, height, stride, x, y, w, h int32, options uint32) int32
}

type symbolBinding struct {
	name string
	fn   any
}

func (t *functionTable) bindings() []symbolBinding {
	return []symbolBinding{
		{"EdgeHashGeneratorInit", &t.init},
		{"EdgeHashGeneratorRelease", &t.release},
		{"GetErrorNumber", &t.errorNumber},
		{"GetErrorString", &t.errorString},
		{"LibraryVersion", &t.version},
		{"LibraryVersionMajor", &t.versionMajor},
		{"LibraryVersionMinor", &t.versionMinor},
		{"LibraryVersionPatch", &t.versionPatch},
		{"LibraryVersionText", &t.versionText},
		{"PhotoDnaEdgeHash", &t.edgeHash},
		{"PhotoDnaEdgeHashBorder", &t.edgeHashBorder},
		{"PhotoDnaEdgeHashBorderSub", &t.edgeHashBorderSub},
		{"PhotoDnaEdgeHashSub", &t.edgeHashSub},
	}
}

// SymbolNames lists the exports Open requires, in resolution order.
func SymbolNames() []string {
	var t functionTable
	b := t.bindings()
	names := make([]string, len(b))
	for i, s := range b {
		names[i] = s.name
	}
	return names
}

// Library owns a loaded native module together with its resolved function table.
type Library struct {
	path   string
	handle uintptr
	fns    functionTable

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// Open loads the shared library at path and resolves every required export.
// On any failure the module is unloaded again and nothing is retained.
func Open(path string) (*Library, error) {
	if path == "" || strings.ContainsRune(path, 0) {
		return nil, &LoadError{Op: "open", Path: path, Err: ErrInvalidPath}
	}

	handle, err := openLibrary(path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrLibraryOpen, err)}
	}

	lib := &Library{path: path, handle: handle}
	for _, sym := range lib.fns.bindings() {
		addr, err := lookupSymbol(handle, sym.name)
		if err == nil && addr == 0 {
			err = errors.New("null address")
		}
		if err == nil {
			err = bindSymbol(sym.fn, addr)
		}
		if err != nil {
			_ = closeLibrary(handle)
			return nil, &LoadError{
				Op:     "resolve",
				Path:   path,
				Symbol: sym.name,
				Err:    fmt.Errorf("%w: %w", ErrSymbolMissing, err),
			}
		}
	}

	return lib, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// IsClosed reports whether Close has been called.
func (l *Library) IsClosed() bool {
	return l.closed.Load()
}

// Init creates a native instance. maxThreads below 1 is raised to 1.
func (l *Library) Init(libraryDir string, maxThreads int) (Instance, error) {
	if l.closed.Load() {
		return 0, &LoadError{Op: "init", Path: libraryDir, Err: ErrLibraryClosed}
	}
	if strings.ContainsRune(libraryDir, 0) {
		return 0, &LoadError{Op: "init", Path: libraryDir, Err: ErrInvalidPath}
	}
	if maxThreads < 1 {
		maxThreads = 1
	}
	inst := l.fns.init(libraryDir, int32(maxThreads))
	if inst == 0 {
		return 0, &LoadError{Op: "init", Path: libraryDir, Err: ErrInitFailed}
	}
	return Instance(inst), nil
}

// Release destroys a native instance. Null handles are ignored.
func (l *Library) Release(inst Instance) {
	if inst == 0 || l.closed.Load() {
		return
	}
	l.fns.release(uintptr(inst))
}

// ErrorNumber returns the last status code recorded by the instance.
func (l *Library) ErrorNumber(inst Instance) int32 {
	if l.closed.Load() {
		return ErrorLibraryFailure
	}
	return l.fns.errorNumber(uintptr(inst))
}

// ErrorString returns the library's own text for code. The second result is false when the
// library returns no text or text that is not valid UTF-8.
func (l *Library) ErrorString(inst Instance, code int32) (string, bool) {
	if l.closed.Load() {
		return "", false
	}
	return goString(l.fns.errorString(uintptr(inst), code))
}

func (l *Library) Version(inst Instance) int32 {
	if l.closed.Load() {
		return 0
	}
	return l.fns.version(uintptr(inst))
}

func (l *Library) VersionMajor(inst Instance) int32 {
	if l.closed.Load() {
		return 0
	}
	return l.fns.versionMajor(uintptr(inst))
}

func (l *Library) VersionMinor(inst Instance) int32 {
	if l.closed.Load() {
		return 0
	}
	return l.fns.versionMinor(uintptr(inst))
}

func (l *Library) VersionPatch(inst Instance) int32 {
	if l.closed.Load() {
		return 0
	}
	return l.fns.versionPatch(uintptr(inst))
}

func (l *Library) VersionText(inst Instance) (string, bool) {
	if l.closed.Load() {
		return "", false
	}
	return goString(l.fns.versionText(uintptr(inst)))
}

// EdgeHash computes the hash of the whole image into hash.
func (l *Library) EdgeHash(inst Instance, image, hash []byte, width, height, stride int32, options uint32) int32 {
	if l.closed.Load() {
		return ErrorLibraryFailure
	}
	if len(image) == 0 || len(hash) < HashSizeForOptions(options) {
		return ErrorBadArgument
	}
	rc := l.fns.edgeHash(uintptr(inst), unsafe.Pointer(&image[0]), unsafe.Pointer(&hash[0]),
		width, height, stride, options)
	runtime.KeepAlive(image)
	runtime.KeepAlive(hash)
	return rc
}

// EdgeHashSub computes the hash of the rectangle (x, y, w, h) of the image into hash.
func (l *Library) EdgeHashSub(inst Instance, image, hash []byte, width, height, stride, x, y, w, h int32, options uint32) int32 {
	if l.closed.Load() {
		return ErrorLibraryFailure
	}
	if len(image) == 0 || len(hash) < HashSizeForOptions(options) {
		return ErrorBadArgument
	}
	rc := l.fns.edgeHashSub(uintptr(inst), unsafe.Pointer(&image[0]), unsafe.Pointer(&hash[0]),
		width, height, stride, x, y, w, h, options)
	runtime.KeepAlive(image)
	runtime.KeepAlive(hash)
	return rc
}

// EdgeHashBorder runs border detection and writes up to maxResults records into results.
// It returns the number of records written or a negative status code.
func (l *Library) EdgeHashBorder(inst Instance, image, results []byte, maxResults, width, height, stride int32, options uint32) int32 {
	if l.closed.Load() {
		return ErrorLibraryFailure
	}
	if len(image) == 0 || maxResults < 1 || len(results) < int(maxResults)*ResultRecordSize {
		return ErrorBadArgument
	}
	rc := l.fns.edgeHashBorder(uintptr(inst), unsafe.Pointer(&image[0]), unsafe.Pointer(&results[0]),
		maxResults, width, height, stride, options)
	runtime.KeepAlive(image)
	runtime.KeepAlive(results)
	return rc
}

// EdgeHashBorderSub is EdgeHashBorder restricted to the rectangle (x, y, w, h).
func (l *Library) EdgeHashBorderSub(inst Instance, image, results []byte, maxResults, width, height, stride, x, y, w, h int32, options uint32) int32 {
	if l.closed.Load() {
		return ErrorLibraryFailure
	}
	if len(image) == 0 || maxResults < 1 || len(results) < int(maxResults)*ResultRecordSize {
		return ErrorBadArgument
	}
	rc := l.fns.edgeHashBorderSub(uintptr(inst), unsafe.Pointer(&image[0]), unsafe.Pointer(&results[0]),
		maxResults, width, height, stride, x, y, w, h, options)
	runtime.KeepAlive(image)
	runtime.KeepAlive(results)
	return rc
}

// Close unloads the library. Instances created from it must be released first.
// Calling Close more than once returns the result of the first call.
func (l *Library) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		if err := closeLibrary(l.handle); err != nil {
			l.closeErr = &LoadError{Op: "close", Path: l.path, Err: err}
		}
	})
	return l.closeErr
}

var _ Bindings = (*Library)(nil)
