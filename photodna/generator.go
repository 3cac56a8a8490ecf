package photodna

import (
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go_photodna/core"
	"go_photodna/photodnaruntime"
)

// borderSlots is the number of result records requested from border detection.
const borderSlots = 2

// BorderHashResult is the outcome of border detection.
type BorderHashResult struct {
	// Primary is the hash of the image as given.
	Primary Hash

	// Borderless is the hash after border removal; nil when no border was found.
	Borderless *Hash

	// ContentRegion is the content rectangle left after border removal; nil when no
	// border was found.
	ContentRegion *Region
}

// HasBorder reports whether a border was detected.
func (r BorderHashResult) HasBorder() bool {
	return r.Borderless != nil
}

// =============================================================================
// Generator
// =============================================================================

// Generator owns a loaded native library and one native instance. It is the only way to
// compute hashes.
//
// A Generator is safe to share between goroutines, but it issues one native call at a
// time: every call into the instance holds mu. Callers that want parallel native work open
// one Generator per goroutine. Close waits for the running call, then releases the instance
// and unloads the library, exactly once.
type Generator struct {
	lib      photodnaruntime.Bindings
	inst     photodnaruntime.Instance
	dir      string
	threads  int
	observer Observer

	mu       sync.Mutex
	closed   bool
	closeErr error

	totalOps atomic.Int64
	errorOps atomic.Int64
}

// NewGenerator loads the native library and creates an instance.
//
// The library directory comes from opts.LibraryDir, falling back to PHOTODNA_LIBRARY_DIR.
// opts.LibraryPath, when set, names the library file directly.
func NewGenerator(opts GeneratorOptions) (*Generator, error) {
	dir := opts.LibraryDir
	if dir == "" {
		dir = core.GetEnvOrDefault(EnvLibraryDir, "")
	}

	path := opts.LibraryPath
	if path == "" {
		if dir == "" {
			return nil, initFailed(EnvLibraryDir+" is not set and no library directory was given", nil)
		}
		p, err := photodnaruntime.LibraryPath(dir)
		if err != nil {
			return nil, initFailed(err.Error(), err)
		}
		path = p
	} else if dir == "" {
		dir = filepath.Dir(path)
	}

	lib, err := photodnaruntime.Open(path)
	if err != nil {
		return nil, initFailed(err.Error(), err)
	}
	return NewGeneratorWithBindings(lib, dir, opts)
}

// NewGeneratorWithBindings creates a Generator over already-loaded bindings and takes
// ownership of them. If instance creation fails the bindings are closed.
func NewGeneratorWithBindings(lib photodnaruntime.Bindings, libraryDir string, opts GeneratorOptions) (*Generator, error) {
	threads := opts.maxThreads()
	inst, err := lib.Init(libraryDir, threads)
	if err == nil && inst == 0 {
		err = photodnaruntime.ErrInitFailed
	}
	if err != nil {
		_ = lib.Close()
		return nil, initFailed(err.Error(), err)
	}

	return &Generator{
		lib:      lib,
		inst:     inst,
		dir:      libraryDir,
		threads:  threads,
		observer: opts.Observer,
	}, nil
}

// Close releases the native instance and then unloads the library. Further calls return
// the first call's result.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return g.closeErr
	}
	g.closed = true
	g.lib.Release(g.inst)
	g.inst = 0
	g.closeErr = g.lib.Close()
	return g.closeErr
}

// IsClosed reports whether Close has run.
func (g *Generator) IsClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Instance returns the native instance handle, or 0 after Close. It is only valid while
// the Generator is open.
func (g *Generator) Instance() photodnaruntime.Instance {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inst
}

// LibraryDir returns the directory the instance was initialized with.
func (g *Generator) LibraryDir() string { return g.dir }

// MaxThreads returns the native worker pool size.
func (g *Generator) MaxThreads() int { return g.threads }

// Stats returns the number of hash operations issued and how many failed.
func (g *Generator) Stats() (total, failed int64) {
	return g.totalOps.Load(), g.errorOps.Load()
}

// =============================================================================
// Introspection
// =============================================================================

// LastErrorCode returns the last status recorded by the native instance, or
// ErrorLibraryFailure after Close.
func (g *Generator) LastErrorCode() int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return photodnaruntime.ErrorLibraryFailure
	}
	return g.lib.ErrorNumber(g.inst)
}

// ErrorDescription returns the library's text for code. The second result is false for
// codes the library does not know.
func (g *Generator) ErrorDescription(code int32) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return "", false
	}
	return g.lib.ErrorString(g.inst, code)
}

// LibraryVersion returns the packed version: major in the high 16 bits, minor in the low.
func (g *Generator) LibraryVersion() int32 {
	return g.versionQuery(g.lib.Version)
}

// LibraryVersionMajor returns the library's major version number.
func (g *Generator) LibraryVersionMajor() int32 {
	return g.versionQuery(g.lib.VersionMajor)
}

// LibraryVersionMinor returns the library's minor version number.
func (g *Generator) LibraryVersionMinor() int32 {
	return g.versionQuery(g.lib.VersionMinor)
}

// LibraryVersionPatch returns the library's patch version number.
func (g *Generator) LibraryVersionPatch() int32 {
	return g.versionQuery(g.lib.VersionPatch)
}

// LibraryVersionText returns the human-readable version string.
func (g *Generator) LibraryVersionText() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return "", false
	}
	return g.lib.VersionText(g.inst)
}

func (g *Generator) versionQuery(fn func(photodnaruntime.Instance) int32) int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return 0
	}
	return fn(g.inst)
}

// =============================================================================
// Hash computation
// =============================================================================

// ComputeHashRGB hashes a tightly packed RGB image with default options.
func (g *Generator) ComputeHashRGB(image []byte, width, height int) (Hash, error) {
	return g.ComputeHash(image, width, height, DefaultHashOptions())
}

// ComputeHash hashes a tightly packed image.
func (g *Generator) ComputeHash(image []byte, width, height int, opts HashOptions) (Hash, error) {
	return g.ComputeHashWithStride(image, width, height, 0, opts)
}

// ComputeHashWithStride hashes an image whose rows are stride bytes apart. A stride of 0
// means rows are tightly packed.
func (g *Generator) ComputeHashWithStride(image []byte, width, height, stride int, opts HashOptions) (h Hash, err error) {
	start := time.Now()
	defer func() { g.observe(OpHash, width, height, opts, start, false, err) }()

	if err := validateGeometry(image, width, height, stride, opts.PixelFormat); err != nil {
		return Hash{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return Hash{}, &Error{Kind: KindClosed}
	}

	buf := make([]byte, photodnaruntime.HashSizeMax)
	rc := g.lib.EdgeHash(g.inst, image, buf, int32(width), int32(height), int32(stride), opts.Encode())
	if rc < 0 {
		return Hash{}, FromErrorCode(rc)
	}
	return hashFromBuffer(buf), nil
}

// ComputeHashSubregion hashes the rectangle region of an image.
func (g *Generator) ComputeHashSubregion(image []byte, width, height, stride int, region Region, opts HashOptions) (h Hash, err error) {
	start := time.Now()
	defer func() { g.observe(OpHashSubregion, width, height, opts, start, false, err) }()

	if err := validateGeometry(image, width, height, stride, opts.PixelFormat); err != nil {
		return Hash{}, err
	}
	if err := ValidateRegion(region, width, height); err != nil {
		return Hash{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return Hash{}, &Error{Kind: KindClosed}
	}

	buf := make([]byte, photodnaruntime.HashSizeMax)
	rc := g.lib.EdgeHashSub(g.inst, image, buf, int32(width), int32(height), int32(stride),
		int32(region.X), int32(region.Y), int32(region.W), int32(region.H), opts.Encode())
	if rc < 0 {
		return Hash{}, FromErrorCode(rc)
	}
	return hashFromBuffer(buf), nil
}

// ComputeHashWithBorderDetection hashes a tightly packed image and, when the library finds
// a border, the image with the border removed.
func (g *Generator) ComputeHashWithBorderDetection(image []byte, width, height int, opts HashOptions) (res BorderHashResult, err error) {
	start := time.Now()
	defer func() { g.observe(OpBorderDetection, width, height, opts, start, res.HasBorder(), err) }()

	if err := validateGeometry(image, width, height, 0, opts.PixelFormat); err != nil {
		return BorderHashResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return BorderHashResult{}, &Error{Kind: KindClosed}
	}

	results := photodnaruntime.NewResultBuffer(borderSlots)
	count := g.lib.EdgeHashBorder(g.inst, image, results, borderSlots,
		int32(width), int32(height), 0, opts.Encode())
	return decodeBorderResults(count, results)
}

// ComputeHashWithBorderDetectionSubregion runs border detection on the rectangle region.
func (g *Generator) ComputeHashWithBorderDetectionSubregion(image []byte, width, height, stride int, region Region, opts HashOptions) (res BorderHashResult, err error) {
	start := time.Now()
	defer func() { g.observe(OpBorderSubregion, width, height, opts, start, res.HasBorder(), err) }()

	if err := validateGeometry(image, width, height, stride, opts.PixelFormat); err != nil {
		return BorderHashResult{}, err
	}
	if err := ValidateRegion(region, width, height); err != nil {
		return BorderHashResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return BorderHashResult{}, &Error{Kind: KindClosed}
	}

	results := photodnaruntime.NewResultBuffer(borderSlots)
	count := g.lib.EdgeHashBorderSub(g.inst, image, results, borderSlots,
		int32(width), int32(height), int32(stride),
		int32(region.X), int32(region.Y), int32(region.W), int32(region.H), opts.Encode())
	return decodeBorderResults(count, results)
}

// decodeBorderResults interprets the border entry point's return value. Only 1 (no border)
// and 2 (border found) are valid success counts.
func decodeBorderResults(count int32, results []byte) (BorderHashResult, error) {
	if count < 0 {
		return BorderHashResult{}, FromErrorCode(count)
	}
	if count != 1 && count != 2 {
		return BorderHashResult{}, &Error{
			Kind:   KindProtocol,
			Code:   count,
			Detail: "border detection must report 1 or 2 results",
		}
	}

	primary, _, err := hashFromRecord(results, 0)
	if err != nil {
		return BorderHashResult{}, err
	}
	res := BorderHashResult{Primary: primary}
	if count == 1 {
		return res, nil
	}

	borderless, region, err := hashFromRecord(results, 1)
	if err != nil {
		return BorderHashResult{}, err
	}
	res.Borderless = &borderless
	res.ContentRegion = &region
	return res, nil
}

func hashFromRecord(results []byte, index int) (Hash, Region, error) {
	rec, err := photodnaruntime.DecodeResultRecord(results, index)
	if err != nil {
		return Hash{}, Region{}, &Error{Kind: KindProtocol, Detail: err.Error(), Err: err}
	}
	if rec.Result < 0 {
		return Hash{}, Region{}, FromErrorCode(rec.Result)
	}
	var h Hash
	copy(h.data[:], rec.Hash[:HashCapacity])
	h.n = HashCapacity
	return h, Region{X: int(rec.X), Y: int(rec.Y), W: int(rec.W), H: int(rec.H)}, nil
}

func hashFromBuffer(buf []byte) Hash {
	var h Hash
	copy(h.data[:], buf[:HashCapacity])
	h.n = HashCapacity
	return h
}

// validateGeometry is ValidateBuffer plus the int32 range the native ABI can carry.
func validateGeometry(image []byte, width, height, stride int, format PixelFormat) error {
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return &Error{Kind: KindInvalidDimensions, Width: width, Height: height}
	}
	if stride > math.MaxInt32 {
		return &Error{Kind: KindInvalidStride}
	}
	if width > 0 && ExpectedStride(width, stride, format) > math.MaxInt32 {
		return &Error{Kind: KindInvalidDimensions, Width: width, Height: height}
	}
	return ValidateBuffer(image, width, height, stride, format)
}

func (g *Generator) observe(op string, width, height int, opts HashOptions, start time.Time, border bool, err error) {
	g.totalOps.Add(1)
	if err != nil {
		g.errorOps.Add(1)
	}
	if g.observer == nil {
		return
	}
	g.observer.ObserveOperation(OperationEvent{
		Operation:   op,
		Width:       width,
		Height:      height,
		PixelFormat: opts.PixelFormat,
		Duration:    time.Since(start),
		BorderFound: border,
		Err:         err,
	})
}
