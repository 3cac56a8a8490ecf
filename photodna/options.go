package photodna

import "go_photodna/photodnaruntime"

// HashOptions selects the pixel layout and behavior flags for one hash call.
// The zero value is RGB with no flags.
type HashOptions struct {
	PixelFormat  PixelFormat
	RemoveBorder bool
	NoRotateFlip bool
	Verbose      bool
	CheckMemory  bool
}

// DefaultHashOptions returns RGB with no flags.
func DefaultHashOptions() HashOptions {
	return HashOptions{PixelFormat: PixelFormatRGB}
}

func (o HashOptions) WithPixelFormat(p PixelFormat) HashOptions {
	o.PixelFormat = p
	return o
}

func (o HashOptions) WithRemoveBorder(v bool) HashOptions {
	o.RemoveBorder = v
	return o
}

func (o HashOptions) WithNoRotateFlip(v bool) HashOptions {
	o.NoRotateFlip = v
	return o
}

func (o HashOptions) WithVerbose(v bool) HashOptions {
	o.Verbose = v
	return o
}

func (o HashOptions) WithCheckMemory(v bool) HashOptions {
	o.CheckMemory = v
	return o
}

// Encode packs the options into the native option word: the EdgeV2 binary hash format,
// the pixel-layout bits and the behavior bits, OR-ed together.
func (o HashOptions) Encode() uint32 {
	opts := photodnaruntime.OptionEdgeV2 | o.PixelFormat.layoutBits()
	if o.RemoveBorder {
		opts |= photodnaruntime.OptionRemoveBorder
	}
	if o.NoRotateFlip {
		opts |= photodnaruntime.OptionNoRotateFlip
	}
	if o.CheckMemory {
		opts |= photodnaruntime.OptionCheckMemory
	}
	if o.Verbose {
		opts |= photodnaruntime.OptionVerbose
	}
	return opts
}

// DefaultMaxThreads is the native worker pool size used when none is configured.
const DefaultMaxThreads = 4

// GeneratorOptions configures NewGenerator.
type GeneratorOptions struct {
	// MaxThreads bounds the library's internal worker pool. Values below 1 become 1.
	MaxThreads int

	// LibraryDir is the directory holding the native library. Empty means
	// PHOTODNA_LIBRARY_DIR.
	LibraryDir string

	// LibraryPath overrides the computed library file path.
	LibraryPath string

	// Observer, when set, is told about every hash operation.
	Observer Observer
}

// DefaultGeneratorOptions returns four threads and no directory override.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{MaxThreads: DefaultMaxThreads}
}

func (o GeneratorOptions) WithMaxThreads(n int) GeneratorOptions {
	o.MaxThreads = max(n, 1)
	return o
}

func (o GeneratorOptions) WithLibraryDir(dir string) GeneratorOptions {
	o.LibraryDir = dir
	return o
}

func (o GeneratorOptions) WithObserver(obs Observer) GeneratorOptions {
	o.Observer = obs
	return o
}

func (o GeneratorOptions) maxThreads() int {
	return max(o.MaxThreads, 1)
}
