package photodna

import (
	"testing"

	"go_photodna/photodnaruntime"
)

func TestHashOptionsEncode(t *testing.T) {
	base := DefaultHashOptions().Encode()
	if base != photodnaruntime.OptionEdgeV2 {
		t.Errorf("default options = %#x, want only the EdgeV2 bits %#x", base, photodnaruntime.OptionEdgeV2)
	}

	tests := []struct {
		name string
		opts HashOptions
		bit  uint32
	}{
		{"remove border", DefaultHashOptions().WithRemoveBorder(true), photodnaruntime.OptionRemoveBorder},
		{"no rotate flip", DefaultHashOptions().WithNoRotateFlip(true), photodnaruntime.OptionNoRotateFlip},
		{"check memory", DefaultHashOptions().WithCheckMemory(true), photodnaruntime.OptionCheckMemory},
		{"verbose", DefaultHashOptions().WithVerbose(true), photodnaruntime.OptionVerbose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := tt.opts.Encode() ^ base; diff != tt.bit {
				t.Errorf("flag added %#x, want exactly %#x", diff, tt.bit)
			}
		})
	}
}

func TestPixelLayoutBits(t *testing.T) {
	tests := []struct {
		format PixelFormat
		bits   uint32
	}{
		{PixelFormatRGB, 0x000},
		{PixelFormatBGR, 0x000},
		{PixelFormatRGBA, 0x100},
		{PixelFormatBGRA, 0x100},
		{PixelFormatARGB, 0x200},
		{PixelFormatABGR, 0x200},
		{PixelFormatCMYK, 0x300},
		{PixelFormatGray8, 0x400},
		{PixelFormatGray32, 0x500},
		{PixelFormatYCbCr, 0x600},
		{PixelFormatRGBAPremultiplied, 0x700},
		{PixelFormatYUV420P, 0x800},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got := DefaultHashOptions().WithPixelFormat(tt.format).Encode() & photodnaruntime.OptionPixelLayoutMask
			if got != tt.bits {
				t.Errorf("layout bits = %#x, want %#x", got, tt.bits)
			}
		})
	}
}

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   int
	}{
		{PixelFormatRGB, 3},
		{PixelFormatBGR, 3},
		{PixelFormatYCbCr, 3},
		{PixelFormatRGBA, 4},
		{PixelFormatRGBAPremultiplied, 4},
		{PixelFormatBGRA, 4},
		{PixelFormatARGB, 4},
		{PixelFormatABGR, 4},
		{PixelFormatCMYK, 4},
		{PixelFormatGray32, 4},
		{PixelFormatGray8, 1},
		{PixelFormatYUV420P, 2},
	}

	for _, tt := range tests {
		if got := tt.format.BytesPerPixel(); got != tt.want {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestParsePixelFormat(t *testing.T) {
	for _, p := range PixelFormats() {
		got, err := ParsePixelFormat(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePixelFormat(%q) = %v, %v", p.String(), got, err)
		}
	}

	if got, err := ParsePixelFormat(" GREY8 "); err != nil || got != PixelFormatGray8 {
		t.Errorf("ParsePixelFormat(GREY8) = %v, %v", got, err)
	}
	if _, err := ParsePixelFormat("hsv"); err == nil {
		t.Error("unknown format should fail")
	}
	if len(PixelFormats()) != 12 {
		t.Errorf("PixelFormats() has %d entries, want 12", len(PixelFormats()))
	}
}

func TestGeneratorOptions(t *testing.T) {
	opts := DefaultGeneratorOptions()
	if opts.MaxThreads != DefaultMaxThreads {
		t.Errorf("MaxThreads = %d", opts.MaxThreads)
	}
	if got := opts.WithMaxThreads(0).MaxThreads; got != 1 {
		t.Errorf("WithMaxThreads(0) = %d, want 1", got)
	}
	if got := (GeneratorOptions{MaxThreads: -3}).maxThreads(); got != 1 {
		t.Errorf("maxThreads() = %d, want 1", got)
	}
	if got := opts.WithLibraryDir("/opt/photodna").LibraryDir; got != "/opt/photodna" {
		t.Errorf("LibraryDir = %q", got)
	}
}

func TestLoadGeneratorOptions(t *testing.T) {
	t.Setenv(EnvLibraryDir, "/opt/sdk")
	t.Setenv(EnvLibraryPath, "")
	t.Setenv(EnvMaxThreads, "0")

	opts := LoadGeneratorOptions()
	if opts.LibraryDir != "/opt/sdk" {
		t.Errorf("LibraryDir = %q", opts.LibraryDir)
	}
	if opts.MaxThreads != 1 {
		t.Errorf("MaxThreads = %d, want clamp to 1", opts.MaxThreads)
	}

	t.Setenv(EnvMaxThreads, "not-a-number")
	if got := LoadGeneratorOptions().MaxThreads; got != DefaultMaxThreads {
		t.Errorf("malformed MaxThreads = %d, want default", got)
	}
}
