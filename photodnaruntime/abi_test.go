package photodnaruntime

import "testing"

func TestHashSizeForOptions(t *testing.T) {
	tests := []struct {
		name    string
		options uint32
		want    int
	}{
		{"edge v2", OptionEdgeV2, HashSizeEdgeV2},
		{"edge v2 base64", OptionEdgeV2Base64, HashSizeEdgeV2Base64},
		{"no format bits", 0, HashSizeEdgeV2},
		{"base64 with pixel and flags", OptionEdgeV2Base64 | OptionRGBA | OptionRemoveBorder, HashSizeEdgeV2Base64},
		{"edge v2 with verbose", OptionEdgeV2 | OptionVerbose, HashSizeEdgeV2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashSizeForOptions(tt.options); got != tt.want {
				t.Errorf("HashSizeForOptions(%#x) = %d, want %d", tt.options, got, tt.want)
			}
		})
	}
}

func TestErrorCodeDescription(t *testing.T) {
	codes := []int32{
		ErrorUnknown, ErrorMemoryAllocationFailed, ErrorLibraryFailure, ErrorMemoryAccess,
		ErrorInvalidHash, ErrorHashFormatInvalidChars, ErrorImageTooSmall, ErrorNoBorder,
		ErrorBadArgument, ErrorImageIsFlat, ErrorNoBorderImageTooSmall, ErrorSourceFormatUnknown,
		ErrorInvalidStride, ErrorInvalidSubImage,
	}

	seen := make(map[string]int32)
	for _, code := range codes {
		desc := ErrorCodeDescription(code)
		if desc == "" || desc == "Unknown error code" {
			t.Errorf("code %d has no description", code)
		}
		if prev, dup := seen[desc]; dup {
			t.Errorf("codes %d and %d share description %q", prev, code, desc)
		}
		seen[desc] = code
	}

	if got := ErrorCodeDescription(0); got != "Success" {
		t.Errorf("ErrorCodeDescription(0) = %q, want Success", got)
	}
	if got := ErrorCodeDescription(ErrorImageTooSmall); got != "Image dimension is less than 50 pixels" {
		t.Errorf("ErrorCodeDescription(ImageTooSmall) = %q", got)
	}
	for _, code := range []int32{-1, -6999, -7014, 42} {
		if got := ErrorCodeDescription(code); got != "Unknown error code" {
			t.Errorf("ErrorCodeDescription(%d) = %q, want Unknown error code", code, got)
		}
	}
}

func TestOptionBitLayout(t *testing.T) {
	// Bits 4-7 hash format, 8-12 pixel layout, 21/24/29/30 behavior flags.
	if OptionHashFormatMask != 0xf0 {
		t.Errorf("hash format mask = %#x", OptionHashFormatMask)
	}
	if OptionPixelLayoutMask != 0x1f00 {
		t.Errorf("pixel layout mask = %#x", OptionPixelLayoutMask)
	}
	flags := map[string]uint32{
		"RemoveBorder": OptionRemoveBorder,
		"NoRotateFlip": OptionNoRotateFlip,
		"CheckMemory":  OptionCheckMemory,
		"Verbose":      OptionVerbose,
	}
	wantBit := map[string]uint{"RemoveBorder": 21, "NoRotateFlip": 24, "CheckMemory": 29, "Verbose": 30}
	for name, v := range flags {
		if v != 1<<wantBit[name] {
			t.Errorf("%s = %#x, want bit %d", name, v, wantBit[name])
		}
		if v&(OptionHashFormatMask|OptionPixelLayoutMask) != 0 {
			t.Errorf("%s overlaps format or layout bits", name)
		}
	}

	// Channel order is not encoded.
	if OptionRGB != OptionBGR || OptionRGBA != OptionBGRA || OptionARGB != OptionABGR {
		t.Error("layouts differing only in channel order must share a value")
	}
	layouts := []uint32{OptionRGB, OptionRGBA, OptionARGB, OptionCMYK, OptionGrey8, OptionGrey32, OptionYCbCr, OptionRGBAPm, OptionYUV420P}
	for _, l := range layouts {
		if l&^OptionPixelLayoutMask != 0 {
			t.Errorf("layout %#x outside layout mask", l)
		}
	}
}
