package photodna

import (
	"fmt"
	"strings"

	"go_photodna/photodnaruntime"
)

// PixelFormat identifies the byte layout of an image buffer.
type PixelFormat int

const (
	PixelFormatRGB PixelFormat = iota
	PixelFormatBGR
	PixelFormatRGBA
	PixelFormatRGBAPremultiplied
	PixelFormatBGRA
	PixelFormatARGB
	PixelFormatABGR
	PixelFormatCMYK
	PixelFormatGray8
	PixelFormatGray32
	PixelFormatYCbCr
	PixelFormatYUV420P
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatRGB:               "rgb",
	PixelFormatBGR:               "bgr",
	PixelFormatRGBA:              "rgba",
	PixelFormatRGBAPremultiplied: "rgba-pm",
	PixelFormatBGRA:              "bgra",
	PixelFormatARGB:              "argb",
	PixelFormatABGR:              "abgr",
	PixelFormatCMYK:              "cmyk",
	PixelFormatGray8:             "gray8",
	PixelFormatGray32:            "gray32",
	PixelFormatYCbCr:             "ycbcr",
	PixelFormatYUV420P:           "yuv420p",
}

// BytesPerPixel returns the bytes one pixel occupies. YUV420P averages 1.5 bytes per pixel
// and is rounded up to 2.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case PixelFormatRGB, PixelFormatBGR, PixelFormatYCbCr:
		return 3
	case PixelFormatGray8:
		return 1
	case PixelFormatYUV420P:
		return 2
	default:
		return 4
	}
}

// layoutBits returns the pixel-layout bits of the option word.
func (p PixelFormat) layoutBits() uint32 {
	switch p {
	case PixelFormatRGB:
		return photodnaruntime.OptionRGB
	case PixelFormatBGR:
		return photodnaruntime.OptionBGR
	case PixelFormatRGBA:
		return photodnaruntime.OptionRGBA
	case PixelFormatRGBAPremultiplied:
		return photodnaruntime.OptionRGBAPm
	case PixelFormatBGRA:
		return photodnaruntime.OptionBGRA
	case PixelFormatARGB:
		return photodnaruntime.OptionARGB
	case PixelFormatABGR:
		return photodnaruntime.OptionABGR
	case PixelFormatCMYK:
		return photodnaruntime.OptionCMYK
	case PixelFormatGray8:
		return photodnaruntime.OptionGrey8
	case PixelFormatGray32:
		return photodnaruntime.OptionGrey32
	case PixelFormatYCbCr:
		return photodnaruntime.OptionYCbCr
	case PixelFormatYUV420P:
		return photodnaruntime.OptionYUV420P
	default:
		return photodnaruntime.OptionRGB
	}
}

// String returns the lowercase name used in configuration and CLI flags.
func (p PixelFormat) String() string {
	if name, ok := pixelFormatNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(p))
}

// ParsePixelFormat parses a name produced by String. Parsing is case-insensitive and
// accepts "grey" for "gray".
func ParsePixelFormat(name string) (PixelFormat, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "grey", "gray")
	for p, s := range pixelFormatNames {
		if s == n {
			return p, nil
		}
	}
	return PixelFormatRGB, fmt.Errorf("unknown pixel format %q", name)
}

// PixelFormats lists every format in declaration order.
func PixelFormats() []PixelFormat {
	out := make([]PixelFormat, 0, len(pixelFormatNames))
	for p := PixelFormatRGB; p <= PixelFormatYUV420P; p++ {
		out = append(out, p)
	}
	return out
}
