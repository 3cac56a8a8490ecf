package photodnaruntime

// LibraryVersion is the native library release this package is built against.
const LibraryVersion = "1.05"

// Hash sizes in bytes.
const (
	HashSizeEdgeV2       = 924
	HashSizeEdgeV2Base64 = 1232
	HashSizeMax          = 1232
)

// Native status codes. Zero and positive values are success.
const (
	ErrorUnknown                = -7000
	ErrorMemoryAllocationFailed = -7001
	ErrorLibraryFailure         = -7002
	ErrorMemoryAccess           = -7003
	ErrorInvalidHash            = -7004
	ErrorHashFormatInvalidChars = -7005
	ErrorImageTooSmall          = -7006
	ErrorNoBorder               = -7007
	ErrorBadArgument            = -7008
	ErrorImageIsFlat            = -7009
	ErrorNoBorderImageTooSmall  = -7010
	ErrorSourceFormatUnknown    = -7011
	ErrorInvalidStride          = -7012
	ErrorInvalidSubImage        = -7013
)

// Option word bits. The option word is a uint32 built by OR-ing one hash format, one
// pixel layout and any number of behavior flags.
//
// Layouts that differ only in channel order share a value; the library only distinguishes
// byte count and arrangement class.
const (
	OptionHashFormatMask uint32 = 0x000000f0
	OptionEdgeV2         uint32 = 0x00000080
	OptionEdgeV2Base64   uint32 = 0x00000090

	OptionPixelLayoutMask uint32 = 0x00001f00
	OptionRGB             uint32 = 0x00000000
	OptionBGR             uint32 = 0x00000000
	OptionRGBA            uint32 = 0x00000100
	OptionBGRA            uint32 = 0x00000100
	OptionARGB            uint32 = 0x00000200
	OptionABGR            uint32 = 0x00000200
	OptionCMYK            uint32 = 0x00000300
	OptionGrey8           uint32 = 0x00000400
	OptionGrey32          uint32 = 0x00000500
	OptionYCbCr           uint32 = 0x00000600
	OptionRGBAPm          uint32 = 0x00000700
	OptionYUV420P         uint32 = 0x00000800

	OptionRemoveBorder uint32 = 0x00200000
	OptionNoRotateFlip uint32 = 0x01000000
	OptionCheckMemory  uint32 = 0x20000000
	OptionVerbose      uint32 = 0x40000000
	OptionTest         uint32 = 0x60000000
	OptionOther        uint32 = 0xffffffff
)

var errorDescriptions = map[int32]string{
	0:                           "Success",
	ErrorUnknown:                "An undetermined error occurred",
	ErrorMemoryAllocationFailed: "Failed to allocate memory",
	ErrorLibraryFailure:         "General failure within the library",
	ErrorMemoryAccess:           "System memory exception occurred",
	ErrorInvalidHash:            "Hash does not conform to PhotoDNA specifications",
	ErrorHashFormatInvalidChars: "Invalid character in Base64 or Hex hash",
	ErrorImageTooSmall:          "Image dimension is less than 50 pixels",
	ErrorNoBorder:               "No border was detected for the image",
	ErrorBadArgument:            "An invalid argument was passed to the function",
	ErrorImageIsFlat:            "Image has few or no gradients",
	ErrorNoBorderImageTooSmall:  "No border; image too small after border removal",
	ErrorSourceFormatUnknown:    "Not a known source image format",
	ErrorInvalidStride:          "Stride should be 0 or >= width in bytes",
	ErrorInvalidSubImage:        "Sub region is not within image boundaries",
}

// ErrorCodeDescription returns the static description of a native status code.
// It does not need a loaded library.
func ErrorCodeDescription(code int32) string {
	if desc, ok := errorDescriptions[code]; ok {
		return desc
	}
	return "Unknown error code"
}

// HashSizeForOptions returns the number of hash bytes the library writes for an option word.
func HashSizeForOptions(options uint32) int {
	if options&OptionHashFormatMask == OptionEdgeV2Base64 {
		return HashSizeEdgeV2Base64
	}
	return HashSizeEdgeV2
}
