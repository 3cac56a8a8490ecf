package photodna

import (
	"errors"
	"fmt"

	"go_photodna/photodnaruntime"
)

// ErrorKind classifies a failure reported by the native library or detected locally.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota + 1
	KindMemoryAllocationFailed
	KindLibraryFailure
	KindMemoryAccess
	KindInvalidHash
	KindHashFormatInvalidCharacters
	KindImageTooSmall
	KindNoBorder
	KindBadArgument
	KindImageIsFlat
	KindNoBorderImageTooSmall
	KindSourceFormatUnknown
	KindInvalidStride
	KindInvalidSubImage
	KindUnknownErrorCode
	KindInitializationFailed
	KindBufferTooSmall
	KindInvalidDimensions
	KindProtocol
	KindClosed
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                     "Unknown",
	KindMemoryAllocationFailed:      "MemoryAllocationFailed",
	KindLibraryFailure:              "LibraryFailure",
	KindMemoryAccess:                "MemoryAccess",
	KindInvalidHash:                 "InvalidHash",
	KindHashFormatInvalidCharacters: "HashFormatInvalidCharacters",
	KindImageTooSmall:               "ImageTooSmall",
	KindNoBorder:                    "NoBorder",
	KindBadArgument:                 "BadArgument",
	KindImageIsFlat:                 "ImageIsFlat",
	KindNoBorderImageTooSmall:       "NoBorderImageTooSmall",
	KindSourceFormatUnknown:         "SourceFormatUnknown",
	KindInvalidStride:               "InvalidStride",
	KindInvalidSubImage:             "InvalidSubImage",
	KindUnknownErrorCode:            "UnknownErrorCode",
	KindInitializationFailed:        "InitializationFailed",
	KindBufferTooSmall:              "BufferTooSmall",
	KindInvalidDimensions:           "InvalidDimensions",
	KindProtocol:                    "Protocol",
	KindClosed:                      "Closed",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// nativeCodes maps every kind with a native counterpart to its status code.
var nativeCodes = map[ErrorKind]int32{
	KindUnknown:                     photodnaruntime.ErrorUnknown,
	KindMemoryAllocationFailed:      photodnaruntime.ErrorMemoryAllocationFailed,
	KindLibraryFailure:              photodnaruntime.ErrorLibraryFailure,
	KindMemoryAccess:                photodnaruntime.ErrorMemoryAccess,
	KindInvalidHash:                 photodnaruntime.ErrorInvalidHash,
	KindHashFormatInvalidCharacters: photodnaruntime.ErrorHashFormatInvalidChars,
	KindImageTooSmall:               photodnaruntime.ErrorImageTooSmall,
	KindNoBorder:                    photodnaruntime.ErrorNoBorder,
	KindBadArgument:                 photodnaruntime.ErrorBadArgument,
	KindImageIsFlat:                 photodnaruntime.ErrorImageIsFlat,
	KindNoBorderImageTooSmall:       photodnaruntime.ErrorNoBorderImageTooSmall,
	KindSourceFormatUnknown:         photodnaruntime.ErrorSourceFormatUnknown,
	KindInvalidStride:               photodnaruntime.ErrorInvalidStride,
	KindInvalidSubImage:             photodnaruntime.ErrorInvalidSubImage,
}

var codeKinds = func() map[int32]ErrorKind {
	m := make(map[int32]ErrorKind, len(nativeCodes))
	for k, c := range nativeCodes {
		m[c] = k
	}
	return m
}()

// Error is the structured failure returned by every Generator operation.
// Only the fields relevant to Kind are set.
type Error struct {
	Kind ErrorKind

	// Code is the native status for native-origin kinds and UnknownErrorCode.
	// For Protocol it holds the unexpected return value.
	Code int32

	// Expected and Actual are byte counts for BufferTooSmall.
	Expected int
	Actual   int

	// Width and Height are set for InvalidDimensions.
	Width  int
	Height int

	// Detail carries the init failure reason or protocol context.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInitializationFailed:
		return "failed to initialize PhotoDNA library: " + e.Detail
	case KindUnknown:
		return "an undetermined error occurred (error code: -7000)"
	case KindMemoryAllocationFailed:
		return "failed to allocate memory"
	case KindLibraryFailure:
		return "general failure within the library"
	case KindMemoryAccess:
		return "system memory exception occurred"
	case KindInvalidHash:
		return "hash does not conform to PhotoDNA specifications"
	case KindHashFormatInvalidCharacters:
		return "invalid character in Base64 or Hex hash"
	case KindImageTooSmall:
		return "image dimension is less than 50 pixels (minimum: 50x50)"
	case KindNoBorder:
		return "no border was detected for the image"
	case KindBadArgument:
		return "an invalid argument was passed"
	case KindImageIsFlat:
		return "image has few or no gradients (image is flat)"
	case KindNoBorderImageTooSmall:
		return "image too small after border removal (minimum: 50x50)"
	case KindSourceFormatUnknown:
		return "not a known source image format"
	case KindInvalidStride:
		return "invalid stride: must be 0 or >= width in bytes"
	case KindInvalidSubImage:
		return "sub region is not within image boundaries"
	case KindBufferTooSmall:
		return fmt.Sprintf("image buffer too small: expected at least %d bytes, got %d", e.Expected, e.Actual)
	case KindInvalidDimensions:
		return fmt.Sprintf("invalid image dimensions: %dx%d", e.Width, e.Height)
	case KindUnknownErrorCode:
		return fmt.Sprintf("unknown error code: %d", e.Code)
	case KindProtocol:
		return fmt.Sprintf("unexpected native return value %d: %s", e.Code, e.Detail)
	case KindClosed:
		return "generator is closed"
	default:
		return fmt.Sprintf("photodna error (%s)", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, so errors.Is(err, ErrImageTooSmall) works regardless of
// the other fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ErrorCode returns the native status code for the error's kind. Purely local
// kinds report false.
func (e *Error) ErrorCode() (int32, bool) {
	if e.Kind == KindUnknownErrorCode {
		return e.Code, true
	}
	return e.Kind.ErrorCode()
}

// ErrorCode returns the native code of k. BufferTooSmall, InvalidDimensions,
// InitializationFailed, Protocol and Closed have none.
func (k ErrorKind) ErrorCode() (int32, bool) {
	c, ok := nativeCodes[k]
	return c, ok
}

// IsRecoverable reports whether the failure may be transient and worth a retry.
func (e *Error) IsRecoverable() bool {
	switch e.Kind {
	case KindMemoryAllocationFailed, KindLibraryFailure, KindMemoryAccess:
		return true
	}
	return false
}

// IsInputError reports whether the caller can fix the failure by changing its input.
func (e *Error) IsInputError() bool {
	switch e.Kind {
	case KindImageTooSmall, KindImageIsFlat, KindBadArgument, KindInvalidStride,
		KindInvalidSubImage, KindSourceFormatUnknown, KindBufferTooSmall,
		KindInvalidDimensions, KindNoBorderImageTooSmall:
		return true
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrUnknown                     = &Error{Kind: KindUnknown}
	ErrMemoryAllocationFailed      = &Error{Kind: KindMemoryAllocationFailed}
	ErrLibraryFailure              = &Error{Kind: KindLibraryFailure}
	ErrMemoryAccess                = &Error{Kind: KindMemoryAccess}
	ErrInvalidHash                 = &Error{Kind: KindInvalidHash}
	ErrHashFormatInvalidCharacters = &Error{Kind: KindHashFormatInvalidCharacters}
	ErrImageTooSmall               = &Error{Kind: KindImageTooSmall}
	ErrNoBorder                    = &Error{Kind: KindNoBorder}
	ErrBadArgument                 = &Error{Kind: KindBadArgument}
	ErrImageIsFlat                 = &Error{Kind: KindImageIsFlat}
	ErrNoBorderImageTooSmall       = &Error{Kind: KindNoBorderImageTooSmall}
	ErrSourceFormatUnknown         = &Error{Kind: KindSourceFormatUnknown}
	ErrInvalidStride               = &Error{Kind: KindInvalidStride}
	ErrInvalidSubImage             = &Error{Kind: KindInvalidSubImage}
	ErrUnknownErrorCode            = &Error{Kind: KindUnknownErrorCode}
	ErrInitializationFailed        = &Error{Kind: KindInitializationFailed}
	ErrBufferTooSmall              = &Error{Kind: KindBufferTooSmall}
	ErrInvalidDimensions           = &Error{Kind: KindInvalidDimensions}
	ErrProtocol                    = &Error{Kind: KindProtocol}
	ErrGeneratorClosed             = &Error{Kind: KindClosed}
)

// FromErrorCode maps a native status code to an Error. Undocumented codes map to
// UnknownErrorCode carrying the raw value.
func FromErrorCode(code int32) *Error {
	if k, ok := codeKinds[code]; ok {
		return &Error{Kind: k, Code: code}
	}
	return &Error{Kind: KindUnknownErrorCode, Code: code}
}

// KindOf extracts the ErrorKind from err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// IsRecoverable reports whether err is a photodna error worth retrying.
func IsRecoverable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.IsRecoverable()
}

// IsInputError reports whether err is a photodna error caused by the caller's input.
func IsInputError(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.IsInputError()
}

func initFailed(detail string, cause error) *Error {
	return &Error{Kind: KindInitializationFailed, Detail: detail, Err: cause}
}
