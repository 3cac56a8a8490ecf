package photodnaruntime

import (
	"unicode/utf8"
	"unsafe"
)

// maxCStringLen bounds the scan for a terminating NUL in library-owned strings.
const maxCStringLen = 4096

// goString copies a NUL-terminated string owned by the library.
func goString(p unsafe.Pointer) (string, bool) {
	if p == nil {
		return "", false
	}
	n := 0
	for n < maxCStringLen && *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	b := unsafe.Slice((*byte)(p), n)
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}
