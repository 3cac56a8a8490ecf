//go:build (darwin || (linux && (amd64 || arm64 || (386 && cgo))) || windows) && !nonative

package photodnaruntime

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// NativeSupport reports whether this build can load the native library.
const NativeSupport = true

// bindSymbol points the Go function variable fn at the native entry point addr.
func bindSymbol(fn any, addr uintptr) (err error) {
	defer func() {
		// RegisterFunc panics on signatures it cannot marshal.
		if r := recover(); r != nil {
			err = fmt.Errorf("bind: %v", r)
		}
	}()
	purego.RegisterFunc(fn, addr)
	return nil
}
