// Package photodna computes PhotoDNA perceptual hashes through the native Edge Hash
// Generator library.
//
// The package is the safe layer over photodnaruntime: every buffer and region is checked
// before it reaches native code, option selections are packed into the library's option
// word, and native status codes come back as *Error values with a Kind.
//
// # Quick Start
//
//	gen, err := photodna.NewGenerator(photodna.LoadGeneratorOptions())
//	if err != nil {
//	    return err
//	}
//	defer gen.Close()
//
//	hash, err := gen.ComputeHashRGB(pixels, 640, 480)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(hash.Hex())
//
// # Concurrency
//
// A Generator may be shared between goroutines. It makes one native call at a time, so
// open several Generators for parallel hashing.
//
// # Errors
//
// Failures are *Error values. Compare kinds with errors.Is:
//
//	if errors.Is(err, photodna.ErrImageTooSmall) {
//	    // reject the upload
//	}
//
// IsInputError and IsRecoverable classify an error without inspecting its kind.
//
// # Border Detection
//
// ComputeHashWithBorderDetection returns the hash of the image as given and, when a
// border is found, a second hash of the content region together with that region.
package photodna
