// Package vision turns image files into packed pixel buffers the Generator can hash.
//
// Decoding goes through imaging so JPEG EXIF orientation is applied before hashing. PNG,
// JPEG, GIF, BMP, TIFF and WebP are registered.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go_photodna/photodna"
)

// Image preprocessing errors
var (
	ErrInvalidImage      = errors.New("vision: invalid image data")
	ErrUnsupportedFormat = errors.New("vision: unsupported pixel format")
	ErrEmptyImage        = errors.New("vision: empty image data")

	// ErrImageTooSmall is the photodna error kind, so callers match one sentinel whether
	// the check happened here or in the native library.
	ErrImageTooSmall = photodna.ErrImageTooSmall
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImageFile reports whether path has an extension Decode understands.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Decode decodes image data, applying EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// LoadFile reads and decodes the image at path.
func LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vision: read %s: %w", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// FitWithin scales img down so neither side exceeds maxDim, keeping the aspect ratio.
// Images already inside the bound, or a maxDim <= 0, are returned unchanged.
func FitWithin(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(max(width, height))
	newWidth := max(1, int(float64(width)*scale))
	newHeight := max(1, int(float64(height)*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// Prepare loads path, downscales it to maxDim (0 keeps the original size) and packs it
// in format.
func Prepare(path string, format photodna.PixelFormat, maxDim int) (Pixels, error) {
	img, err := LoadFile(path)
	if err != nil {
		return Pixels{}, err
	}
	return ToPixels(FitWithin(img, maxDim), format)
}
