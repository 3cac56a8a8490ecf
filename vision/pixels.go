package vision

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"go_photodna/photodna"
)

// Pixels is a tightly packed image buffer ready for the Generator.
type Pixels struct {
	Data   []byte
	Width  int
	Height int
	Stride int
	Format photodna.PixelFormat
}

// HashOptions returns default options with the buffer's pixel format selected.
func (p Pixels) HashOptions() photodna.HashOptions {
	return photodna.DefaultHashOptions().WithPixelFormat(p.Format)
}

// Channel order per format, as indices into an R,G,B,A source pixel.
var channelOrder = map[photodna.PixelFormat][]int{
	photodna.PixelFormatRGB:  {0, 1, 2},
	photodna.PixelFormatBGR:  {2, 1, 0},
	photodna.PixelFormatRGBA: {0, 1, 2, 3},
	photodna.PixelFormatBGRA: {2, 1, 0, 3},
	photodna.PixelFormatARGB: {3, 0, 1, 2},
	photodna.PixelFormatABGR: {3, 2, 1, 0},
}

// ToPixels packs img in format. Images smaller than photodna.MinDimension on either side
// fail with ErrImageTooSmall.
func ToPixels(img image.Image, format photodna.PixelFormat) (Pixels, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < photodna.MinDimension || height < photodna.MinDimension {
		return Pixels{}, &photodna.Error{Kind: photodna.KindImageTooSmall, Width: width, Height: height}
	}

	switch format {
	case photodna.PixelFormatGray8:
		gray := effect.Grayscale(img)
		return Pixels{
			Data:   packRows(gray.Pix, gray.Stride, width, height),
			Width:  width,
			Height: height,
			Stride: width,
			Format: format,
		}, nil

	case photodna.PixelFormatRGBAPremultiplied:
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
		return Pixels{
			Data:   packRows(rgba.Pix, rgba.Stride, width*4, height),
			Width:  width,
			Height: height,
			Stride: width * 4,
			Format: format,
		}, nil
	}

	order, ok := channelOrder[format]
	if !ok {
		return Pixels{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	src := imaging.Clone(img)
	bpp := len(order)
	data := make([]byte, 0, width*height*bpp)
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width*4]
		for x := 0; x < width*4; x += 4 {
			for _, c := range order {
				data = append(data, row[x+c])
			}
		}
	}

	return Pixels{
		Data:   data,
		Width:  width,
		Height: height,
		Stride: width * bpp,
		Format: format,
	}, nil
}

// packRows drops any row padding from pix.
func packRows(pix []byte, stride, rowBytes, height int) []byte {
	if stride == rowBytes {
		return pix[:rowBytes*height]
	}
	out := make([]byte, 0, rowBytes*height)
	for y := 0; y < height; y++ {
		out = append(out, pix[y*stride:y*stride+rowBytes]...)
	}
	return out
}
