package runtimetest

// SolidImage returns a width x height image with every byte set to value.
func SolidImage(width, height, bytesPerPixel int, value byte) []byte {
	img := make([]byte, width*height*bytesPerPixel)
	for i := range img {
		img[i] = value
	}
	return img
}

// GradientImage returns a packed RGB image with a horizontal and vertical gradient.
func GradientImage(width, height int) []byte {
	img := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			img[i] = byte(x * 255 / max(width-1, 1))
			img[i+1] = byte(y * 255 / max(height-1, 1))
			img[i+2] = byte((x + y) % 256)
		}
	}
	return img
}

// CheckerImage returns a packed RGB checkerboard with square cells of the given size.
func CheckerImage(width, height, cell int) []byte {
	if cell < 1 {
		cell = 1
	}
	img := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v byte
			if (x/cell+y/cell)%2 == 0 {
				v = 0xff
			}
			i := (y*width + x) * 3
			img[i], img[i+1], img[i+2] = v, v, v
		}
	}
	return img
}
