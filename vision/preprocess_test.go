package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"go_photodna/photodna"
)

// createTestImage creates a gradient image with known pixel values
func createTestImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.Set(x, y, color.NRGBA{r, g, 128, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, createTestImage(60, 40)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty data", data: []byte{}, wantErr: ErrEmptyImage},
		{name: "invalid data", data: []byte{0x00, 0x01, 0x02}, wantErr: ErrInvalidImage},
		{name: "valid PNG", data: encodePNG(t, createTestImage(60, 40))},
		{name: "valid BMP", data: bmpBuf.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
				t.Errorf("Decode() bounds = %v, want 60x40", b)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, encodePNG(t, createTestImage(64, 64)), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("width = %d, want 64", img.Bounds().Dx())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxDim        int
		wantW, wantH  int
	}{
		{"already small", 100, 80, 200, 100, 80},
		{"no limit", 400, 300, 0, 400, 300},
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 200, 400, 100, 50, 100},
		{"square", 300, 300, 150, 150, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitWithin(createTestImage(tt.width, tt.height), tt.maxDim).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("FitWithin() = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestIsImageFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.png":        true,
		"b.JPG":        true,
		"c.webp":       true,
		"d.tiff":       true,
		"notes.txt":    false,
		"no_extension": false,
	} {
		if got := IsImageFile(path); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestPrepare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	if err := os.WriteFile(path, encodePNG(t, createTestImage(300, 150)), 0o644); err != nil {
		t.Fatal(err)
	}

	px, err := Prepare(path, photodna.PixelFormatRGB, 100)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if px.Width != 100 || px.Height != 50 {
		t.Errorf("Prepare() = %dx%d, want 100x50", px.Width, px.Height)
	}
	if len(px.Data) != 100*50*3 {
		t.Errorf("len(Data) = %d, want %d", len(px.Data), 100*50*3)
	}
}
