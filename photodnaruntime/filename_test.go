package photodnaruntime

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLibraryFilename(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"windows", "amd64", "libEdgeHashGenerator.1.05.dll"},
		{"windows", "arm64", "libEdgeHashGenerator-arm64.1.05.dll"},
		{"windows", "386", "libEdgeHashGenerator-x86.1.05.dll"},
		{"linux", "amd64", "libEdgeHashGenerator.so.1.05"},
		{"linux", "arm64", "libEdgeHashGenerator-arm64.so.1.05"},
		{"linux", "386", "libEdgeHashGenerator-x86.so.1.05"},
		{"darwin", "arm64", "libEdgeHashGenerator-arm64-macos.so.1.05"},
		{"darwin", "amd64", "libEdgeHashGenerator-macos.so.1.05"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := LibraryFilename(tt.goos, tt.goarch)
			if err != nil {
				t.Fatalf("LibraryFilename() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LibraryFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLibraryFilename_Unsupported(t *testing.T) {
	for _, p := range [][2]string{{"linux", "riscv64"}, {"freebsd", "amd64"}, {"windows", "arm"}} {
		if _, err := LibraryFilename(p[0], p[1]); !errors.Is(err, ErrUnsupportedPlatform) {
			t.Errorf("LibraryFilename(%s, %s) error = %v, want ErrUnsupportedPlatform", p[0], p[1], err)
		}
	}
}

func TestLibraryPath(t *testing.T) {
	name, err := DefaultLibraryFilename()
	if err != nil {
		t.Skipf("no library name for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	got, err := LibraryPath("/opt/photodna")
	if err != nil {
		t.Fatalf("LibraryPath() error = %v", err)
	}
	if want := filepath.Join("/opt/photodna", name); got != want {
		t.Errorf("LibraryPath() = %q, want %q", got, want)
	}
}
