package validation

import (
	"fmt"
	"os"
)

// FileExistsError indicates a file or directory is missing or of the wrong kind.
type FileExistsError struct {
	Path    string
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// CheckFileExists returns nil if path names a regular file, or a *FileExistsError
// describing the failure.
func CheckFileExists(path string) error {
	info, err := statPath(path, "file")
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &FileExistsError{
			Path:    path,
			Message: fmt.Sprintf("path is a directory, not a file: %s", path),
		}
	}
	return nil
}

// CheckDirExists returns nil if path names a directory.
func CheckDirExists(path string) error {
	info, err := statPath(path, "directory")
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &FileExistsError{
			Path:    path,
			Message: fmt.Sprintf("path is a file, not a directory: %s", path),
		}
	}
	return nil
}

func statPath(path, kind string) (os.FileInfo, error) {
	if path == "" {
		return nil, &FileExistsError{
			Path:    path,
			Message: kind + " path cannot be empty",
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileExistsError{
				Path:    path,
				Message: fmt.Sprintf("%s not found: %s", kind, path),
			}
		}
		return nil, &FileExistsError{
			Path:    path,
			Message: fmt.Sprintf("error checking %s %s: %v", kind, path, err),
		}
	}
	return info, nil
}
