package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"go_photodna/core"
)

// MinDatabaseFreeBytes is the free space the database directory should have before a scan.
const MinDatabaseFreeBytes int64 = 64 * core.BytesPerMB

// DiskSpaceInfo describes the filesystem holding a path.
type DiskSpaceInfo struct {
	Path           string
	Total          int64
	Free           int64
	Used           int64
	TotalFormatted string
	FreeFormatted  string
	UsedFormatted  string
	UsedPercent    float64
}

// DiskSpaceError indicates there is not enough free space.
type DiskSpaceError struct {
	Path      string
	Required  int64
	Available int64
	Message   string
}

func (e *DiskSpaceError) Error() string {
	return e.Message
}

// GetDiskSpace returns space information for the filesystem containing path. A path that
// does not exist yet is resolved through its nearest existing parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if parent := getParentPath(path); parent != "" && parent != path {
				return GetDiskSpace(parent)
			}
		}
		return nil, fmt.Errorf("cannot access path %s: %w", path, err)
	}

	if !info.IsDir() {
		if parent := getParentPath(path); parent != "" {
			path = parent
		}
	}

	total, free, err := getDiskSpace(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk space for %s: %w", path, err)
	}

	used := total - free
	var usedPercent float64
	if total > 0 {
		usedPercent = float64(used) / float64(total) * 100
	}

	return &DiskSpaceInfo{
		Path:           path,
		Total:          total,
		Free:           free,
		Used:           used,
		TotalFormatted: core.FormatBytes(total),
		FreeFormatted:  core.FormatBytes(free),
		UsedFormatted:  core.FormatBytes(used),
		UsedPercent:    usedPercent,
	}, nil
}

// CheckDiskSpace returns a *DiskSpaceError when the filesystem holding path has less than
// requiredBytes free.
func CheckDiskSpace(path string, requiredBytes int64) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return err
	}

	if info.Free < requiredBytes {
		return &DiskSpaceError{
			Path:      path,
			Required:  requiredBytes,
			Available: info.Free,
			Message: fmt.Sprintf("insufficient disk space at %s: need %s, have %s free",
				path, core.FormatBytes(requiredBytes), info.FreeFormatted),
		}
	}
	return nil
}

// getParentPath returns the parent directory of path, or "" at a root.
func getParentPath(path string) string {
	if path == "" || path == "." {
		return ""
	}
	parent := filepath.Dir(filepath.Clean(path))
	if parent == filepath.Clean(path) {
		return ""
	}
	return parent
}
