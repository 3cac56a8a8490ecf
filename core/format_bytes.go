package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Binary size units.
const (
	BytesPerKB int64 = 1024
	BytesPerMB int64 = 1024 * BytesPerKB
	BytesPerGB int64 = 1024 * BytesPerMB
)

// FormatBytes renders n as "512 B", "1.50 KB", "3.00 MB" or "1.00 GB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	switch {
	case n >= BytesPerGB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(BytesPerGB))
	case n >= BytesPerMB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(BytesPerMB))
	case n >= BytesPerKB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(BytesPerKB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// ParseBytes parses sizes such as "512", "64KB", "1.5 MB" or "2g". Units are binary and
// case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if end == 0 {
		return 0, fmt.Errorf("invalid size %q: no number found", s)
	}
	if end < 0 {
		end = len(s)
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	var mult int64
	switch strings.ToUpper(strings.TrimSpace(s[end:])) {
	case "", "B":
		mult = 1
	case "K", "KB":
		mult = BytesPerKB
	case "M", "MB":
		mult = BytesPerMB
	case "G", "GB":
		mult = BytesPerGB
	default:
		return 0, fmt.Errorf("invalid size %q: unknown unit", s)
	}
	return int64(value * float64(mult)), nil
}
