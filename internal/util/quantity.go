package util

import (
	"fmt"
	"math"
	"strings"
)

// ParseSize converts a size string (e.g., "10M", "512K", "1.5GiB") to bytes.
// Units are binary. A bare number is bytes. If the string is empty, it
// returns 0. Sizes must stay below math.MaxInt64 bytes.
func ParseSize(size string) (int64, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return 0, nil
	}

	var value float64
	var unit string

	n, err := fmt.Sscanf(size, "%f%s", &value, &unit)
	if err != nil && n == 0 {
		return 0, fmt.Errorf("invalid size value: %s", size)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid size value: %s", size)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative size value: %s", size)
	}

	multiplier := float64(1)
	if n > 1 {
		switch strings.ToUpper(strings.TrimSpace(unit)) {
		case "B":
		case "K", "KB", "KI", "KIB":
			multiplier = 1 << 10
		case "M", "MB", "MI", "MIB":
			multiplier = 1 << 20
		case "G", "GB", "GI", "GIB":
			multiplier = 1 << 30
		default:
			return 0, fmt.Errorf("unknown size unit: %s", strings.ToUpper(strings.TrimSpace(unit)))
		}
	}

	bytes := value * multiplier
	// float64(math.MaxInt64) is 2^63.
	if bytes >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("size value too large: %s", size)
	}
	return int64(bytes), nil
}
