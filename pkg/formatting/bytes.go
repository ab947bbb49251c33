// Package formatting converts byte sizes between counts and human-readable strings.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

var bytesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// FormatBytes renders n using base-1024 units at the given precision.
// Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}

	f := float64(n)
	i := min(int(math.Floor(math.Log(math.Abs(f))/math.Log(1024))), len(units)-1)
	i = max(i, 0)

	size := f / math.Pow(1024, float64(i))
	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[i]
}

// ParseBytes parses a size like "64KB" or "1.5 MB" into a byte count.
// Units are base-1024 and case-insensitive; a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	m := bytesPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(m[2])
	if unit == "" {
		return int64(value), nil
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}
