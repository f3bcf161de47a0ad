// Package formatting reads and prints byte sizes as they appear in the portal
// configuration ("10MB") and in upload warnings ("10 MB").
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// units are base-1024 multiples, smallest first.
var units = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes prints n with the largest unit that keeps the value at or above
// one, using precision decimals. Negative precision counts as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for i < len(units)-1 && (size >= 1024 || size <= -1024) {
		size /= 1024
		i++
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes reads a size such as "10MB", "25 mb" or "1.5KB". A bare number is
// a count of bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	cut := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if cut >= 0 {
		number, unit = s[:cut], strings.ToUpper(strings.TrimSpace(s[cut:]))
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size %q: missing number", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	if unit == "" {
		return int64(value), nil
	}

	for i, u := range units {
		if u == unit {
			return int64(value * float64(uint64(1)<<(10*i))), nil
		}
	}
	return 0, fmt.Errorf("invalid byte size %q: unknown unit %q", s, unit)
}
