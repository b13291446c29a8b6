// Package bytesize parses human-readable sizes such as "2MB" or "500KiB".
// Photo sizes in px are reported in binary megabytes, so the short units
// K, M and G are binary here; KB/MB/GB are accepted as the same units.
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Size is a number of bytes
type Size uint64

const (
	B  Size = 1
	KB Size = 1024 * B
	MB Size = 1024 * KB
	GB Size = 1024 * MB
)

var sizePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

var units = map[string]Size{
	"":    MB, // bare numbers are megabytes, matching the --min-size flag
	"b":   B,
	"k":   KB,
	"kb":  KB,
	"ki":  KB,
	"kib": KB,
	"m":   MB,
	"mb":  MB,
	"mi":  MB,
	"mib": MB,
	"g":   GB,
	"gb":  GB,
	"gi":  GB,
	"gib": GB,
}

// Parse reads a size. A number without a unit is taken as megabytes.
func Parse(s string) (Size, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty size")
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	unit, ok := units[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q", m[2])
	}

	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in size %q", s)
	}
	return Size(num * float64(unit)), nil
}

// FromMB converts megabytes to a Size
func FromMB(mb float64) Size {
	if mb <= 0 {
		return 0
	}
	return Size(mb * float64(MB))
}

// MB returns the size in megabytes
func (s Size) MB() float64 {
	return float64(s) / float64(MB)
}

// String renders the size with the largest whole unit
func (s Size) String() string {
	switch {
	case s >= GB:
		return fmt.Sprintf("%.1fGB", float64(s)/float64(GB))
	case s >= MB:
		return fmt.Sprintf("%.1fMB", float64(s)/float64(MB))
	case s >= KB:
		return fmt.Sprintf("%.1fKB", float64(s)/float64(KB))
	default:
		return fmt.Sprintf("%dB", s)
	}
}

// UnmarshalText lets Size decode from config strings
func (s *Size) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText writes the String form
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
