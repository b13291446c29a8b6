package domain

import (
	"fmt"
	"strings"
)

// SortKey selects how the asset list is ordered
type SortKey int

const (
	SortByDate SortKey = iota // Creation date, newest first
	SortBySize                // Size, largest first
	SortByName                // Identifier, ascending
)

// AllSortKeys lists the keys in toggle order
var AllSortKeys = []SortKey{SortByDate, SortBySize, SortByName}

// ParseSortKey parses "date", "size" or "name"
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date":
		return SortByDate, nil
	case "size":
		return SortBySize, nil
	case "name", "id":
		return SortByName, nil
	default:
		return SortByDate, fmt.Errorf("unknown sort key %q (expected date, size or name)", s)
	}
}

// String returns the config/flag spelling of the key
func (k SortKey) String() string {
	switch k {
	case SortBySize:
		return "size"
	case SortByName:
		return "name"
	default:
		return "date"
	}
}

// Label returns the title shown in the UI
func (k SortKey) Label() string {
	switch k {
	case SortBySize:
		return "Size"
	case SortByName:
		return "Name"
	default:
		return "Date"
	}
}

// Next returns the key that follows k in toggle order
func (k SortKey) Next() SortKey {
	return AllSortKeys[(int(k)+1)%len(AllSortKeys)]
}
