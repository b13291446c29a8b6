package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateRange is an inclusive creation-date interval
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates that start does not come after end
func NewDateRange(start, end time.Time) (*DateRange, error) {
	if start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return &DateRange{Start: start, End: end}, nil
}

// Contains reports whether t lies within the range.
// Assets without a creation date never match a range.
func (r DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// FetchOptions narrows a library query. Results are always ordered by
// creation date, newest first, with undated assets last.
type FetchOptions struct {
	Range *DateRange // Optional creation-date predicate
}

// Matches applies the predicate to an asset
func (o FetchOptions) Matches(a PhotoAsset) bool {
	if o.Range == nil {
		return true
	}
	return o.Range.Contains(a.CreatedAt)
}

// ContentMode controls how an image is scaled into its target size
type ContentMode int

const (
	ContentModeFit  ContentMode = iota // Whole image visible, letterboxed
	ContentModeFill                    // Target fully covered, excess cropped
)

// ImageRequest describes a rendition of an asset
type ImageRequest struct {
	Width  int
	Height int
	Mode   ContentMode
}

// OrderByCreation sorts assets in fetch order: newest first, undated last,
// ties broken by identifier so repeated fetches page identically
func OrderByCreation(assets []PhotoAsset) {
	sort.SliceStable(assets, func(i, j int) bool {
		a, b := assets[i], assets[j]
		switch {
		case a.HasCreationDate() && !b.HasCreationDate():
			return true
		case !a.HasCreationDate() && b.HasCreationDate():
			return false
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.ID < b.ID
		}
	})
}
