package domain

import "fmt"

const (
	// BytesPerPixel is the uncompressed RGB footprint used for size estimates
	BytesPerPixel = 3

	bytesPerMB = 1024 * 1024
)

// SizeEstimate is the size of an asset in megabytes.
// Approximate is set when the value was derived from pixel dimensions
// instead of the stored resource.
type SizeEstimate struct {
	MB          float64
	Approximate bool
}

// SizeFromBytes converts an on-disk byte count into an exact estimate
func SizeFromBytes(bytes int64) SizeEstimate {
	return SizeEstimate{MB: float64(bytes) / bytesPerMB}
}

// SizeFromPixels estimates the size from pixel dimensions
func SizeFromPixels(width, height int) SizeEstimate {
	return SizeEstimate{
		MB:          float64(width) * float64(height) * BytesPerPixel / bytesPerMB,
		Approximate: true,
	}
}

// String renders "2.4 MB", or "~2.4 MB" for approximations
func (s SizeEstimate) String() string {
	if s.Approximate {
		return fmt.Sprintf("~%.1f MB", s.MB)
	}
	return fmt.Sprintf("%.1f MB", s.MB)
}

// SizeCache maps asset identifiers to computed sizes.
// A missing entry means the size is not known yet.
type SizeCache map[string]SizeEstimate

// NewSizeCache creates an empty cache
func NewSizeCache() SizeCache {
	return make(SizeCache)
}

// MB returns the cached size in megabytes, or 0 when unknown
func (c SizeCache) MB(id string) float64 {
	return c[id].MB
}

// Has reports whether a size has been computed for id
func (c SizeCache) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Set stores the estimate for id
func (c SizeCache) Set(id string, est SizeEstimate) {
	c[id] = est
}

// Delete removes the entry for id
func (c SizeCache) Delete(id string) {
	delete(c, id)
}
