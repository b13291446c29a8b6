package domain

import (
	"fmt"
	"strings"
	"time"
)

// PhotoAsset represents one item in a photo library.
// Identity and equality are by ID; values are never mutated after construction.
type PhotoAsset struct {
	ID        string    // Stable identifier assigned by the library
	Filename  string    // Original file name, e.g. "IMG_0042.JPG"
	Width     int       // Pixel width
	Height    int       // Pixel height
	CreatedAt time.Time // Zero when the library does not know the creation date
	MediaType string    // MIME type, e.g. "image/jpeg"
	Ref       string    // Backend reference (path, object key or remote id)
}

// NewPhotoAsset creates a photo asset, validating its identifier and dimensions
func NewPhotoAsset(id, filename string, width, height int, createdAt time.Time) (*PhotoAsset, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("asset id cannot be empty")
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	return &PhotoAsset{
		ID:        id,
		Filename:  filename,
		Width:     width,
		Height:    height,
		CreatedAt: createdAt,
		Ref:       id,
	}, nil
}

// PixelCount returns width × height
func (a PhotoAsset) PixelCount() int {
	return a.Width * a.Height
}

// HasCreationDate reports whether the creation timestamp is known
func (a PhotoAsset) HasCreationDate() bool {
	return !a.CreatedAt.IsZero()
}

// Equal compares two assets by identifier
func (a PhotoAsset) Equal(other PhotoAsset) bool {
	return a.ID == other.ID
}

// DisplayName returns the filename, falling back to the identifier
func (a PhotoAsset) DisplayName() string {
	if a.Filename != "" {
		return a.Filename
	}
	return a.ID
}

// GetDisplayDate returns a human-readable creation date
func (a PhotoAsset) GetDisplayDate() string {
	if !a.HasCreationDate() {
		return "-"
	}
	return a.CreatedAt.Format("Jan 02, 2006")
}

// GetDimensions returns "WxH" or "-" when unknown
func (a PhotoAsset) GetDimensions() string {
	if a.Width == 0 || a.Height == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", a.Width, a.Height)
}

// IndexOf returns the position of the asset with the given id, or -1
func IndexOf(assets []PhotoAsset, id string) int {
	for i := range assets {
		if assets[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveByID returns assets without the entry whose id matches.
// The second result is false when no entry matched, in which case the
// original slice is returned untouched.
func RemoveByID(assets []PhotoAsset, id string) ([]PhotoAsset, bool) {
	idx := IndexOf(assets, id)
	if idx < 0 {
		return assets, false
	}

	out := make([]PhotoAsset, 0, len(assets)-1)
	out = append(out, assets[:idx]...)
	out = append(out, assets[idx+1:]...)
	return out, true
}
