package services

import (
	"time"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports/mocks"
)

const mb = 1024 * 1024

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// addTestAsset stores an asset in the mock library. sizeMB < 0 leaves the
// resource size unknown.
func addTestAsset(lib *mocks.MockLibrary, id string, created time.Time, w, h int, sizeMB float64) domain.PhotoAsset {
	asset := domain.PhotoAsset{
		ID:        id,
		Filename:  id + ".jpg",
		Width:     w,
		Height:    h,
		CreatedAt: created,
		Ref:       id,
	}
	size := int64(-1)
	if sizeMB >= 0 {
		size = int64(sizeMB * mb)
	}
	lib.AddAsset(asset, size)
	return asset
}

func ids(assets []domain.PhotoAsset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
