package services

import (
	"sort"
	"time"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// SortAssets returns a sorted copy of assets. The input is not modified.
//
// Date order is newest first with undated assets treated as the current
// time. Size order reads the cache, counting unknown sizes as zero. Name
// order compares identifiers. All orders are stable.
func SortAssets(assets []domain.PhotoAsset, key domain.SortKey, sizes domain.SizeCache) []domain.PhotoAsset {
	sorted := make([]domain.PhotoAsset, len(assets))
	copy(sorted, assets)

	switch key {
	case domain.SortBySize:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sizes.MB(sorted[i].ID) > sizes.MB(sorted[j].ID)
		})
	case domain.SortByName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ID < sorted[j].ID
		})
	default:
		now := time.Now()
		dateOf := func(a domain.PhotoAsset) time.Time {
			if !a.HasCreationDate() {
				return now
			}
			return a.CreatedAt
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			return dateOf(sorted[i]).After(dateOf(sorted[j]))
		})
	}

	return sorted
}
