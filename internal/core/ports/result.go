package ports

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// SliceResult is a FetchResult over an already materialized list
type SliceResult struct {
	assets []domain.PhotoAsset
}

// NewSliceResult wraps assets, which must already be in fetch order
func NewSliceResult(assets []domain.PhotoAsset) *SliceResult {
	return &SliceResult{assets: assets}
}

// Count returns the number of assets
func (r *SliceResult) Count() int {
	return len(r.assets)
}

// Assets returns a copy of the assets in [start, end)
func (r *SliceResult) Assets(ctx context.Context, start, end int) ([]domain.PhotoAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if start < 0 || end > len(r.assets) || start > end {
		return nil, fmt.Errorf("range [%d, %d) out of bounds for %d assets", start, end, len(r.assets))
	}

	page := make([]domain.PhotoAsset, end-start)
	copy(page, r.assets[start:end])
	return page, nil
}
