package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// FilterService re-queries the library for a date range and keeps assets
// at or above a minimum size
type FilterService struct {
	library   ports.PhotoLibrary
	estimator *SizeEstimator
}

// NewFilterService creates a new filter service
func NewFilterService(library ports.PhotoLibrary, estimator *SizeEstimator) *FilterService {
	return &FilterService{
		library:   library,
		estimator: estimator,
	}
}

// FilterRequest represents a date/size filter. Both dates are inclusive.
type FilterRequest struct {
	Start     time.Time
	End       time.Time
	MinSizeMB float64
}

// FilterResponse holds the retained assets in fetch order and the sizes
// computed for every candidate
type FilterResponse struct {
	Assets     []domain.PhotoAsset
	Sizes      domain.SizeCache
	Candidates int
}

// Validate rejects inverted ranges and negative sizes
func (r FilterRequest) Validate() (*domain.DateRange, error) {
	if r.MinSizeMB < 0 {
		return nil, fmt.Errorf("minimum size must not be negative: %.1f", r.MinSizeMB)
	}
	return domain.NewDateRange(r.Start, r.End)
}

// Execute runs the filter. An empty intersection is not an error.
func (s *FilterService) Execute(ctx context.Context, req FilterRequest) (*FilterResponse, error) {
	dateRange, err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	result, err := s.library.Fetch(ctx, domain.FetchOptions{Range: dateRange})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}

	candidates, err := result.Assets(ctx, 0, result.Count())
	if err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}

	started := time.Now()
	sizes := s.estimator.EstimateAll(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := make([]domain.PhotoAsset, 0, len(candidates))
	for _, asset := range candidates {
		if sizes.MB(asset.ID) >= req.MinSizeMB {
			kept = append(kept, asset)
		}
	}

	logger.Debug("filter finished",
		logger.KeyLibrary, s.library.Name(),
		logger.KeyCount, len(kept),
		"candidates", len(candidates),
		logger.KeySizeMB, req.MinSizeMB,
		logger.KeyDuration, time.Since(started))

	return &FilterResponse{
		Assets:     kept,
		Sizes:      sizes,
		Candidates: len(candidates),
	}, nil
}
