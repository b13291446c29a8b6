package services

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// DefaultMaxWorkers bounds concurrent size lookups when no limit is configured
const DefaultMaxWorkers = 4

// SizeEstimator resolves asset sizes from resource metadata, falling back
// to a pixel-based approximation
type SizeEstimator struct {
	library ports.PhotoLibrary
	timeout time.Duration
	workers int
}

// NewSizeEstimator creates an estimator. A zero timeout disables the
// per-asset deadline.
func NewSizeEstimator(library ports.PhotoLibrary, timeout time.Duration, workers int) *SizeEstimator {
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	return &SizeEstimator{
		library: library,
		timeout: timeout,
		workers: workers,
	}
}

// Estimate never fails. Metadata errors and timeouts yield the pixel estimate.
func (e *SizeEstimator) Estimate(ctx context.Context, asset domain.PhotoAsset) domain.SizeEstimate {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	bytes, err := e.resourceSize(ctx, asset)
	if err == nil && bytes > 0 {
		return domain.SizeFromBytes(bytes)
	}

	est := domain.SizeFromPixels(asset.Width, asset.Height)
	if err != nil && !errors.Is(err, ports.ErrMetadataUnavailable) {
		logger.Debug("size lookup failed, using pixel estimate",
			logger.KeyAsset, asset.ID, logger.KeySizeMB, est.MB, logger.KeyError, err.Error())
	}
	return est
}

// resourceSize returns as soon as ctx is done, even if the backend ignores it
func (e *SizeEstimator) resourceSize(ctx context.Context, asset domain.PhotoAsset) (int64, error) {
	type result struct {
		bytes int64
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		n, err := e.library.ResourceSize(ctx, asset)
		ch <- result{bytes: n, err: err}
	}()

	select {
	case r := <-ch:
		return r.bytes, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

type sizeResult struct {
	id  string
	est domain.SizeEstimate
}

// EstimateAll computes every asset's size on a bounded pool and joins the
// results. It returns once all computations have finished.
func (e *SizeEstimator) EstimateAll(ctx context.Context, assets []domain.PhotoAsset) domain.SizeCache {
	cache := domain.NewSizeCache()
	if len(assets) == 0 {
		return cache
	}

	p := pool.NewWithResults[sizeResult]().WithMaxGoroutines(e.workers)
	for _, asset := range assets {
		asset := asset
		p.Go(func() sizeResult {
			return sizeResult{id: asset.ID, est: e.Estimate(ctx, asset)}
		})
	}

	for _, r := range p.Wait() {
		cache.Set(r.id, r.est)
	}
	return cache
}

// Workers returns the pool bound
func (e *SizeEstimator) Workers() int {
	return e.workers
}
