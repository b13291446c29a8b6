package services

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports/mocks"
)

func TestSizeEstimator_Estimate(t *testing.T) {
	tests := []struct {
		name       string
		sizeMB     float64
		width      int
		height     int
		wantMB     float64
		wantApprox bool
	}{
		{
			name:   "metadata available",
			sizeMB: 2.5, width: 4000, height: 3000,
			wantMB: 2.5, wantApprox: false,
		},
		{
			name:   "metadata missing falls back to pixels",
			sizeMB: -1, width: 1024, height: 1024,
			wantMB: 3.0, wantApprox: true,
		},
		{
			name:   "zero byte resource falls back to pixels",
			sizeMB: 0, width: 2048, height: 1024,
			wantMB: 6.0, wantApprox: true,
		},
		{
			name:   "no metadata and no dimensions",
			sizeMB: -1, width: 0, height: 0,
			wantMB: 0, wantApprox: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := mocks.NewMockLibrary()
			asset := addTestAsset(lib, "a", day(2024, 1, 1), tt.width, tt.height, tt.sizeMB)

			est := NewSizeEstimator(lib, 0, 1).Estimate(context.Background(), asset)

			if math.Abs(est.MB-tt.wantMB) > 1e-9 {
				t.Errorf("expected %.3f MB, got %.3f", tt.wantMB, est.MB)
			}
			if est.Approximate != tt.wantApprox {
				t.Errorf("expected approximate=%v, got %v", tt.wantApprox, est.Approximate)
			}
		})
	}
}

func TestSizeEstimator_BackendError(t *testing.T) {
	lib := mocks.NewMockLibrary()
	asset := addTestAsset(lib, "a", day(2024, 1, 1), 1024, 1024, 10)
	lib.SetSizeFunc(func(ctx context.Context, a domain.PhotoAsset) (int64, error) {
		return 0, errors.New("connection reset")
	})

	est := NewSizeEstimator(lib, 0, 1).Estimate(context.Background(), asset)
	if !est.Approximate || est.MB != 3.0 {
		t.Errorf("expected pixel fallback of ~3.0 MB, got %v", est)
	}
}

func TestSizeEstimator_Timeout(t *testing.T) {
	lib := mocks.NewMockLibrary()
	asset := addTestAsset(lib, "slow", day(2024, 1, 1), 1024, 1024, 10)

	block := make(chan struct{})
	defer close(block)
	lib.SetSizeFunc(func(ctx context.Context, a domain.PhotoAsset) (int64, error) {
		<-block // ignores ctx on purpose
		return 10 * mb, nil
	})

	start := time.Now()
	est := NewSizeEstimator(lib, 20*time.Millisecond, 1).Estimate(context.Background(), asset)

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("estimate should give up after the timeout, took %v", elapsed)
	}
	if !est.Approximate {
		t.Error("timed out lookup should fall back to the pixel estimate")
	}
}

func TestSizeEstimator_EstimateAll(t *testing.T) {
	lib := mocks.NewMockLibrary()
	var assets []domain.PhotoAsset
	for i := 0; i < 25; i++ {
		id := string(rune('a' + i))
		size := float64(i)
		if i%5 == 0 {
			size = -1
		}
		assets = append(assets, addTestAsset(lib, id, day(2024, 1, i+1), 512, 512, size))
	}

	var running, peak int32
	lib.SetSizeFunc(func(ctx context.Context, a domain.PhotoAsset) (int64, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return 1 * mb, nil
	})

	cache := NewSizeEstimator(lib, 0, 3).EstimateAll(context.Background(), assets)

	if len(cache) != len(assets) {
		t.Fatalf("expected %d sizes, got %d", len(assets), len(cache))
	}
	for _, a := range assets {
		if !cache.Has(a.ID) {
			t.Errorf("missing size for %s", a.ID)
		}
	}
	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Errorf("expected at most 3 concurrent lookups, saw %d", p)
	}
}

func TestSizeEstimator_EstimateAllEmpty(t *testing.T) {
	cache := NewSizeEstimator(mocks.NewMockLibrary(), 0, 2).EstimateAll(context.Background(), nil)
	if len(cache) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(cache))
	}
}

func TestNewSizeEstimator_DefaultWorkers(t *testing.T) {
	if got := NewSizeEstimator(mocks.NewMockLibrary(), 0, 0).Workers(); got != DefaultMaxWorkers {
		t.Errorf("expected %d workers, got %d", DefaultMaxWorkers, got)
	}
}
