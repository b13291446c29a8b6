package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
)

// SizeFunc overrides how MockLibrary answers ResourceSize
type SizeFunc func(ctx context.Context, asset domain.PhotoAsset) (int64, error)

// MockLibrary is an in-memory implementation of the PhotoLibrary port for testing
type MockLibrary struct {
	mu          sync.Mutex
	order       []string
	assets      map[string]domain.PhotoAsset
	sizes       map[string]int64
	denied      bool
	fetchErr    error
	deleteErr   error
	noImages    bool
	sizeFunc    SizeFunc
	fetchCalls  int
	deleteCalls [][]string
	sizeCalls   []string
}

// NewMockLibrary creates an empty mock library
func NewMockLibrary() *MockLibrary {
	return &MockLibrary{
		assets: make(map[string]domain.PhotoAsset),
		sizes:  make(map[string]int64),
	}
}

// Name returns the backend name
func (m *MockLibrary) Name() string {
	return "mock"
}

// AddAsset stores an asset. A negative size means resource metadata is unavailable.
func (m *MockLibrary) AddAsset(asset domain.PhotoAsset, sizeBytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.assets[asset.ID]; !exists {
		m.order = append(m.order, asset.ID)
	}
	m.assets[asset.ID] = asset
	if sizeBytes >= 0 {
		m.sizes[asset.ID] = sizeBytes
	} else {
		delete(m.sizes, asset.ID)
	}
}

// Authorize fails with ErrAuthorizationDenied when access was revoked
func (m *MockLibrary) Authorize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.denied {
		return ports.ErrAuthorizationDenied
	}
	return nil
}

// Fetch returns the matching assets in fetch order
func (m *MockLibrary) Fetch(ctx context.Context, opts domain.FetchOptions) (ports.FetchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	matches := make([]domain.PhotoAsset, 0, len(m.order))
	for _, id := range m.order {
		asset := m.assets[id]
		if opts.Matches(asset) {
			matches = append(matches, asset)
		}
	}
	domain.OrderByCreation(matches)

	return ports.NewSliceResult(matches), nil
}

// ResourceSize returns the configured size or ErrMetadataUnavailable
func (m *MockLibrary) ResourceSize(ctx context.Context, asset domain.PhotoAsset) (int64, error) {
	m.mu.Lock()
	m.sizeCalls = append(m.sizeCalls, asset.ID)
	fn := m.sizeFunc
	size, ok := m.sizes[asset.ID]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, asset)
	}
	if !ok {
		return 0, ports.ErrMetadataUnavailable
	}
	return size, nil
}

// RequestImage returns a solid grey image of the requested size
func (m *MockLibrary) RequestImage(ctx context.Context, asset domain.PhotoAsset, req domain.ImageRequest) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[asset.ID]; !ok || m.noImages {
		return nil, ports.ErrImageUnavailable
	}

	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	for y := 0; y < req.Height; y++ {
		for x := 0; x < req.Width; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}
	return img, nil
}

// Delete removes the assets, or fails with the configured error
func (m *MockLibrary) Delete(ctx context.Context, assets []domain.PhotoAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	m.deleteCalls = append(m.deleteCalls, ids)

	if m.deleteErr != nil {
		return m.deleteErr
	}

	for _, id := range ids {
		if _, ok := m.assets[id]; !ok {
			return fmt.Errorf("%w: %s", ports.ErrAssetNotFound, id)
		}
	}
	for _, id := range ids {
		delete(m.assets, id)
		delete(m.sizes, id)
		for i, o := range m.order {
			if o == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// SetDenied makes Authorize fail
func (m *MockLibrary) SetDenied(denied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = denied
}

// SetFetchError makes Fetch fail
func (m *MockLibrary) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// SetDeleteError makes Delete fail
func (m *MockLibrary) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

// SetImagesUnavailable makes RequestImage fail
func (m *MockLibrary) SetImagesUnavailable(unavailable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noImages = unavailable
}

// SetSizeFunc overrides ResourceSize
func (m *MockLibrary) SetSizeFunc(fn SizeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizeFunc = fn
}

// Count returns the number of assets currently stored
func (m *MockLibrary) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

// Has reports whether the asset is still stored
func (m *MockLibrary) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[id]
	return ok
}

// GetFetchCalls returns how many times Fetch was called
func (m *MockLibrary) GetFetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// GetDeleteCalls returns the ids passed to each Delete call
func (m *MockLibrary) GetDeleteCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([][]string, len(m.deleteCalls))
	copy(calls, m.deleteCalls)
	return calls
}

// GetSizeCalls returns the ids passed to ResourceSize
func (m *MockLibrary) GetSizeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.sizeCalls))
	copy(calls, m.sizeCalls)
	return calls
}

// --- MockPreferenceStore ---

// MockPreferenceStore keeps preferences in memory
type MockPreferenceStore struct {
	mu      sync.Mutex
	values  map[string]bool
	failErr error
}

// NewMockPreferenceStore creates an empty preference store
func NewMockPreferenceStore() *MockPreferenceStore {
	return &MockPreferenceStore{values: make(map[string]bool)}
}

func (m *MockPreferenceStore) GetBool(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	return m.values[key], nil
}

func (m *MockPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.values[key] = value
	return nil
}

// SetShouldFail makes every call return err
func (m *MockPreferenceStore) SetShouldFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}
