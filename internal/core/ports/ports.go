package ports

import (
	"context"
	"errors"
	"image"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

var (
	// ErrAuthorizationDenied is returned when the library refuses access
	ErrAuthorizationDenied = errors.New("photo library access denied")

	// ErrMetadataUnavailable is returned when the stored size of an asset
	// cannot be read (e.g. the original has not been downloaded yet)
	ErrMetadataUnavailable = errors.New("resource metadata unavailable")

	// ErrImageUnavailable is returned when no rendition can be produced
	ErrImageUnavailable = errors.New("image unavailable")

	// ErrAssetNotFound is returned when an asset no longer exists in the library
	ErrAssetNotFound = errors.New("asset not found")
)

// PhotoLibrary defines the port for a photo store
type PhotoLibrary interface {
	// Name identifies the backend in logs and headers
	Name() string

	// Authorize checks that the library may be read and modified.
	// Returns ErrAuthorizationDenied when access is refused.
	Authorize(ctx context.Context) error

	// Fetch queries the library and returns an ordered handle over the result
	Fetch(ctx context.Context, opts domain.FetchOptions) (FetchResult, error)

	// ResourceSize returns the stored byte size of an asset.
	// Returns ErrMetadataUnavailable when it is not known locally.
	ResourceSize(ctx context.Context, asset domain.PhotoAsset) (int64, error)

	// RequestImage renders the asset scaled to the requested size.
	// Returns ErrImageUnavailable when there is nothing to show.
	RequestImage(ctx context.Context, asset domain.PhotoAsset, req domain.ImageRequest) (image.Image, error)

	// Delete removes the assets from the library in one batch
	Delete(ctx context.Context, assets []domain.PhotoAsset) error
}

// FetchResult is an ordered view over a library query
type FetchResult interface {
	// Count returns the number of assets in the result
	Count() int

	// Assets returns the assets in [start, end)
	Assets(ctx context.Context, start, end int) ([]domain.PhotoAsset, error)
}

// PreferenceStore persists small user preferences between runs
type PreferenceStore interface {
	// GetBool returns the stored value, or false when unset
	GetBool(ctx context.Context, key string) (bool, error)

	// SetBool stores the value
	SetBool(ctx context.Context, key string, value bool) error
}

// Preference keys
const (
	// PrefDeleteConfirmed is set after the user confirms their first deletion
	PrefDeleteConfirmed = "delete_confirmed"
)
