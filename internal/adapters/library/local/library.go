// Package local serves photos from a directory tree
package local

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/kamal-hamza/px-cli/internal/adapters/library"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// Library is a PhotoLibrary over a billy filesystem. Asset identifiers are
// slash-separated paths relative to the root.
type Library struct {
	fs         billy.Filesystem
	root       string
	skipHidden bool

	mu    sync.RWMutex
	index map[string]domain.PhotoAsset
}

// New creates a library over fs
func New(fs billy.Filesystem) *Library {
	return &Library{
		fs:         fs,
		root:       fs.Root(),
		skipHidden: true,
		index:      make(map[string]domain.PhotoAsset),
	}
}

// NewOS creates a library rooted at dir on the local disk
func NewOS(dir string) *Library {
	return New(osfs.New(dir))
}

// Name returns the backend name
func (l *Library) Name() string {
	return "local"
}

// Root returns the directory the library was opened on
func (l *Library) Root() string {
	return l.root
}

// Authorize checks that the root directory can be listed
func (l *Library) Authorize(ctx context.Context) error {
	if _, err := l.fs.ReadDir("."); err != nil {
		if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %v", ports.ErrAuthorizationDenied, l.root, err)
		}
		return fmt.Errorf("failed to open library: %w", err)
	}
	return nil
}

// Fetch scans the tree and returns the images matching opts
func (l *Library) Fetch(ctx context.Context, opts domain.FetchOptions) (ports.FetchResult, error) {
	var assets []domain.PhotoAsset
	if err := l.walk(ctx, ".", &assets); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.root, err)
	}

	index := make(map[string]domain.PhotoAsset, len(assets))
	matches := assets[:0]
	for _, a := range assets {
		index[a.ID] = a
		if opts.Matches(a) {
			matches = append(matches, a)
		}
	}

	l.mu.Lock()
	l.index = index
	l.mu.Unlock()

	domain.OrderByCreation(matches)
	logger.Debug("scanned library", logger.KeyPath, l.root, logger.KeyCount, len(matches))

	return ports.NewSliceResult(matches), nil
}

func (l *Library) walk(ctx context.Context, dir string, out *[]domain.PhotoAsset) error {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.skipHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		p := l.fs.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := l.walk(ctx, p, out); err != nil {
				return err
			}
			continue
		}

		asset, err := l.inspect(p, entry)
		if err != nil {
			if !errors.Is(err, library.ErrNotImage) {
				logger.Debug("skipping file", logger.KeyPath, p, logger.KeyError, err.Error())
			}
			continue
		}
		*out = append(*out, asset)
	}
	return nil
}

func (l *Library) inspect(p string, info os.FileInfo) (domain.PhotoAsset, error) {
	f, err := l.fs.Open(p)
	if err != nil {
		return domain.PhotoAsset{}, err
	}
	defer f.Close()

	res, err := library.Inspect(f)
	if err != nil {
		return domain.PhotoAsset{}, err
	}

	asset, err := domain.NewPhotoAsset(filepath.ToSlash(path.Clean(p)), info.Name(), res.Width, res.Height, info.ModTime())
	if err != nil {
		return domain.PhotoAsset{}, err
	}
	asset.MediaType = res.MediaType
	asset.Ref = p
	return *asset, nil
}

// ResourceSize returns the file size on disk
func (l *Library) ResourceSize(ctx context.Context, asset domain.PhotoAsset) (int64, error) {
	info, err := l.fs.Stat(l.ref(asset))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ports.ErrAssetNotFound, asset.ID)
		}
		return 0, fmt.Errorf("%w: %v", ports.ErrMetadataUnavailable, err)
	}
	return info.Size(), nil
}

// RequestImage decodes the file and scales it
func (l *Library) RequestImage(ctx context.Context, asset domain.PhotoAsset, req domain.ImageRequest) (image.Image, error) {
	f, err := l.fs.Open(l.ref(asset))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrImageUnavailable, err)
	}
	defer f.Close()

	img, err := library.Decode(f, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrImageUnavailable, asset.ID, err)
	}
	return img, nil
}

// Delete removes the files. Every file is checked before any is removed.
func (l *Library) Delete(ctx context.Context, assets []domain.PhotoAsset) error {
	for _, a := range assets {
		if _, err := l.fs.Stat(l.ref(a)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ports.ErrAssetNotFound, a.ID)
			}
			return err
		}
	}

	for _, a := range assets {
		if err := l.fs.Remove(l.ref(a)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", a.ID, err)
		}

		l.mu.Lock()
		delete(l.index, a.ID)
		l.mu.Unlock()

		logger.Info("removed file", logger.KeyPath, a.Ref)
	}
	return nil
}

// ref resolves the filesystem path of an asset
func (l *Library) ref(a domain.PhotoAsset) string {
	if a.Ref != "" {
		return a.Ref
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if known, ok := l.index[a.ID]; ok {
		return known.Ref
	}
	return filepath.FromSlash(a.ID)
}

// Lookup returns an asset seen by the last Fetch
func (l *Library) Lookup(id string) (domain.PhotoAsset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.index[id]
	return a, ok
}
