package local

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func writePhoto(t *testing.T, fs billy.Filesystem, name string, w, h int, mtime time.Time) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, pngBytes(t, w, h), 0o644))
	require.NoError(t, fs.(billy.Change).Chtimes(name, mtime, mtime))
}

func newTestLibrary(t *testing.T) (*Library, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	writePhoto(t, fs, "old.png", 40, 30, time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC))
	writePhoto(t, fs, "trips/new.png", 64, 48, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
	writePhoto(t, fs, "trips/mid.png", 10, 10, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, util.WriteFile(fs, "notes.txt", []byte("not a photo"), 0o644))
	require.NoError(t, util.WriteFile(fs, ".hidden/skip.png", pngBytes(t, 5, 5), 0o644))
	return New(fs), fs
}

func fetchAll(t *testing.T, lib *Library, opts domain.FetchOptions) []domain.PhotoAsset {
	t.Helper()
	result, err := lib.Fetch(context.Background(), opts)
	require.NoError(t, err)
	assets, err := result.Assets(context.Background(), 0, result.Count())
	require.NoError(t, err)
	return assets
}

func TestLibrary_Fetch(t *testing.T) {
	lib, _ := newTestLibrary(t)
	require.NoError(t, lib.Authorize(context.Background()))

	assets := fetchAll(t, lib, domain.FetchOptions{})
	require.Len(t, assets, 3)

	assert.Equal(t, "trips/new.png", assets[0].ID)
	assert.Equal(t, "trips/mid.png", assets[1].ID)
	assert.Equal(t, "old.png", assets[2].ID)

	assert.Equal(t, 64, assets[0].Width)
	assert.Equal(t, 48, assets[0].Height)
	assert.Equal(t, "image/png", assets[0].MediaType)
	assert.Equal(t, "new.png", assets[0].Filename)
}

func TestLibrary_FetchDateRange(t *testing.T) {
	lib, _ := newTestLibrary(t)
	rng, err := domain.NewDateRange(
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assets := fetchAll(t, lib, domain.FetchOptions{Range: rng})
	require.Len(t, assets, 2)
	assert.Equal(t, "trips/new.png", assets[0].ID)
	assert.Equal(t, "trips/mid.png", assets[1].ID)
}

func TestLibrary_ResourceSize(t *testing.T) {
	lib, fs := newTestLibrary(t)
	assets := fetchAll(t, lib, domain.FetchOptions{})

	info, err := fs.Stat("old.png")
	require.NoError(t, err)

	size, err := lib.ResourceSize(context.Background(), assets[2])
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)

	_, err = lib.ResourceSize(context.Background(), domain.PhotoAsset{ID: "gone.png"})
	assert.True(t, errors.Is(err, ports.ErrAssetNotFound))
}

func TestLibrary_RequestImage(t *testing.T) {
	lib, _ := newTestLibrary(t)
	assets := fetchAll(t, lib, domain.FetchOptions{})

	img, err := lib.RequestImage(context.Background(), assets[0], domain.ImageRequest{Width: 16, Height: 16, Mode: domain.ContentModeFit})
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 12, img.Bounds().Dy())

	_, err = lib.RequestImage(context.Background(), domain.PhotoAsset{ID: "missing.png"}, domain.ImageRequest{})
	assert.True(t, errors.Is(err, ports.ErrImageUnavailable))
}

func TestLibrary_Delete(t *testing.T) {
	lib, fs := newTestLibrary(t)
	assets := fetchAll(t, lib, domain.FetchOptions{})

	require.NoError(t, lib.Delete(context.Background(), assets[:1]))
	_, err := fs.Stat("trips/new.png")
	assert.Error(t, err)

	_, ok := lib.Lookup("trips/new.png")
	assert.False(t, ok)
	assert.Len(t, fetchAll(t, lib, domain.FetchOptions{}), 2)
}

func TestLibrary_DeleteMissingLeavesOthers(t *testing.T) {
	lib, fs := newTestLibrary(t)
	assets := fetchAll(t, lib, domain.FetchOptions{})

	batch := []domain.PhotoAsset{assets[0], {ID: "nope.png", Ref: "nope.png"}}
	err := lib.Delete(context.Background(), batch)
	assert.True(t, errors.Is(err, ports.ErrAssetNotFound))

	_, err = fs.Stat("trips/new.png")
	assert.NoError(t, err, "no file is removed when the batch is invalid")
}

func TestLibrary_AuthorizeMissingRoot(t *testing.T) {
	lib := NewOS(t.TempDir() + "/does-not-exist")
	err := lib.Authorize(context.Background())
	assert.True(t, errors.Is(err, ports.ErrAuthorizationDenied))
}
