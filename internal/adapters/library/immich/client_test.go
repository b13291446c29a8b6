package immich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
)

const testKey = "secret"

type fakeServer struct {
	mu         sync.Mutex
	assets     []map[string]any
	deleted    []string
	searches   []searchRequest
	renditions []string
}

func newFakeServer(t *testing.T) (*fakeServer, *Client) {
	t.Helper()
	fs := &fakeServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u1","email":"me@example.com"}`))
	})
	mux.HandleFunc("POST /api/search/metadata", fs.search)
	mux.HandleFunc("GET /api/assets/{id}", fs.asset)
	mux.HandleFunc("GET /api/assets/{id}/thumbnail", fs.thumbnail)
	mux.HandleFunc("DELETE /api/assets", fs.delete)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != testKey {
			http.Error(w, `{"message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Options{URL: srv.URL + "/", APIKey: testKey})
	require.NoError(t, err)
	return fs, client
}

func (f *fakeServer) add(id string, created time.Time, w, h int, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets = append(f.assets, map[string]any{
		"id":               id,
		"type":             "IMAGE",
		"originalFileName": id + ".jpg",
		"originalMimeType": "image/jpeg",
		"fileCreatedAt":    created.Format(time.RFC3339),
		"exifInfo": map[string]any{
			"exifImageWidth":  w,
			"exifImageHeight": h,
			"fileSizeInByte":  size,
		},
	})
}

func (f *fakeServer) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.searches = append(f.searches, req)
	start := (req.Page - 1) * req.Size
	end := min(start+req.Size, len(f.assets))
	var items []map[string]any
	if start < len(f.assets) {
		items = f.assets[start:end]
	}
	var next any
	if end < len(f.assets) {
		next = "2"
	}
	f.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]any{
		"assets": map[string]any{"items": items, "nextPage": next},
	})
}

func (f *fakeServer) asset(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assets {
		if a["id"] == r.PathValue("id") {
			json.NewEncoder(w).Encode(a)
			return
		}
	}
	http.NotFound(w, r)
}

// webpPixel is a 1x1 lossless WebP, the format of the small rendition
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func (f *fakeServer) thumbnail(w http.ResponseWriter, r *http.Request) {
	size := r.URL.Query().Get("size")
	f.mu.Lock()
	f.renditions = append(f.renditions, size)
	f.mu.Unlock()

	if size == "thumbnail" {
		data, _ := base64.StdEncoding.DecodeString(webpPixel)
		w.Header().Set("Content-Type", "image/webp")
		w.Write(data)
		return
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 60, 40)), nil)
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(buf.Bytes())
}

func (f *fakeServer) delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, req.IDs...)
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func TestClient_Authorize(t *testing.T) {
	_, client := newFakeServer(t)
	require.NoError(t, client.Authorize(context.Background()))

	client.apiKey = "wrong"
	err := client.Authorize(context.Background())
	assert.True(t, errors.Is(err, ports.ErrAuthorizationDenied))
}

func TestClient_FetchPaginates(t *testing.T) {
	srv, client := newFakeServer(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < searchPageSize+10; i++ {
		srv.add(fmt.Sprintf("asset-%03d", i), base.Add(time.Duration(i)*time.Minute), 100, 100, 2048)
	}

	result, err := client.Fetch(context.Background(), domain.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, searchPageSize+10, result.Count())
	assert.Len(t, srv.searches, 2)
	assert.Equal(t, "IMAGE", srv.searches[0].Type)
	assert.True(t, srv.searches[0].WithExif)

	assets, err := result.Assets(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Duration(searchPageSize+9)*time.Minute), assets[0].CreatedAt.UTC())
}

func TestClient_FetchSkipsInvalidAssets(t *testing.T) {
	srv, client := newFakeServer(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv.add("good", base, 100, 100, 2048)
	srv.add("bad-dims", base, -1, 100, 2048)
	srv.add("", base, 100, 100, 2048)

	result, err := client.Fetch(context.Background(), domain.FetchOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count())

	assets, err := result.Assets(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "good", assets[0].ID)
	assert.Equal(t, "image/jpeg", assets[0].MediaType)
}

func TestClient_FetchDateRange(t *testing.T) {
	srv, client := newFakeServer(t)
	srv.add("in", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 10, 10, 1)
	srv.add("out", time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 10, 10, 1)

	rng, err := domain.NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	result, err := client.Fetch(context.Background(), domain.FetchOptions{Range: rng})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count())
	require.NotNil(t, srv.searches[0].TakenAfter)

	assets, err := result.Assets(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "in", assets[0].ID)
	assert.Equal(t, 10, assets[0].Width)
}

func TestClient_ResourceSize(t *testing.T) {
	srv, client := newFakeServer(t)
	srv.add("x", time.Now(), 10, 10, 123456)
	srv.add("nosize", time.Now(), 10, 10, 0)

	size, err := client.ResourceSize(context.Background(), domain.PhotoAsset{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(123456), size)

	_, err = client.ResourceSize(context.Background(), domain.PhotoAsset{ID: "nosize"})
	assert.True(t, errors.Is(err, ports.ErrMetadataUnavailable))

	_, err = client.ResourceSize(context.Background(), domain.PhotoAsset{ID: "missing"})
	assert.True(t, errors.Is(err, ports.ErrAssetNotFound))
}

func TestClient_RequestImage(t *testing.T) {
	srv, client := newFakeServer(t)

	thumb, err := client.RequestImage(context.Background(), domain.PhotoAsset{ID: "x"},
		domain.ImageRequest{Width: 30, Height: 30, Mode: domain.ContentModeFill})
	require.NoError(t, err)
	assert.Equal(t, 30, thumb.Bounds().Dx())
	assert.Equal(t, 30, thumb.Bounds().Dy())

	preview, err := client.RequestImage(context.Background(), domain.PhotoAsset{ID: "x"},
		domain.ImageRequest{Width: 600, Height: 400, Mode: domain.ContentModeFit})
	require.NoError(t, err)
	assert.Equal(t, 600, preview.Bounds().Dx())
	assert.Equal(t, 400, preview.Bounds().Dy())

	assert.Equal(t, []string{"thumbnail", "preview"}, srv.renditions)
}

func TestRendition(t *testing.T) {
	tests := []struct {
		req  domain.ImageRequest
		want string
	}{
		{domain.ImageRequest{Width: 16, Height: 16}, "thumbnail"},
		{domain.ImageRequest{Width: 250, Height: 250}, "thumbnail"},
		{domain.ImageRequest{Width: 251, Height: 100}, "preview"},
		{domain.ImageRequest{Width: 100, Height: 400}, "preview"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rendition(tt.req), "%dx%d", tt.req.Width, tt.req.Height)
	}
}

func TestClient_Delete(t *testing.T) {
	srv, client := newFakeServer(t)

	err := client.Delete(context.Background(), []domain.PhotoAsset{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, srv.deleted)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
