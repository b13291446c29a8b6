// Package immich serves photos from an Immich server over its REST API
package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kamal-hamza/px-cli/internal/adapters/library"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// searchPageSize is the number of assets requested per metadata search call
const searchPageSize = 250

// Options configure the client
type Options struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a PhotoLibrary backed by an Immich server
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client. The URL is the server root, without /api.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.New("immich url is required")
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return nil, fmt.Errorf("invalid immich url: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.URL, "/"),
		apiKey:  opts.APIKey,
		http:    hc,
	}, nil
}

// Name returns the backend name
func (c *Client) Name() string {
	return "immich"
}

type apiAsset struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	OriginalFileName string    `json:"originalFileName"`
	OriginalMimeType string    `json:"originalMimeType"`
	FileCreatedAt    time.Time `json:"fileCreatedAt"`
	ExifInfo         *struct {
		ExifImageWidth   int        `json:"exifImageWidth"`
		ExifImageHeight  int        `json:"exifImageHeight"`
		FileSizeInByte   int64      `json:"fileSizeInByte"`
		DateTimeOriginal *time.Time `json:"dateTimeOriginal"`
	} `json:"exifInfo"`
}

type searchRequest struct {
	Page        int        `json:"page"`
	Size        int        `json:"size"`
	Type        string     `json:"type"`
	Order       string     `json:"order"`
	WithExif    bool       `json:"withExif"`
	TakenAfter  *time.Time `json:"takenAfter,omitempty"`
	TakenBefore *time.Time `json:"takenBefore,omitempty"`
}

type searchResponse struct {
	Assets struct {
		Items    []apiAsset `json:"items"`
		NextPage *string    `json:"nextPage"`
	} `json:"assets"`
}

type deleteRequest struct {
	IDs   []string `json:"ids"`
	Force bool     `json:"force"`
}

func (a apiAsset) toDomain() (domain.PhotoAsset, error) {
	created := a.FileCreatedAt
	var width, height int
	if a.ExifInfo != nil {
		width, height = a.ExifInfo.ExifImageWidth, a.ExifInfo.ExifImageHeight
		if a.ExifInfo.DateTimeOriginal != nil {
			created = *a.ExifInfo.DateTimeOriginal
		}
	}

	asset, err := domain.NewPhotoAsset(a.ID, a.OriginalFileName, width, height, created)
	if err != nil {
		return domain.PhotoAsset{}, err
	}
	asset.MediaType = a.OriginalMimeType
	return *asset, nil
}

// do sends an authenticated request. A nil body sends no payload.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s returned %d", ports.ErrAuthorizationDenied, method, path, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ports.ErrAssetNotFound, path)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// Authorize verifies the API key against the current user endpoint
func (c *Client) Authorize(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/users/me", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Fetch pages through the metadata search and returns every image
func (c *Client) Fetch(ctx context.Context, opts domain.FetchOptions) (ports.FetchResult, error) {
	req := searchRequest{
		Page:     1,
		Size:     searchPageSize,
		Type:     "IMAGE",
		Order:    "desc",
		WithExif: true,
	}
	if opts.Range != nil {
		start, end := opts.Range.Start, opts.Range.End
		req.TakenAfter = &start
		req.TakenBefore = &end
	}

	var assets []domain.PhotoAsset
	for {
		page, next, err := c.search(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to search assets: %w", err)
		}

		for _, a := range page {
			asset, err := a.toDomain()
			if err != nil {
				logger.Debug("skipping asset", logger.KeyAsset, a.ID, logger.KeyError, err.Error())
				continue
			}
			if opts.Matches(asset) {
				assets = append(assets, asset)
			}
		}
		logger.Debug("immich search page", logger.KeyPage, req.Page, logger.KeyCount, len(page))

		if !next {
			break
		}
		req.Page++
	}

	domain.OrderByCreation(assets)
	return ports.NewSliceResult(assets), nil
}

func (c *Client) search(ctx context.Context, req searchRequest) ([]apiAsset, bool, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/search/metadata", req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("invalid search response: %w", err)
	}

	hasNext := out.Assets.NextPage != nil && *out.Assets.NextPage != "" && len(out.Assets.Items) > 0
	return out.Assets.Items, hasNext, nil
}

// ResourceSize reads the original file size from the asset's EXIF record
func (c *Client) ResourceSize(ctx context.Context, asset domain.PhotoAsset) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/assets/"+url.PathEscape(asset.ID), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out apiAsset
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("invalid asset response: %w", err)
	}
	if out.ExifInfo == nil || out.ExifInfo.FileSizeInByte <= 0 {
		return 0, ports.ErrMetadataUnavailable
	}
	return out.ExifInfo.FileSizeInByte, nil
}

// thumbnailEdge is the longest edge of the server's small WebP rendition
const thumbnailEdge = 250

// rendition picks the smallest server rendition that covers req
func rendition(req domain.ImageRequest) string {
	if req.Width <= thumbnailEdge && req.Height <= thumbnailEdge {
		return "thumbnail"
	}
	return "preview"
}

// RequestImage downloads a server rendition and scales it
func (c *Client) RequestImage(ctx context.Context, asset domain.PhotoAsset, req domain.ImageRequest) (image.Image, error) {
	path := "/api/assets/" + url.PathEscape(asset.ID) + "/thumbnail?size=" + rendition(req)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, ports.ErrAssetNotFound) {
			return nil, fmt.Errorf("%w: %v", ports.ErrImageUnavailable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	img, err := library.Decode(resp.Body, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrImageUnavailable, asset.ID, err)
	}
	return img, nil
}

// Delete moves the assets to the server's trash
func (c *Client) Delete(ctx context.Context, assets []domain.PhotoAsset) error {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}

	resp, err := c.do(ctx, http.MethodDelete, "/api/assets", deleteRequest{IDs: ids})
	if err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	resp.Body.Close()
	return nil
}
