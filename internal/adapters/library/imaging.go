// Package library holds helpers shared by the photo library backends
package library

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// sniffLen is how much of a file is read for type detection
const sniffLen = 3072

// ErrNotImage is returned by Inspect for content that is not an image
var ErrNotImage = errors.New("not an image")

// HeaderInfo describes an image from its header
type HeaderInfo struct {
	MediaType string
	Width     int
	Height    int
}

// Inspect detects the media type of r and, for formats the image package
// can decode, its pixel dimensions. Images whose dimensions cannot be
// decoded (HEIC, RAW) are reported with zero width and height.
func Inspect(r io.Reader) (HeaderInfo, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return HeaderInfo{}, fmt.Errorf("failed to read header: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !IsImage(mt.String()) {
		return HeaderInfo{}, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	res := HeaderInfo{MediaType: mt.String()}
	cfg, _, err := image.DecodeConfig(io.MultiReader(bytes.NewReader(head), r))
	if err == nil {
		res.Width = cfg.Width
		res.Height = cfg.Height
	}
	return res, nil
}

// IsImage reports whether a MIME type names an image
func IsImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// Scale resizes src for req. Fit keeps the whole image inside the target;
// Fill covers the target and crops the overflow around the centre. A
// non-positive target returns src unchanged.
func Scale(src image.Image, req domain.ImageRequest) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if req.Width <= 0 || req.Height <= 0 || sw == 0 || sh == 0 {
		return src
	}

	// crop is the source region drawn into the output
	crop := b
	dw, dh := req.Width, req.Height

	switch req.Mode {
	case domain.ContentModeFill:
		if sw*dh > sh*dw {
			cw := max(1, sh*dw/dh)
			x0 := b.Min.X + (sw-cw)/2
			crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
		} else {
			ch := max(1, sw*dh/dw)
			y0 := b.Min.Y + (sh-ch)/2
			crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
		}
	default:
		if sw*dh > sh*dw {
			dh = max(1, sh*dw/sw)
		} else {
			dw = max(1, sw*dh/sh)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// Decode reads a full image and scales it for req
func Decode(r io.Reader, req domain.ImageRequest) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return Scale(img, req), nil
}
