// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package imagefile reads images from local files or Cloud Storage and
// re-encodes them as JPEG for submission to the Cloud Vision API.
//
// Re-encoding normalizes every supported source format (JPEG, PNG, GIF, BMP,
// TIFF and WebP) to a single transmittable encoding and drops metadata such
// as EXIF blocks along the way.
package imagefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"math"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// DefaultQuality is the JPEG quality used when Loader.Quality is zero.
	DefaultQuality = 90

	// DefaultMaxPixels is the pixel limit used when Loader.MaxPixels is zero.
	// It matches the largest image the Vision API accepts.
	DefaultMaxPixels = 75_000_000
)

// ErrTooLarge is wrapped by the ReadError returned for images whose declared
// dimensions exceed the loader's pixel limit.
var ErrTooLarge = errors.New("image exceeds pixel limit")

const gcsScheme = "gs://"

// EncodedImage is an image ready to be sent to the annotation service.
type EncodedImage struct {
	// Content holds the JPEG-encoded image. It is never empty for an
	// EncodedImage returned without error.
	Content []byte

	// Format is the name of the source codec, e.g. "png".
	Format string

	// Width and Height are the dimensions of the encoded raster.
	Width, Height int
}

// A Loader reads and re-encodes images. The zero value loads local files at
// DefaultQuality.
type Loader struct {
	// Quality is the JPEG quality, 1 to 100. Zero means DefaultQuality.
	Quality int

	// MaxDimension, if positive, bounds the longer side of the encoded image.
	// Larger images are scaled down preserving their aspect ratio.
	MaxDimension int

	// MaxPixels bounds width×height of the source image, checked before the
	// raster is decoded. Zero means DefaultMaxPixels.
	MaxPixels int

	// Storage is used to read gs://bucket/object paths. Loading such a path
	// with a nil Storage fails with a ReadError.
	Storage *storage.Client
}

// Load reads the local image file at path and re-encodes it as JPEG.
func Load(path string) (EncodedImage, error) {
	var l Loader
	return l.Load(context.Background(), path)
}

// Load reads the image at path, which is either a local file name or a
// gs://bucket/object URI, and re-encodes it as JPEG.
//
// Failures to open, read or decode the source are reported as *ReadError,
// including images larger than MaxPixels, which wrap ErrTooLarge. Failures
// to produce the JPEG payload are reported as *EncodeError. Transparent
// areas are rendered white.
func (l *Loader) Load(ctx context.Context, path string) (EncodedImage, error) {
	rc, err := l.open(ctx, path)
	if err != nil {
		return EncodedImage{}, &ReadError{Path: path, Err: err}
	}
	defer rc.Close()

	img, format, err := l.decode(rc)
	if err != nil {
		return EncodedImage{}, &ReadError{Path: path, Err: err}
	}
	if l.MaxDimension > 0 {
		img = resizeToFit(img, l.MaxDimension)
	}

	quality := l.Quality
	if quality == 0 {
		quality = DefaultQuality
	}
	content, err := encode(img, quality)
	if err != nil {
		return EncodedImage{}, &EncodeError{Path: path, Err: err}
	}
	b := img.Bounds()
	return EncodedImage{
		Content: content,
		Format:  format,
		Width:   b.Dx(),
		Height:  b.Dy(),
	}, nil
}

func (l *Loader) open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !strings.HasPrefix(path, gcsScheme) {
		return os.Open(path)
	}
	bucket, object, err := parseGCSURI(path)
	if err != nil {
		return nil, err
	}
	if l.Storage == nil {
		return nil, errors.New("no Cloud Storage client configured")
	}
	return l.Storage.Bucket(bucket).Object(object).NewReader(ctx)
}

// decode reads the image header first so that oversized images are rejected
// before their raster is allocated.
func (l *Loader) decode(r io.Reader) (image.Image, string, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", err
	}
	limit := l.MaxPixels
	if limit == 0 {
		limit = DefaultMaxPixels
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > int64(limit) {
		return nil, "", fmt.Errorf("%w: %dx%d is %d pixels, limit %d", ErrTooLarge, cfg.Width, cfg.Height, px, limit)
	}
	return image.Decode(io.MultiReader(&head, r))
}

// parseGCSURI splits gs://bucket/object into its parts.
func parseGCSURI(uri string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(uri, gcsScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed Cloud Storage URI %q, want gs://bucket/object", uri)
	}
	return bucket, object, nil
}

func encode(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("JPEG quality %d out of range [1, 100]", quality)
	}
	img = flatten(img)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.New("encoder produced no output")
	}
	return buf.Bytes(), nil
}

// resizeToFit scales src so that neither side exceeds limit.
func resizeToFit(src image.Image, limit int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return src
	}
	scale := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
	nw := int(math.Max(1, math.Round(float64(w)*scale)))
	nh := int(math.Max(1, math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// flatten composites img over an opaque white background. JPEG has no alpha
// channel, and the encoder would otherwise render transparent pixels black.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); !ok || o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	xdraw.Draw(dst, b, image.White, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, b, img, b.Min, xdraw.Over)
	return dst
}
