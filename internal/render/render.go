// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns an input file into the page images the extraction
// client consumes. Still images pass through as raw bytes; PDFs rasterize
// page by page through a swappable Document backend.
package render

import (
	"fmt"
	"os"
)

// imageExts is the set of extensions passed through as opaque image bytes.
var imageExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// IsImageExt reports whether ext (lowercase, no dot) is a supported still-image format.
func IsImageExt(ext string) bool {
	return imageExts[ext]
}

// PageImage is one rendered page, or one whole input image, as a byte buffer
// plus its format tag. It is the unit of work sent per API call.
type PageImage struct {
	Data   []byte
	Format string
}

// LoadImage reads a still-image file and returns its raw bytes as a single
// page, without re-encoding.
func LoadImage(path, ext string) (PageImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PageImage{}, fmt.Errorf("reading image %s: %w", path, err)
	}
	return PageImage{Data: data, Format: ext}, nil
}

// Document is a rasterizable multi-page source. Pages are zero-indexed and
// render in document order. The scale factor is linear in each dimension
// against the 72 DPI page baseline.
type Document interface {
	NumPages() int
	RenderPage(index int, scale float64) (PageImage, error)
	Close() error
}
