// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// baselineDPI is the PDF page baseline a scale of 1.0 corresponds to.
const baselineDPI = 72

// fitzDocument renders PDF pages with MuPDF via go-fitz.
type fitzDocument struct {
	doc *fitz.Document
}

// OpenPDF opens the PDF at path with the go-fitz backend.
func OpenPDF(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s (PDF support requires the MuPDF libraries bundled with go-fitz): %w", path, err)
	}
	return &fitzDocument{doc: doc}, nil
}

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes the page at scale into PNG bytes. go-fitz renders
// without an alpha channel.
func (d *fitzDocument) RenderPage(index int, scale float64) (PageImage, error) {
	img, err := d.doc.ImageDPI(index, scale*baselineDPI)
	if err != nil {
		return PageImage{}, fmt.Errorf("rendering page %d: %w", index+1, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return PageImage{}, fmt.Errorf("encoding page %d as PNG: %w", index+1, err)
	}
	return PageImage{Data: buf.Bytes(), Format: "png"}, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
