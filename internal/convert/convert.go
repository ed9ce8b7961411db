// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives the full image/PDF to Markdown conversion: route
// the input by extension, render and extract pages sequentially, join the
// results, and deliver them to stdout or a file.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/doc2md/internal/render"
)

// renderScale is the linear upscale applied to PDF pages before extraction,
// about 144 DPI against the 72 DPI page baseline.
const renderScale = 2.0

// pageSeparator joins consecutive page results in the final document.
const pageSeparator = "\n\n"

// Extractor turns one page image into Markdown text. The vision client
// implements it; tests supply a mock.
type Extractor interface {
	ExtractMarkdown(ctx context.Context, page render.PageImage) (string, error)
}

// openPDF is a package-level var so tests can substitute a fake document.
var openPDF = render.OpenPDF

// Options control where Run writes the result and its progress messages.
// Progress carries human feedback only, never the Markdown result.
type Options struct {
	// OutputPath names the destination file; empty means Stdout.
	OutputPath string
	Stdout     io.Writer
	Progress   io.Writer
}

// Run converts the file at inputPath and delivers the joined Markdown.
// Pages are processed strictly one at a time in source order; the first
// failure aborts the run with no output.
func Run(ctx context.Context, inputPath string, ex Extractor, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}

	info, err := os.Stat(inputPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("the file %s does not exist", inputPath)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(inputPath), "."))

	var text string
	switch {
	case render.IsImageExt(ext):
		page, err := render.LoadImage(inputPath, ext)
		if err != nil {
			return err
		}
		text, err = ex.ExtractMarkdown(ctx, page)
		if err != nil {
			return err
		}
	case ext == "pdf":
		text, err = convertPDF(ctx, inputPath, ex, opts.Progress)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported file format %q: use jpg, jpeg, png, gif, bmp, webp, or pdf", ext)
	}

	return emit(text, opts)
}

// convertPDF renders each page and extracts it in turn, reporting progress
// after every completed page.
func convertPDF(ctx context.Context, path string, ex Extractor, progress io.Writer) (string, error) {
	doc, err := openPDF(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	pageCount := doc.NumPages()
	results := make([]string, 0, pageCount)

	for i := 0; i < pageCount; i++ {
		page, err := doc.RenderPage(i, renderScale)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractMarkdown(ctx, page)
		if err != nil {
			return "", fmt.Errorf("processing page %d: %w", i+1, err)
		}

		results = append(results, text)
		fmt.Fprintf(progress, "Processed page %d/%d\n", i+1, pageCount)
	}

	return strings.Join(results, pageSeparator), nil
}

// emit writes the final text to the output file when one is named, with a
// confirmation on the progress stream, or to stdout otherwise.
func emit(text string, opts Options) error {
	if opts.OutputPath == "" {
		fmt.Fprintln(opts.Stdout, text)
		return nil
	}

	if err := os.WriteFile(opts.OutputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing output file %s: %w", opts.OutputPath, err)
	}
	fmt.Fprintf(opts.Progress, "Text extracted and saved to: %s\n", opts.OutputPath)
	return nil
}
