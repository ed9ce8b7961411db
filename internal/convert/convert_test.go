// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doc2md/internal/render"
)

// mockExtractor records the pages it receives and answers from a fixed list.
type mockExtractor struct {
	responses []string
	failOn    int // 1-based call that errors; 0 means never
	calls     []render.PageImage
}

func (m *mockExtractor) ExtractMarkdown(_ context.Context, page render.PageImage) (string, error) {
	m.calls = append(m.calls, page)
	n := len(m.calls)
	if m.failOn != 0 && n == m.failOn {
		return "", errors.New("endpoint unavailable")
	}
	if n <= len(m.responses) {
		return m.responses[n-1], nil
	}
	return fmt.Sprintf("result-%d", n), nil
}

// fakeDocument is a stub render.Document with a controllable failing page.
type fakeDocument struct {
	pages     int
	failOn    int // 1-based page whose render fails; 0 means none
	lastScale float64
	closed    bool
}

func (d *fakeDocument) NumPages() int { return d.pages }

func (d *fakeDocument) RenderPage(index int, scale float64) (render.PageImage, error) {
	d.lastScale = scale
	if d.failOn == index+1 {
		return render.PageImage{}, fmt.Errorf("rendering page %d: corrupt stream", index+1)
	}
	return render.PageImage{Data: []byte(fmt.Sprintf("rendered-%d", index+1)), Format: "png"}, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// stubPDF swaps the document opener for the duration of a test.
func stubPDF(t *testing.T, doc render.Document, err error) {
	t.Helper()
	orig := openPDF
	openPDF = func(string) (render.Document, error) {
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
	t.Cleanup(func() { openPDF = orig })
}

func writeInput(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunImage(t *testing.T) {
	data := []byte("raw png bytes")
	path := writeInput(t, "diagram.png", data)

	ex := &mockExtractor{responses: []string{"# Diagram"}}
	var stdout, progress bytes.Buffer

	err := Run(context.Background(), path, ex, Options{Stdout: &stdout, Progress: &progress})
	require.NoError(t, err)

	require.Len(t, ex.calls, 1, "a still image must issue exactly one extraction request")
	assert.Equal(t, data, ex.calls[0].Data)
	assert.Equal(t, "png", ex.calls[0].Format)
	assert.Equal(t, "# Diagram\n", stdout.String())
}

func TestRunImageUppercaseExtension(t *testing.T) {
	path := writeInput(t, "scan.JPG", []byte("jpeg bytes"))

	ex := &mockExtractor{}
	var stdout bytes.Buffer

	err := Run(context.Background(), path, ex, Options{Stdout: &stdout, Progress: &bytes.Buffer{}})
	require.NoError(t, err)
	require.Len(t, ex.calls, 1)
	assert.Equal(t, "jpg", ex.calls[0].Format)
}

func TestRunPDF(t *testing.T) {
	path := writeInput(t, "report.pdf", []byte("%PDF-1.4"))
	doc := &fakeDocument{pages: 3}
	stubPDF(t, doc, nil)

	ex := &mockExtractor{responses: []string{"one", "two", "three"}}
	var stdout, progress bytes.Buffer

	err := Run(context.Background(), path, ex, Options{Stdout: &stdout, Progress: &progress})
	require.NoError(t, err)

	require.Len(t, ex.calls, 3, "a 3-page PDF must issue exactly 3 extraction requests")
	for i, call := range ex.calls {
		assert.Equal(t, []byte(fmt.Sprintf("rendered-%d", i+1)), call.Data, "pages must arrive in document order")
		assert.Equal(t, "png", call.Format)
	}
	assert.Equal(t, "one\n\ntwo\n\nthree\n", stdout.String())
	assert.Equal(t, 2.0, doc.lastScale)
	assert.True(t, doc.closed)
	assert.Contains(t, progress.String(), "Processed page 1/3")
	assert.Contains(t, progress.String(), "Processed page 3/3")
}

func TestRunUnsupportedExtension(t *testing.T) {
	path := writeInput(t, "notes.txt", []byte("plain text"))

	ex := &mockExtractor{}
	err := Run(context.Background(), path, ex, Options{Stdout: &bytes.Buffer{}, Progress: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
	assert.Empty(t, ex.calls, "no extraction request may be issued for an unsupported format")
}

func TestRunMissingInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.pdf")

	err := Run(context.Background(), path, &mockExtractor{}, Options{Stdout: &bytes.Buffer{}, Progress: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunOutputFile(t *testing.T) {
	path := writeInput(t, "diagram.png", []byte("raw"))
	outPath := filepath.Join(t.TempDir(), "out.md")

	ex := &mockExtractor{responses: []string{"# Saved"}}
	var stdout, progress bytes.Buffer

	err := Run(context.Background(), path, ex, Options{OutputPath: outPath, Stdout: &stdout, Progress: &progress})
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "# Saved", string(content))
	assert.Empty(t, stdout.String(), "the result must not also go to stdout")
	assert.Contains(t, progress.String(), outPath)
}

func TestRunOutputWriteFailure(t *testing.T) {
	path := writeInput(t, "diagram.png", []byte("raw"))
	outPath := filepath.Join(t.TempDir(), "missing-dir", "out.md")

	err := Run(context.Background(), path, &mockExtractor{}, Options{OutputPath: outPath, Stdout: &bytes.Buffer{}, Progress: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing output file")
}

func TestRunPDFOpenFailure(t *testing.T) {
	path := writeInput(t, "report.pdf", []byte("%PDF-1.4"))
	stubPDF(t, nil, errors.New("opening PDF: bad header"))

	ex := &mockExtractor{}
	err := Run(context.Background(), path, ex, Options{Stdout: &bytes.Buffer{}, Progress: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening PDF")
	assert.Empty(t, ex.calls)
}

func TestRunPDFRenderFailure(t *testing.T) {
	path := writeInput(t, "report.pdf", []byte("%PDF-1.4"))
	stubPDF(t, &fakeDocument{pages: 3, failOn: 2}, nil)

	ex := &mockExtractor{}
	var stdout bytes.Buffer

	err := Run(context.Background(), path, ex, Options{Stdout: &stdout, Progress: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Len(t, ex.calls, 1, "processing must stop at the failing page")
	assert.Empty(t, stdout.String(), "no partial output on failure")
}

func TestRunPDFExtractionFailure(t *testing.T) {
	path := writeInput(t, "report.pdf", []byte("%PDF-1.4"))
	stubPDF(t, &fakeDocument{pages: 3}, nil)

	ex := &mockExtractor{failOn: 2}
	var stdout bytes.Buffer

	err := Run(context.Background(), path, ex, Options{Stdout: &stdout, Progress: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing page 2")
	assert.Len(t, ex.calls, 2, "no further pages may be processed after a failure")
	assert.Empty(t, stdout.String())
}
