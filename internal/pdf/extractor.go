// Package pdf extracts per-page text from PDF documents using pdfcpu.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrUnreadableSource marks a file that could not be parsed as a PDF.
// The ingestion coordinator skips such files without recording their
// fingerprint, so they are retried on the next run.
var ErrUnreadableSource = errors.New("unreadable pdf source")

// Page holds the raw text of a single PDF page.
type Page struct {
	Number int // 1-indexed page number
	Text   string
}

// Extractor extracts text page by page from PDF files on disk.
type Extractor struct {
	workDir string
}

// NewExtractor creates an Extractor with a scratch directory for pdfcpu's
// content extraction output.
func NewExtractor() *Extractor {
	workDir := filepath.Join(os.TempDir(), "docqa-pdf")
	os.MkdirAll(workDir, 0o755)
	return &Extractor{workDir: workDir}
}

// ExtractPages returns the text of every page in the PDF at path, in page
// order. Pages without extractable text are returned with empty Text so page
// numbering stays intact. Unreadable or corrupt files yield an error wrapping
// ErrUnreadableSource.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp(e.workDir, "pages-")
	if err != nil {
		return nil, fmt.Errorf("create extraction directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}

	// pdfcpu writes one content file per page; map them back by page number.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read extraction directory: %w", err)
	}

	pageTexts := make(map[int]string, pageCount)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "Content_page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(entry.Name(), "page_%d", &pageNum); err != nil {
				continue
			}
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read page %d content: %w", pageNum, err)
		}
		pageTexts[pageNum] = string(content)
	}

	pages := make([]Page, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, Page{Number: pageNum, Text: pageTexts[pageNum]})
	}
	return pages, nil
}
