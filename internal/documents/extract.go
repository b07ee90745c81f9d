package documents

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractPages returns the text of each page of a document. PDFs are
// checked with pdfcpu before their text layer is read; plain-text and
// markdown files are a single page.
func ExtractPages(name string, data []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractPDF(data)
	case ".txt", ".md", ".text":
		return []string{string(data)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
}

func extractPDF(data []byte) (pages []string, err error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: text extraction failed: %v", ErrInvalidFile, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	pages = make([]string, 0, count)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrInvalidFile, i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
