// Package documents reads case documents from the local filesystem or
// from blob storage and turns them into raw page text for the timeline
// parser.
package documents

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JaimeStill/auditor/internal/timeline"
)

// Source yields document identifiers and their text.
type Source interface {
	// List returns the document identifiers at location in a stable order.
	List(ctx context.Context, location string) ([]string, error)
	// Read returns the extracted text of the document id. Any failure is a
	// *timeline.ExtractionError so it can be recorded against the document.
	Read(ctx context.Context, id string) (timeline.RawDocument, error)
}

func accepted(extensions []string, name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(name)))
}
