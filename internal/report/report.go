// Package report renders a run report for operators: an xlsx workbook,
// a JSON document, or a plain-text table.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/auditor/internal/runs"
)

// Formats.
const (
	FormatWorkbook = "xlsx"
	FormatJSON     = "json"
	FormatTable    = "table"
)

// Renderer writes a run report in one presentation format.
type Renderer interface {
	Render(w io.Writer, r *runs.Report) error
	ContentType() string
}

// ForPath returns the renderer for format, inferring the format from the
// extension of path when format is empty. Unknown extensions fall back
// to the table renderer.
func ForPath(path, format string) (Renderer, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			format = FormatWorkbook
		case ".json":
			format = FormatJSON
		default:
			format = FormatTable
		}
	}

	switch strings.ToLower(format) {
	case FormatWorkbook:
		return Workbook{}, nil
	case FormatJSON:
		return JSON{Indent: "  "}, nil
	case FormatTable:
		return Table{Width: 32}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
