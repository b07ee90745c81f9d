package report

import (
	"encoding/json"
	"io"

	"github.com/JaimeStill/auditor/internal/runs"
)

// JSON renders the report as a single JSON document.
type JSON struct {
	Indent string
}

func (j JSON) Render(w io.Writer, r *runs.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", j.Indent)
	return enc.Encode(r)
}

func (JSON) ContentType() string {
	return "application/json"
}
