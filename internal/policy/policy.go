// Package policy loads the versioned policy document that defines the
// conduct taxonomy, decision rules, and citation requirements handed to
// the reasoning service. The classification criteria live entirely in
// this document; nothing in the engine encodes them.
package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy is a loaded policy document.
type Policy struct {
	Version   string     `json:"version" yaml:"version"`
	Title     string     `json:"title,omitempty" yaml:"title"`
	Effective *time.Time `json:"effective,omitempty" yaml:"effective"`
	// Recommendations optionally lists, per taxonomy label, the actions
	// the policy allows. Labels left out are unrestricted beyond the
	// engine's fixed invariants.
	Recommendations map[string][]string `json:"recommendations,omitempty" yaml:"recommendations"`
	Text            string              `json:"-" yaml:"-"`
	Source          string              `json:"source" yaml:"-"`
	Digest          string              `json:"digest" yaml:"-"`
}

const delimiter = "---"

// Load reads and parses the policy document at path.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return Parse(path, data)
}

// Parse builds a Policy from raw document bytes. Optional YAML front
// matter between "---" lines supplies the version, title, and the
// optional recommendation table. Without an
// explicit version the content digest stands in, so any edit to the text
// is still visible in reports.
func Parse(source string, data []byte) (*Policy, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	p := &Policy{Source: source}

	if front, body, ok := splitFrontMatter(text); ok {
		if err := yaml.Unmarshal([]byte(front), p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFrontMatter, err)
		}
		text = body
	}

	p.Text = strings.TrimSpace(text)
	if p.Text == "" {
		return nil, ErrEmpty
	}

	sum := sha256.Sum256([]byte(p.Text))
	p.Digest = hex.EncodeToString(sum[:])

	p.Version = strings.TrimSpace(p.Version)
	if p.Version == "" {
		p.Version = "sha256:" + p.Digest[:12]
	}

	return p, nil
}

func splitFrontMatter(text string) (front, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimSpace(first) != delimiter {
		return "", text, false
	}

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == delimiter {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", text, false
}
