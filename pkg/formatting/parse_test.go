package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/auditor/pkg/formatting"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  sample
	}{
		{"direct JSON", `{"name":"test","value":42}`, sample{"test", 42}},
		{"direct JSON with whitespace", `  {"name":"padded","value":1}  `, sample{"padded", 1}},
		{"markdown fenced JSON", "```json\n{\"name\":\"fenced\",\"value\":7}\n```", sample{"fenced", 7}},
		{"fence without language tag", "```\n{\"name\":\"bare\",\"value\":3}\n```", sample{"bare", 3}},
		{"fence with surrounding text", "Here is the result:\n```json\n{\"name\":\"wrapped\",\"value\":5}\n```\nDone.", sample{"wrapped", 5}},
		{"object embedded in prose", `Sure. {"name":"prose","value":9} Let me know.`, sample{"prose", 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[sample](tt.input)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFailures(t *testing.T) {
	inputs := map[string]string{
		"plain text":         "not json at all",
		"empty string":       "",
		"broken fenced JSON": "```json\n{broken\n```",
		"unbalanced braces":  "result: { name: nope",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := formatting.Parse[sample](input)
			if !errors.Is(err, formatting.ErrParseFailed) {
				t.Errorf("error = %v, want ErrParseFailed", err)
			}
		})
	}
}

func TestParseIntoCollections(t *testing.T) {
	m, err := formatting.Parse[map[string]any](`{"key":"value"}`)
	if err != nil {
		t.Fatalf("Parse map error: %v", err)
	}
	if m["key"] != "value" {
		t.Errorf("m[key] = %v, want value", m["key"])
	}

	s, err := formatting.Parse[[]int](`[1,2,3]`)
	if err != nil {
		t.Fatalf("Parse slice error: %v", err)
	}
	if len(s) != 3 || s[2] != 3 {
		t.Errorf("s = %v, want [1 2 3]", s)
	}
}
