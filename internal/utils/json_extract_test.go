package utils

import (
	"testing"
)

func TestExtractJSONSpan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "pure JSON",
			input: `{"intent": "cutoff"}`,
			want:  `{"intent": "cutoff"}`,
		},
		{
			name:  "JSON with surrounding prose",
			input: `Sure, here you go: {"intent": "cutoff"} hope that helps`,
			want:  `{"intent": "cutoff"}`,
		},
		{
			name:  "spans newlines",
			input: "{\n  \"intent\": \"rank_predict\"\n}",
			want:  "{\n  \"intent\": \"rank_predict\"\n}",
		},
		{
			name:  "no braces",
			input: "Hello! How can I help?",
			want:  "",
		},
		{
			// The greedy scan swallows everything between the first "{" and
			// the last "}"; two objects produce one unparseable span.
			name:  "two objects captured as one span",
			input: `{"a": 1} and {"b": 2}`,
			want:  `{"a": 1} and {"b": 2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONSpan(tt.input); got != tt.want {
				t.Errorf("ExtractJSONSpan() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseModelJSON(t *testing.T) {
	type payload struct {
		Intent string `json:"intent"`
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "pure JSON",
			input: `{"intent": "cutoff"}`,
			want:  "cutoff",
		},
		{
			name:  "markdown code fences",
			input: "```json\n{\"intent\": \"rank_predict\"}\n```",
			want:  "rank_predict",
		},
		{
			name:  "JSON followed by prose",
			input: `{"intent": "missing_info"}` + "\nLet me know if you need more.",
			want:  "missing_info",
		},
		{
			name:    "no JSON at all",
			input:   "just some words",
			wantErr: true,
		},
		{
			name:    "malformed span",
			input:   `{intent: cutoff,}`,
			wantErr: true,
		},
		{
			name:    "two objects",
			input:   `{"intent": "cutoff"} plus {"intent": "rank_predict"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := ParseModelJSON(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModelJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Intent != tt.want {
				t.Errorf("ParseModelJSON() intent = %q, want %q", got.Intent, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{broken}\n```",
			want:  "{broken}",
		},
		{
			name:  "bare fence",
			input: "```\nplain text\n```",
			want:  "plain text",
		},
		{
			name:  "no fences",
			input: "  already plain  ",
			want:  "already plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}
