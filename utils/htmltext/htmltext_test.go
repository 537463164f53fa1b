// ABOUTME: This file tests HTML-to-text conversion for provider snippets
package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"tags stripped":        {in: "<b>bold</b> text", want: "bold text"},
		"script removed":       {in: `<script>alert(1)</script>safe`, want: "safe"},
		"plain text unchanged": {in: "no markup here", want: "no markup here"},
		"empty input":          {in: "", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"paragraphs joined with blank lines": {
			in:   "<p>First paragraph.</p><p>Second paragraph.</p>",
			want: "First paragraph.\n\nSecond paragraph.",
		},
		"list items extracted": {
			in:   "<ul><li>one</li><li>two</li></ul>",
			want: "one\n\ntwo",
		},
		"script and style dropped": {
			in:   "<style>p{}</style><p>visible</p><script>x()</script>",
			want: "visible",
		},
		"no paragraph structure falls back to document text": {
			in:   "<div>just a div</div>",
			want: "just a div",
		},
		"plain text passes through": {
			in:   "already   plain\n text",
			want: "already plain text",
		},
		"whitespace inside paragraphs collapsed": {
			in:   "<p>spaced   out\n\ttext</p>",
			want: "spaced out text",
		},
		"empty input": {
			in:   "   ",
			want: "",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractText(tc.in))
		})
	}
}
