// AngelaMos | 2026
// markdown_test.go

package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains []string
		excludes []string
	}{
		{
			name:     "paragraph is trimmed",
			body:     "body of the *post*",
			contains: []string{"<p>body of the <em>post</em></p>"},
		},
		{
			name:     "raw html dropped",
			body:     "hello <script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name:     "javascript link neutralised",
			body:     "[x](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "bare url linkified",
			body:     "see https://example.com",
			contains: []string{`<a href="https://example.com">https://example.com</a>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := ToHTML(tt.body)
			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, html, unwanted)
			}
		})
	}
}

func TestToHTMLExactParagraph(t *testing.T) {
	html, err := ToHTML("body of the post\n")
	require.NoError(t, err)
	assert.Equal(t, "<p>body of the post</p>", html)
}

func TestToHTMLEmpty(t *testing.T) {
	html, err := ToHTML("   \n")
	require.NoError(t, err)
	assert.Empty(t, html)
}
