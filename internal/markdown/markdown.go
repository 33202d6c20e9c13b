// AngelaMos | 2026
// markdown.go

// Package markdown renders user-authored post and comment bodies to HTML.
// Raw HTML in the source is dropped and links with unsafe schemes are
// neutralised by the renderer.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	rendererInstance goldmark.Markdown
	rendererOnce     sync.Once
)

func renderer() goldmark.Markdown {
	rendererOnce.Do(func() {
		rendererInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.Linkify,
				extension.Strikethrough,
			),
		)
	})
	return rendererInstance
}

// ToHTML converts body to trimmed HTML. An empty body renders as "".
func ToHTML(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := renderer().Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
