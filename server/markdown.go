package server

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in model output is escaped; goldmark only passes it through
// with html.WithUnsafe.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts an assistant answer to HTML. It returns "" when
// the text cannot be rendered.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return ""
	}
	return buf.String()
}
